// Package main mints bearer tokens for local development and smoke tests.
//
// Tokens are signed with security.jwt_signing_key from the same config the
// server reads, so both must agree on the key.
//
// Import Path: eventforge.io/eventforge/cmd/token
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"eventforge.io/eventforge/internal/api/middleware"
	"eventforge.io/eventforge/internal/app/modules"
	"eventforge.io/eventforge/internal/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "token error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	userID := fs.String("user", "", "user id recorded as the audit actor")
	username := fs.String("name", "", "display name; defaults to -user")
	roles := fs.String("roles", "", "comma-separated roles, e.g. admin")
	ttl := fs.Duration("ttl", 0, "token lifetime; defaults to security.token_ttl")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" {
		return errors.New("-user is required")
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	jwtCfg := modules.NewJWTConfig(cfg)
	if *ttl > 0 {
		jwtCfg.ExpiresIn = *ttl
	}
	name := *username
	if name == "" {
		name = *userID
	}

	token, expiresAt, err := middleware.GenerateToken(jwtCfg, *userID, name, splitRoles(*roles))
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}
	_, err = fmt.Fprintf(out, "%s\n# expires %s\n", token, expiresAt.UTC().Format(time.RFC3339))
	return err
}

func splitRoles(s string) []string {
	var roles []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}
