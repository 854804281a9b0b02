package modules

import (
	"strings"

	"eventforge.io/eventforge/internal/api/handlers"
	"eventforge.io/eventforge/internal/api/middleware"
	"eventforge.io/eventforge/internal/config"
)

// NewServerDeps builds base server deps then lets each module contribute explicit wiring.
func NewServerDeps(infra *Infrastructure, mods []Module) handlers.ServerDeps {
	deps := handlers.ServerDeps{
		Store: infra.Pinger,
	}
	for _, mod := range mods {
		if mod == nil {
			continue
		}
		mod.ContributeServerDeps(&deps)
	}
	return deps
}

// NewJWTConfig builds the token settings from security config.
func NewJWTConfig(cfg *config.Config) middleware.JWTConfig {
	verificationKeys := make([][]byte, 0, len(cfg.Security.JWTVerificationKeys))
	for _, key := range cfg.Security.JWTVerificationKeys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		verificationKeys = append(verificationKeys, []byte(key))
	}

	return middleware.JWTConfig{
		SigningKey:       []byte(cfg.Security.JWTSigningKey),
		VerificationKeys: verificationKeys,
		Issuer:           cfg.Security.JWTIssuer,
		ExpiresIn:        cfg.Security.TokenTTL,
	}
}
