// Package main imports an event catalog into eventforge.
//
// The catalog is a YAML file with a top-level "events" list of drafts in the
// same shape as the create request. Drafts go through the regular create
// path, so they are validated and audited like API writes.
//
// Import Path: eventforge.io/eventforge/cmd/seed
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"eventforge.io/eventforge/internal/app"
	"eventforge.io/eventforge/internal/config"
	"eventforge.io/eventforge/internal/pkg/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "seed error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	file := fs.String("file", "", "path to the YAML event catalog")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("-file is required")
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	drafts, err := readCatalogFile(*file)
	if err != nil {
		return err
	}

	// Seeding runs to completion; queued tasks must not be skipped.
	ctx := context.Background()

	application, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		application.Shutdown(shutdownCtx)
	}()

	logger.Info("Starting event seeding",
		zap.String("file", *file),
		zap.Int("drafts", len(drafts)),
		zap.Int("workers", application.Pools.Seed.Stats().Cap),
	)

	report, err := seedCatalog(ctx, application.Events, application.Pools.Seed, drafts)
	if err != nil {
		return err
	}

	logger.Info("Event seeding finished",
		zap.Int("created", report.Created),
		zap.Int("skipped", report.Skipped),
		zap.Int("rejected", report.Rejected),
	)
	if report.Rejected > 0 {
		return fmt.Errorf("%d of %d drafts were rejected", report.Rejected, len(drafts))
	}
	return nil
}

func readCatalogFile(path string) (drafts []eventDraft, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close catalog: %w", cerr)
		}
	}()
	return loadCatalog(f)
}
