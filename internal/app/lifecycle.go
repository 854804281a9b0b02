package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"eventforge.io/eventforge/internal/pkg/logger"
)

// Start starts background services. River only runs with the postgres store;
// in memory mode audit writes go through the worker pools and nothing starts.
func (a *Application) Start(ctx context.Context) error {
	if a.DB == nil || a.DB.RiverClient == nil {
		logger.Info("No job queue configured, audit writes stay in-process")
		return nil
	}
	if err := a.DB.RiverClient.Start(ctx); err != nil {
		return fmt.Errorf("start river client: %w", err)
	}
	logger.Info("River client started, audit jobs will now be consumed")
	return nil
}

// Shutdown stops components in reverse start order: River, modules, pools,
// then the database. If ctx expires while River is stopping, running jobs
// are cancelled and retried on the next start.
func (a *Application) Shutdown(ctx context.Context) {
	if a.DB != nil && a.DB.RiverClient != nil {
		if err := a.DB.RiverClient.Stop(ctx); err != nil {
			if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
				logger.Error("failed to stop river client", zap.Error(err))
			} else if cerr := a.DB.RiverClient.StopAndCancel(context.Background()); cerr != nil {
				logger.Error("failed to cancel river jobs", zap.Error(cerr))
			}
		}
		logger.Info("River client stopped")
	}

	for _, mod := range a.Modules {
		if mod == nil {
			continue
		}
		if err := mod.Shutdown(ctx); err != nil {
			logger.Warn("module shutdown returned error",
				zap.String("module", mod.Name()),
				zap.Error(err),
			)
		}
	}

	// Pools drain before the database closes.
	if a.Pools != nil {
		a.Pools.Shutdown(ctx)
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
