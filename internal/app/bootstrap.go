// Package app is the composition root. Bootstrap only wires modules together.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"eventforge.io/eventforge/internal/api/handlers"
	"eventforge.io/eventforge/internal/app/modules"
	"eventforge.io/eventforge/internal/config"
	"eventforge.io/eventforge/internal/infrastructure"
	"eventforge.io/eventforge/internal/pkg/logger"
	"eventforge.io/eventforge/internal/pkg/worker"
	"eventforge.io/eventforge/internal/service"
)

// Application holds composed application dependencies.
type Application struct {
	Config  *config.Config
	Router  *gin.Engine
	DB      *infrastructure.DatabaseClients
	Pools   *worker.Pools
	Events  *service.EventService
	Modules []modules.Module
}

// Bootstrap initializes all dependencies using module-oriented manual DI.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Application, error) {
	infra, err := modules.NewInfrastructure(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init infrastructure: %w", err)
	}

	governance := modules.NewGovernanceModule(infra)

	workers := river.NewWorkers()
	governance.RegisterWorkers(workers)
	if err := infra.InitRiver(workers); err != nil {
		infra.Close()
		return nil, fmt.Errorf("init river workers: %w", err)
	}

	// The event module picks its audit recorder from the River client, so it
	// is built after InitRiver.
	events := modules.NewEventModule(infra)

	allModules := []modules.Module{governance, events}
	serverDeps := modules.NewServerDeps(infra, allModules)
	server := handlers.NewServer(serverDeps)

	logger.Info("Modules composed",
		zap.Strings("modules", modules.Names(allModules)),
		zap.Bool("river", infra.RiverClient != nil),
	)

	return &Application{
		Config:  cfg,
		Router:  newRouter(cfg, server, modules.NewJWTConfig(cfg)),
		DB:      infra.DB,
		Pools:   infra.Pools,
		Events:  events.Service(),
		Modules: allModules,
	}, nil
}
