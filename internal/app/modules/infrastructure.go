package modules

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"eventforge.io/eventforge/internal/config"
	"eventforge.io/eventforge/internal/governance/audit"
	"eventforge.io/eventforge/internal/infrastructure"
	"eventforge.io/eventforge/internal/jobs"
	"eventforge.io/eventforge/internal/pkg/logger"
	"eventforge.io/eventforge/internal/pkg/worker"
	"eventforge.io/eventforge/internal/repository"
	"eventforge.io/eventforge/internal/repository/memory"
	"eventforge.io/eventforge/internal/repository/postgres"
	"eventforge.io/eventforge/internal/service"
)

// Infrastructure holds shared cross-cutting dependencies for all modules.
// It is a provider, not a Module.
type Infrastructure struct {
	Config *config.Config
	// DB is nil when storage.driver is memory.
	DB          *infrastructure.DatabaseClients
	Pools       *worker.Pools
	RiverClient *river.Client[pgx.Tx]

	Events      repository.EventRepository
	Tx          repository.TxManager
	AuditStore  repository.AuditStore
	Pinger      repository.Pinger
	AuditLogger *audit.Logger
}

// NewInfrastructure initializes pools and the configured event store.
func NewInfrastructure(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	pools, err := worker.NewPools(ctx, worker.PoolConfig{
		GeneralPoolSize: cfg.Worker.GeneralPoolSize,
		SeedPoolSize:    cfg.Worker.SeedPoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("init worker pools: %w", err)
	}

	infra := &Infrastructure{Config: cfg, Pools: pools}
	if cfg.UsesPostgres() {
		err = infra.openPostgres(ctx)
	} else {
		infra.openMemory()
	}
	if err != nil {
		pools.Shutdown(ctx)
		return nil, err
	}

	infra.AuditLogger = audit.NewLogger(infra.AuditStore)
	logger.Info("Event store ready", zap.String("driver", cfg.Storage.Driver))
	return infra, nil
}

func (i *Infrastructure) openPostgres(ctx context.Context) error {
	db, err := infrastructure.NewDatabaseClients(ctx, i.Config.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	if i.Config.Database.AutoMigrate {
		if err := db.AutoMigrate(ctx); err != nil {
			db.Close()
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	i.DB = db
	i.Events = postgres.NewEventRepo(db.Pool)
	i.Tx = postgres.NewTxManager(db.Pool)
	i.AuditStore = postgres.NewAuditStore(db.Pool)
	i.Pinger = postgres.NewPinger(db.Pool)
	return nil
}

func (i *Infrastructure) openMemory() {
	store := memory.NewStore()
	i.Events = memory.NewEventRepo(store)
	i.Tx = memory.NewTxManager(store)
	i.AuditStore = memory.NewAuditStore()
	i.Pinger = memory.Pinger{}
}

// InitRiver initializes River client on top of a prepared worker registry.
// It is a no-op for the memory store or when river is disabled.
func (i *Infrastructure) InitRiver(workers *river.Workers) error {
	if i == nil || i.Config == nil {
		return fmt.Errorf("infrastructure is not initialized")
	}
	if i.DB == nil || !i.Config.River.Enabled {
		return nil
	}
	if err := i.DB.InitRiverClient(workers, i.Config.River); err != nil {
		return fmt.Errorf("init river: %w", err)
	}
	i.RiverClient = i.DB.RiverClient
	return nil
}

// AuditRecorder picks how event.create records are written:
// a River job in the create transaction, a synchronous insert in that
// transaction when River is off, or a detached pool task for the memory store.
func (i *Infrastructure) AuditRecorder() service.AuditRecorder {
	switch {
	case i.RiverClient != nil:
		return jobs.NewRiverAuditRecorder(i.RiverClient)
	case i.DB != nil:
		return i.AuditLogger
	default:
		return audit.NewAsyncRecorder(i.AuditLogger, i.Pools)
	}
}

// Close releases infra resources in reverse dependency order.
func (i *Infrastructure) Close() {
	if i == nil {
		return
	}
	if i.Pools != nil {
		i.Pools.Shutdown(context.Background())
	}
	if i.DB != nil {
		i.DB.Close()
	}
}
