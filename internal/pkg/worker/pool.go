// Package worker provides goroutine pool management.
//
// Background work runs on ants pools instead of naked goroutines. Each pool
// is tied to a service lifecycle context that Shutdown cancels.
//
// Import Path: eventforge.io/eventforge/internal/pkg/worker
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"eventforge.io/eventforge/internal/pkg/logger"
)

// ErrPoolClosed is returned when submitting to a closed pool.
var ErrPoolClosed = errors.New("worker pool is closed")

// Pool names, used as log fields.
const (
	PoolGeneral = "general"
	PoolSeed    = "seed"
)

// defaultReleaseTimeout applies when Shutdown gets a context without a deadline.
const defaultReleaseTimeout = 30 * time.Second

// Task is a context-aware task function.
type Task func(ctx context.Context)

// Pool wraps ants.Pool with context-aware submission.
type Pool struct {
	pool       *ants.Pool
	name       string
	serviceCtx context.Context
}

// Stats is a point-in-time view of a pool's capacity.
type Stats struct {
	Running int
	Free    int
	Cap     int
}

// Pools is the worker pool collection.
type Pools struct {
	// General runs request-detached work such as audit writes.
	General *Pool
	// Seed runs catalog imports.
	Seed *Pool

	serviceCancel context.CancelFunc
}

// PoolConfig contains worker pool sizes.
type PoolConfig struct {
	GeneralPoolSize int
	SeedPoolSize    int
}

// DefaultPoolConfig returns default configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		GeneralPoolSize: 100,
		SeedPoolSize:    8,
	}
}

// NewPools creates the worker pool collection. Detached tasks run under a
// context derived from ctx.
func NewPools(ctx context.Context, cfg PoolConfig) (*Pools, error) {
	serviceCtx, serviceCancel := context.WithCancel(ctx)

	general, err := newPool(serviceCtx, PoolGeneral, cfg.GeneralPoolSize, 10*time.Second)
	if err != nil {
		serviceCancel()
		return nil, err
	}
	// Catalog imports arrive in bursts, so idle seed workers live longer.
	seed, err := newPool(serviceCtx, PoolSeed, cfg.SeedPoolSize, 30*time.Second)
	if err != nil {
		general.pool.Release()
		serviceCancel()
		return nil, err
	}

	return &Pools{
		General:       general,
		Seed:          seed,
		serviceCancel: serviceCancel,
	}, nil
}

func newPool(serviceCtx context.Context, name string, size int, expiry time.Duration) (*Pool, error) {
	p, err := ants.NewPool(size,
		ants.WithPanicHandler(func(v interface{}) {
			logger.Error("Worker panic recovered",
				zap.String("pool", name),
				zap.Any("panic", v),
				zap.Stack("stack"),
			)
		}),
		ants.WithNonblocking(false),
		ants.WithExpiryDuration(expiry),
	)
	if err != nil {
		return nil, err
	}
	return &Pool{pool: p, name: name, serviceCtx: serviceCtx}, nil
}

// Submit queues task under ctx.
// If ctx is already cancelled, returns ctx.Err() without submitting. A task
// whose context is cancelled while it waits in the queue is skipped.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.run(ctx, task, "Task skipped: context cancelled")
}

// SubmitDetached queues task under the service lifecycle context instead of
// a request context. It survives request cancellation but is skipped once
// Shutdown has started.
func (p *Pool) SubmitDetached(task Task) error {
	return p.run(p.serviceCtx, task, "Detached task skipped: service shutting down")
}

func (p *Pool) run(ctx context.Context, task Task, skipMsg string) error {
	err := p.pool.Submit(func() {
		if ctx.Err() != nil {
			logger.Debug(skipMsg,
				zap.String("pool", p.name),
				zap.Error(ctx.Err()),
			)
			return
		}
		task(ctx)
	})
	if errors.Is(err, ants.ErrPoolClosed) {
		return ErrPoolClosed
	}
	return err
}

// Stats reports the pool's current capacity.
func (p *Pool) Stats() Stats {
	return Stats{
		Running: p.pool.Running(),
		Free:    p.pool.Free(),
		Cap:     p.pool.Cap(),
	}
}

// Shutdown cancels the service context, then waits for running tasks until
// ctx's deadline or defaultReleaseTimeout.
func (p *Pools) Shutdown(ctx context.Context) {
	p.serviceCancel()

	timeout := defaultReleaseTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = max(time.Until(deadline), time.Millisecond)
	}
	for _, pool := range []*Pool{p.General, p.Seed} {
		if err := pool.pool.ReleaseTimeout(timeout); err != nil {
			logger.Warn("Worker pool release timed out",
				zap.String("pool", pool.name),
				zap.Int("running", pool.pool.Running()),
				zap.Error(err),
			)
		}
	}
}
