package audit

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"eventforge.io/eventforge/internal/domain"
	"eventforge.io/eventforge/internal/pkg/logger"
	"eventforge.io/eventforge/internal/pkg/worker"
)

// AsyncRecorder hands event.create records to the general worker pool.
// Writes are detached from the request so a client disconnect after commit
// does not lose the record. Used when no job queue is configured.
type AsyncRecorder struct {
	logger *Logger
	pools  *worker.Pools
}

// NewAsyncRecorder creates an AsyncRecorder.
func NewAsyncRecorder(l *Logger, pools *worker.Pools) *AsyncRecorder {
	return &AsyncRecorder{logger: l, pools: pools}
}

// RecordEventCreated builds the record now and writes it in the background.
// It fails only when the pool no longer accepts work.
func (r *AsyncRecorder) RecordEventCreated(_ context.Context, ev domain.Event, actor string) error {
	rec := EventCreatedRecord(ev, actor)
	err := r.pools.General.SubmitDetached(func(ctx context.Context) {
		if err := r.logger.Append(ctx, rec); err != nil {
			logger.Warn("Detached audit write failed",
				zap.String("audit_id", rec.ID),
				zap.String("resource_id", rec.ResourceID),
				zap.Error(err),
			)
		}
	})
	if err != nil {
		return fmt.Errorf("submit audit record: %w", err)
	}
	return nil
}
