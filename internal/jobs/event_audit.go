// Package jobs defines River Queue job types for async processing.
//
// Jobs are inserted with InsertTx inside the transaction that produces them,
// so a job exists if and only if its source rows were committed.
//
// Import Path: eventforge.io/eventforge/internal/jobs
package jobs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"go.uber.org/zap"

	"eventforge.io/eventforge/internal/domain"
	"eventforge.io/eventforge/internal/governance/audit"
	"eventforge.io/eventforge/internal/pkg/logger"
	"eventforge.io/eventforge/internal/repository"
	"eventforge.io/eventforge/internal/repository/postgres"
)

// ErrNoTransaction is returned when an audit job is requested outside RunInTx.
var ErrNoTransaction = errors.New("audit job requires a transaction in context")

// EventAuditArgs carries a fully built audit record. The record ID is fixed
// at insert time, so retried attempts write the same row.
type EventAuditArgs struct {
	AuditID   string    `json:"audit_id"`
	EventID   int64     `json:"event_id"`
	Title     string    `json:"title"`
	Decisions int       `json:"decisions"`
	Actor     string    `json:"actor"`
	CreatedAt time.Time `json:"created_at"`
}

// Kind returns the job kind identifier for event audit records.
func (EventAuditArgs) Kind() string { return "event_audit" }

// InsertOpts returns default insert options for event audit jobs.
func (EventAuditArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       river.QueueDefault,
		MaxAttempts: 5,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	}
}

// NewEventAuditArgs builds job args for the event.create record of ev.
func NewEventAuditArgs(ev domain.Event, actor string) EventAuditArgs {
	rec := audit.EventCreatedRecord(ev, actor)
	return EventAuditArgs{
		AuditID:   rec.ID,
		EventID:   ev.ID,
		Title:     ev.Title,
		Decisions: len(ev.Decisions),
		Actor:     actor,
		CreatedAt: rec.CreatedAt,
	}
}

// Record converts the args back into the audit record they describe.
func (a EventAuditArgs) Record() repository.AuditRecord {
	return repository.AuditRecord{
		ID:           a.AuditID,
		Action:       audit.ActionEventCreate,
		ResourceType: audit.ResourceEvent,
		ResourceID:   strconv.FormatInt(a.EventID, 10),
		Actor:        a.Actor,
		Details: map[string]interface{}{
			"title":     a.Title,
			"decisions": a.Decisions,
		},
		CreatedAt: a.CreatedAt,
	}
}

// EventAuditWorker writes event audit records.
type EventAuditWorker struct {
	river.WorkerDefaults[EventAuditArgs]
	auditLogger *audit.Logger
}

// NewEventAuditWorker creates a new EventAuditWorker.
func NewEventAuditWorker(auditLogger *audit.Logger) *EventAuditWorker {
	return &EventAuditWorker{auditLogger: auditLogger}
}

// Work appends the audit record carried by the job.
func (w *EventAuditWorker) Work(ctx context.Context, job *river.Job[EventAuditArgs]) error {
	if w == nil || w.auditLogger == nil {
		return fmt.Errorf("event audit worker is not initialized")
	}
	if err := w.auditLogger.Append(ctx, job.Args.Record()); err != nil {
		return err
	}
	logger.Debug("Event audit recorded",
		zap.String("audit_id", job.Args.AuditID),
		zap.Int64("event_id", job.Args.EventID),
	)
	return nil
}

// TxInserter is the part of *river.Client[pgx.Tx] the recorder needs.
type TxInserter interface {
	InsertTx(ctx context.Context, tx pgx.Tx, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error)
}

// RiverAuditRecorder enqueues event_audit jobs in the create transaction.
type RiverAuditRecorder struct {
	client TxInserter
}

// NewRiverAuditRecorder creates a RiverAuditRecorder.
func NewRiverAuditRecorder(client TxInserter) *RiverAuditRecorder {
	return &RiverAuditRecorder{client: client}
}

// RecordEventCreated inserts an event_audit job using the transaction in ctx.
func (r *RiverAuditRecorder) RecordEventCreated(ctx context.Context, ev domain.Event, actor string) error {
	tx, ok := postgres.TxFromContext(ctx)
	if !ok {
		return ErrNoTransaction
	}
	args := NewEventAuditArgs(ev, actor)
	if _, err := r.client.InsertTx(ctx, tx, args, nil); err != nil {
		return fmt.Errorf("insert event_audit job: %w", err)
	}
	return nil
}
