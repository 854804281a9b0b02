package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"

	"eventforge.io/eventforge/internal/domain"
	"eventforge.io/eventforge/internal/governance/audit"
	"eventforge.io/eventforge/internal/pkg/logger"
	"eventforge.io/eventforge/internal/repository/memory"
	"eventforge.io/eventforge/internal/repository/postgres"
)

func init() {
	_ = logger.Init("error", "json")
}

type fakeTx struct{ pgx.Tx }

type fakeInserter struct {
	tx   pgx.Tx
	args []river.JobArgs
	err  error
}

func (f *fakeInserter) InsertTx(_ context.Context, tx pgx.Tx, args river.JobArgs, _ *river.InsertOpts) (*rivertype.JobInsertResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tx = tx
	f.args = append(f.args, args)
	return &rivertype.JobInsertResult{}, nil
}

func sampleEvent() domain.Event {
	return domain.Event{
		ID:        9,
		Title:     "Dragon",
		Decisions: []domain.Decision{{ID: 1, Type: domain.DecisionTEXT}},
	}
}

func TestEventAuditArgsKind(t *testing.T) {
	t.Parallel()

	if got := (EventAuditArgs{}).Kind(); got != "event_audit" {
		t.Fatalf("Kind() = %q, want %q", got, "event_audit")
	}
}

func TestEventAuditArgsInsertOpts(t *testing.T) {
	t.Parallel()

	opts := (EventAuditArgs{}).InsertOpts()
	if opts.Queue != river.QueueDefault {
		t.Fatalf("Queue = %q, want %q", opts.Queue, river.QueueDefault)
	}
	if opts.MaxAttempts != 5 {
		t.Fatalf("MaxAttempts = %d, want 5", opts.MaxAttempts)
	}
	if !opts.UniqueOpts.ByArgs {
		t.Fatal("UniqueOpts.ByArgs = false, want true")
	}
}

func TestEventAuditArgsRecord(t *testing.T) {
	t.Parallel()

	args := NewEventAuditArgs(sampleEvent(), "admin-1")
	if !strings.HasPrefix(args.AuditID, "audit-") {
		t.Fatalf("AuditID = %q, want audit- prefix", args.AuditID)
	}

	rec := args.Record()
	if rec.ID != args.AuditID {
		t.Fatalf("Record().ID = %q, want %q", rec.ID, args.AuditID)
	}
	if rec.Action != audit.ActionEventCreate || rec.ResourceType != audit.ResourceEvent {
		t.Fatalf("Record() action/resource = %q/%q", rec.Action, rec.ResourceType)
	}
	if rec.ResourceID != "9" {
		t.Fatalf("Record().ResourceID = %q, want %q", rec.ResourceID, "9")
	}
	if rec.Details["title"] != "Dragon" || rec.Details["decisions"] != 1 {
		t.Fatalf("Record().Details = %v", rec.Details)
	}
}

func TestEventAuditWorkerWork(t *testing.T) {
	t.Parallel()

	store := memory.NewAuditStore()
	w := NewEventAuditWorker(audit.NewLogger(store))
	job := &river.Job[EventAuditArgs]{Args: NewEventAuditArgs(sampleEvent(), "admin-1")}

	// A retried attempt must not duplicate the record.
	for i := 0; i < 2; i++ {
		if err := w.Work(context.Background(), job); err != nil {
			t.Fatalf("Work() attempt %d error = %v", i+1, err)
		}
	}

	recs, err := store.ListByResource(context.Background(), audit.ResourceEvent, "9")
	if err != nil {
		t.Fatalf("ListByResource() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	if !recs[0].CreatedAt.Equal(job.Args.CreatedAt) {
		t.Fatalf("CreatedAt = %s, want %s", recs[0].CreatedAt.Format(time.RFC3339Nano), job.Args.CreatedAt.Format(time.RFC3339Nano))
	}
}

func TestEventAuditWorkerWork_Uninitialized(t *testing.T) {
	t.Parallel()

	var w *EventAuditWorker
	err := w.Work(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Fatalf("Work() error = %v, want contains %q", err, "not initialized")
	}
}

func TestRiverAuditRecorder(t *testing.T) {
	t.Parallel()

	t.Run("requires transaction", func(t *testing.T) {
		ins := &fakeInserter{}
		r := NewRiverAuditRecorder(ins)
		err := r.RecordEventCreated(context.Background(), sampleEvent(), "admin-1")
		if !errors.Is(err, ErrNoTransaction) {
			t.Fatalf("RecordEventCreated() error = %v, want %v", err, ErrNoTransaction)
		}
		if len(ins.args) != 0 {
			t.Fatalf("inserted %d jobs, want 0", len(ins.args))
		}
	})

	t.Run("inserts with context transaction", func(t *testing.T) {
		ins := &fakeInserter{}
		r := NewRiverAuditRecorder(ins)
		tx := &fakeTx{}
		ctx := postgres.ContextWithTx(context.Background(), tx)

		if err := r.RecordEventCreated(ctx, sampleEvent(), "admin-1"); err != nil {
			t.Fatalf("RecordEventCreated() error = %v", err)
		}
		if ins.tx != tx {
			t.Fatal("InsertTx did not receive the context transaction")
		}
		if len(ins.args) != 1 {
			t.Fatalf("inserted %d jobs, want 1", len(ins.args))
		}
		args, ok := ins.args[0].(EventAuditArgs)
		if !ok {
			t.Fatalf("args type = %T, want EventAuditArgs", ins.args[0])
		}
		if args.EventID != 9 || args.Actor != "admin-1" {
			t.Fatalf("args = %+v", args)
		}
	})

	t.Run("wraps insert error", func(t *testing.T) {
		boom := errors.New("queue unavailable")
		r := NewRiverAuditRecorder(&fakeInserter{err: boom})
		ctx := postgres.ContextWithTx(context.Background(), &fakeTx{})

		err := r.RecordEventCreated(ctx, sampleEvent(), "admin-1")
		if !errors.Is(err, boom) {
			t.Fatalf("RecordEventCreated() error = %v, want %v", err, boom)
		}
	})
}
