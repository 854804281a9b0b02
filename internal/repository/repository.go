// Package repository defines the storage ports used by the event service.
//
// Adapters live in subpackages: postgres (pgx) and memory (tests, local runs).
// Adapters translate their native errors into the sentinels below.
//
// Import Path: eventforge.io/eventforge/internal/repository
package repository

import (
	"context"
	"errors"
	"time"

	"eventforge.io/eventforge/internal/domain"
)

var (
	// ErrNotFound is returned when no event matches the lookup.
	ErrNotFound = errors.New("event not found")
	// ErrTitleConflict is returned when the title uniqueness constraint rejects a write.
	ErrTitleConflict = errors.New("event title already exists")
)

// EventRepository persists events together with their decisions and outcomes.
type EventRepository interface {
	// Create stores ev and returns it with identifiers assigned.
	Create(ctx context.Context, ev domain.Event) (domain.Event, error)
	// GetByTitle returns the event with exactly this title.
	GetByTitle(ctx context.Context, title string) (domain.Event, error)
	// Count returns the number of stored events.
	Count(ctx context.Context) (int, error)
	// GetAt returns the event at offset in ascending id order.
	GetAt(ctx context.Context, offset int) (domain.Event, error)
}

// TxManager runs fn inside one store transaction. Repositories called with
// the ctx passed to fn take part in that transaction.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Pinger reports store availability for readiness probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AuditRecord is one append-only audit entry.
type AuditRecord struct {
	ID           string
	Action       string
	ResourceType string
	ResourceID   string
	Actor        string
	Details      map[string]interface{}
	CreatedAt    time.Time
}

// AuditStore appends and reads audit records.
type AuditStore interface {
	Append(ctx context.Context, rec AuditRecord) error
	// ListByResource returns the records of one resource, oldest first.
	ListByResource(ctx context.Context, resourceType, resourceID string) ([]AuditRecord, error)
}
