// Package audit implements the audit logging service.
//
// Audit logs are append-only records. Hard-delete is NOT allowed.
//
// Import Path: eventforge.io/eventforge/internal/governance/audit
package audit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"eventforge.io/eventforge/internal/domain"
	"eventforge.io/eventforge/internal/pkg/logger"
	"eventforge.io/eventforge/internal/repository"
)

const (
	// ActionEventCreate is recorded once per stored event.
	ActionEventCreate = "event.create"
	// ResourceEvent is the resource type of event audit records.
	ResourceEvent = "event"
)

// Logger writes audit records to an AuditStore.
type Logger struct {
	store repository.AuditStore
}

// NewLogger creates a new audit Logger.
func NewLogger(store repository.AuditStore) *Logger {
	return &Logger{store: store}
}

// LogAction records an auditable action.
func (l *Logger) LogAction(ctx context.Context, action, resourceType, resourceID, actor string, details map[string]interface{}) error {
	return l.Append(ctx, repository.AuditRecord{
		ID:           generateAuditID(),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Actor:        actor,
		Details:      details,
	})
}

// Append writes a prepared record. Records with an ID already stored are
// ignored by the store, so retried deliveries are safe.
func (l *Logger) Append(ctx context.Context, rec repository.AuditRecord) error {
	if rec.ID == "" {
		rec.ID = generateAuditID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if err := l.store.Append(ctx, rec); err != nil {
		logger.Error("Failed to write audit log",
			zap.String("action", rec.Action),
			zap.String("resource_type", rec.ResourceType),
			zap.String("resource_id", rec.ResourceID),
			zap.Error(err),
		)
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// RecordEventCreated writes the event.create record synchronously.
func (l *Logger) RecordEventCreated(ctx context.Context, ev domain.Event, actor string) error {
	return l.Append(ctx, EventCreatedRecord(ev, actor))
}

// History returns the audit records of one event, oldest first.
func (l *Logger) History(ctx context.Context, eventID int64) ([]repository.AuditRecord, error) {
	recs, err := l.store.ListByResource(ctx, ResourceEvent, strconv.FormatInt(eventID, 10))
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return recs, nil
}

// EventCreatedRecord builds the event.create record for ev.
func EventCreatedRecord(ev domain.Event, actor string) repository.AuditRecord {
	return repository.AuditRecord{
		ID:           generateAuditID(),
		Action:       ActionEventCreate,
		ResourceType: ResourceEvent,
		ResourceID:   strconv.FormatInt(ev.ID, 10),
		Actor:        actor,
		Details: map[string]interface{}{
			"title":     ev.Title,
			"decisions": len(ev.Decisions),
		},
		CreatedAt: time.Now().UTC(),
	}
}

func generateAuditID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return fmt.Sprintf("audit-%s", id.String())
}
