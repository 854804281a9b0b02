// Package service holds the event use cases: validation of create requests,
// persistence orchestration and random selection.
//
// Import Path: eventforge.io/eventforge/internal/service
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"eventforge.io/eventforge/internal/domain"
	"eventforge.io/eventforge/internal/repository"
	apperrors "eventforge.io/eventforge/internal/pkg/errors"
	"eventforge.io/eventforge/internal/pkg/logger"
)

// AuditRecorder records event creation. It is called inside the create
// transaction with the transaction's ctx.
type AuditRecorder interface {
	RecordEventCreated(ctx context.Context, ev domain.Event, actor string) error
}

// EventService creates and reads events.
type EventService struct {
	events    repository.EventRepository
	tx        repository.TxManager
	audit     AuditRecorder
	validator *EventValidator
	picker    Picker
}

// NewEventService creates an EventService. audit may be nil.
func NewEventService(
	events repository.EventRepository,
	tx repository.TxManager,
	audit AuditRecorder,
	validator *EventValidator,
	picker Picker,
) *EventService {
	return &EventService{
		events:    events,
		tx:        tx,
		audit:     audit,
		validator: validator,
		picker:    picker,
	}
}

// Create validates draft and stores the normalized event with its audit
// record in one transaction. Rejected drafts write nothing.
func (s *EventService) Create(ctx context.Context, draft EventDraft, actor string) (domain.Event, error) {
	ev, err := s.validator.Validate(ctx, draft, s.TitleTaken)
	if err != nil {
		return domain.Event{}, err
	}

	var created domain.Event
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.events.Create(ctx, ev)
		if err != nil {
			return err
		}
		if s.audit == nil {
			return nil
		}
		return s.audit.RecordEventCreated(ctx, created, actor)
	})
	if err != nil {
		if errors.Is(err, repository.ErrTitleConflict) {
			logger.Warn("Event title taken concurrently", zap.String("title", ev.Title))
			conflict := apperrors.ErrTitleConflict(ev.Title)
			conflict.Err = err
			return domain.Event{}, conflict
		}
		return domain.Event{}, fmt.Errorf("create event %q: %w", ev.Title, err)
	}

	logger.Info("Event created",
		zap.Int64("event_id", created.ID),
		zap.String("title", created.Title),
		zap.Int("decisions", len(created.Decisions)),
		zap.String("actor", actor),
	)
	return created, nil
}

// GetRandom returns a uniformly chosen stored event.
func (s *EventService) GetRandom(ctx context.Context) (domain.Event, error) {
	n, err := s.events.Count(ctx)
	if err != nil {
		return domain.Event{}, fmt.Errorf("count events: %w", err)
	}
	if n == 0 {
		return domain.Event{}, apperrors.ErrEventNotFound()
	}

	offset := s.picker.Pick(n)
	ev, err := s.events.GetAt(ctx, offset)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Event{}, apperrors.ErrEventNotFound()
		}
		return domain.Event{}, fmt.Errorf("get event at offset %d: %w", offset, err)
	}

	logger.Debug("Random event picked",
		zap.Int64("event_id", ev.ID),
		zap.Int("offset", offset),
		zap.Int("total", n),
	)
	return ev, nil
}

// GetByTitle returns the event with exactly this title.
func (s *EventService) GetByTitle(ctx context.Context, title string) (domain.Event, error) {
	ev, err := s.events.GetByTitle(ctx, title)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Event{}, apperrors.ErrEventNotFound()
		}
		return domain.Event{}, fmt.Errorf("get event by title: %w", err)
	}
	return ev, nil
}

// TitleTaken implements TitleLookup against the repository.
func (s *EventService) TitleTaken(ctx context.Context, title string) (bool, error) {
	_, err := s.events.GetByTitle(ctx, title)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("look up title: %w", err)
	}
}
