package memory

import (
	"context"

	"eventforge.io/eventforge/internal/domain"
	"eventforge.io/eventforge/internal/repository"
)

// EventRepo stores events in a Store.
type EventRepo struct {
	store *Store
}

// NewEventRepo creates an EventRepo.
func NewEventRepo(store *Store) EventRepo {
	return EventRepo{store: store}
}

var _ repository.EventRepository = EventRepo{}

// Create assigns identifiers and stores a copy of ev.
func (r EventRepo) Create(ctx context.Context, ev domain.Event) (domain.Event, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	if _, taken := r.store.byTitle[ev.Title]; taken {
		return domain.Event{}, repository.ErrTitleConflict
	}

	r.store.nextEventID++
	ev.ID = r.store.nextEventID
	decisions := make([]domain.Decision, len(ev.Decisions))
	for i, d := range ev.Decisions {
		r.store.nextDecisionID++
		d.ID = r.store.nextDecisionID
		d.EventTitle = ev.Title
		decisions[i] = d
	}
	ev.Decisions = decisions

	r.store.byTitle[ev.Title] = len(r.store.events)
	r.store.events = append(r.store.events, ev)
	return cloneEvent(ev), nil
}

// GetByTitle returns the event with exactly this title.
func (r EventRepo) GetByTitle(ctx context.Context, title string) (domain.Event, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	idx, ok := r.store.byTitle[title]
	if !ok {
		return domain.Event{}, repository.ErrNotFound
	}
	return cloneEvent(r.store.events[idx]), nil
}

// Count returns the number of stored events.
func (r EventRepo) Count(ctx context.Context) (int, error) {
	unlock := r.store.lock(ctx)
	defer unlock()
	return len(r.store.events), nil
}

// GetAt returns the event at offset in id order.
func (r EventRepo) GetAt(ctx context.Context, offset int) (domain.Event, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	if offset < 0 || offset >= len(r.store.events) {
		return domain.Event{}, repository.ErrNotFound
	}
	return cloneEvent(r.store.events[offset]), nil
}

func cloneEvent(ev domain.Event) domain.Event {
	out := ev
	out.Decisions = make([]domain.Decision, len(ev.Decisions))
	copy(out.Decisions, ev.Decisions)
	return out
}
