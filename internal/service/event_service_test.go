package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventforge.io/eventforge/internal/domain"
	apperrors "eventforge.io/eventforge/internal/pkg/errors"
	"eventforge.io/eventforge/internal/repository"
	"eventforge.io/eventforge/internal/repository/memory"
)

type recordedAudit struct {
	eventID int64
	actor   string
}

type fakeAudit struct {
	mu      sync.Mutex
	records []recordedAudit
	err     error
}

func (f *fakeAudit) RecordEventCreated(_ context.Context, ev domain.Event, actor string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, recordedAudit{eventID: ev.ID, actor: actor})
	return nil
}

type fixedPicker int

func (p fixedPicker) Pick(int) int { return int(p) }

// stubRepo overrides selected EventRepository methods on top of a memory repo.
type stubRepo struct {
	repository.EventRepository
	getByTitle func(ctx context.Context, title string) (domain.Event, error)
	create     func(ctx context.Context, ev domain.Event) (domain.Event, error)
}

func (s stubRepo) GetByTitle(ctx context.Context, title string) (domain.Event, error) {
	if s.getByTitle != nil {
		return s.getByTitle(ctx, title)
	}
	return s.EventRepository.GetByTitle(ctx, title)
}

func (s stubRepo) Create(ctx context.Context, ev domain.Event) (domain.Event, error) {
	if s.create != nil {
		return s.create(ctx, ev)
	}
	return s.EventRepository.Create(ctx, ev)
}

type serviceFixture struct {
	svc   *EventService
	repo  memory.EventRepo
	audit *fakeAudit
}

func newServiceFixture(picker Picker) serviceFixture {
	store := memory.NewStore()
	repo := memory.NewEventRepo(store)
	audit := &fakeAudit{}
	svc := NewEventService(repo, memory.NewTxManager(store), audit, NewEventValidator(), picker)
	return serviceFixture{svc: svc, repo: repo, audit: audit}
}

func TestEventService_CreateTextEvent(t *testing.T) {
	f := newServiceFixture(NewUniformPicker())
	ctx := context.Background()

	draft := EventDraft{
		Title:       "Dragon",
		Description: "A dragon sleeps on its hoard.",
		Decisions: []DecisionDraft{{
			DecisionType: "TEXT",
			Description:  "Sneak past",
			DecisionLog:  []string{"You hold your breath.", "You hold your breath."},
			Difficulty:   0,
			Results:      outcomes("The dragon keeps sleeping.", "One eye opens."),
		}},
	}

	ev, err := f.svc.Create(ctx, draft, "admin-1")
	require.NoError(t, err)
	require.True(t, ev.IsPersisted())
	require.Len(t, ev.Decisions, 1)
	assert.NotZero(t, ev.Decisions[0].ID)
	assert.Equal(t, "[You hold your breath.]", ev.Decisions[0].Log.String())
	assert.Equal(t, "Dragon", ev.Decisions[0].EventTitle)

	stored, err := f.svc.GetByTitle(ctx, "Dragon")
	require.NoError(t, err)
	assert.Equal(t, ev, stored)

	require.Len(t, f.audit.records, 1)
	assert.Equal(t, recordedAudit{eventID: ev.ID, actor: "admin-1"}, f.audit.records[0])
}

func TestEventService_CreateRejectedWritesNothing(t *testing.T) {
	f := newServiceFixture(NewUniformPicker())
	ctx := context.Background()

	draft := validDraft()
	draft.Decisions[0].Difficulty = 0 // STR with difficulty 0

	_, err := f.svc.Create(ctx, draft, "admin-1")
	requireViolations(t, err, fe("decisions[0].results", msgCheckWithDifficulty))

	n, err := f.repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, f.audit.records)
}

func TestEventService_DuplicateTitleRejected(t *testing.T) {
	f := newServiceFixture(NewUniformPicker())
	ctx := context.Background()

	_, err := f.svc.Create(ctx, validDraft(), "admin-1")
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, validDraft(), "admin-2")
	requireViolations(t, err, fe("title", apperrors.TitleNotUniqueDescr))

	n, err := f.repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEventService_DistinctDecisionCount(t *testing.T) {
	f := newServiceFixture(NewUniformPicker())

	draft := validDraft()
	draft.Decisions = append(sameDecisions(5), textDecision(), textDecision())

	ev, err := f.svc.Create(context.Background(), draft, "admin-1")
	require.NoError(t, err)
	assert.Len(t, ev.Decisions, 2)
}

func TestEventService_StoreConflictBecomes409(t *testing.T) {
	store := memory.NewStore()
	repo := stubRepo{
		EventRepository: memory.NewEventRepo(store),
		create: func(context.Context, domain.Event) (domain.Event, error) {
			return domain.Event{}, repository.ErrTitleConflict
		},
	}
	svc := NewEventService(repo, memory.NewTxManager(store), nil, NewEventValidator(), NewUniformPicker())

	_, err := svc.Create(context.Background(), validDraft(), "admin-1")
	require.Error(t, err)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeEventTitleConflict, appErr.Code)
	assert.Equal(t, http.StatusConflict, appErr.HTTPStatus)
	assert.Equal(t, []apperrors.FieldError{fe("title", apperrors.TitleNotUniqueDescr)}, appErr.FieldErrors)
	assert.ErrorIs(t, err, repository.ErrTitleConflict)
}

func TestEventService_LookupFailureAborts(t *testing.T) {
	boom := errors.New("connection reset")
	store := memory.NewStore()
	repo := stubRepo{
		EventRepository: memory.NewEventRepo(store),
		getByTitle: func(context.Context, string) (domain.Event, error) {
			return domain.Event{}, boom
		},
	}
	svc := NewEventService(repo, memory.NewTxManager(store), nil, NewEventValidator(), NewUniformPicker())

	_, err := svc.Create(context.Background(), validDraft(), "admin-1")
	require.ErrorIs(t, err, boom)
	_, isApp := apperrors.IsAppError(err)
	assert.False(t, isApp)
}

func TestEventService_AuditFailureRollsBack(t *testing.T) {
	f := newServiceFixture(NewUniformPicker())
	f.audit.err = errors.New("audit down")
	ctx := context.Background()

	_, err := f.svc.Create(ctx, validDraft(), "admin-1")
	require.ErrorIs(t, err, f.audit.err)

	n, err := f.repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEventService_GetRandomEmpty(t *testing.T) {
	f := newServiceFixture(NewUniformPicker())

	_, err := f.svc.GetRandom(context.Background())
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeEventNotFound, appErr.Code)
}

func TestEventService_GetRandomUsesPickedOffset(t *testing.T) {
	f := newServiceFixture(fixedPicker(1))
	ctx := context.Background()
	for _, title := range []string{"First", "Second", "Third"} {
		d := validDraft()
		d.Title = title
		_, err := f.svc.Create(ctx, d, "admin-1")
		require.NoError(t, err)
	}

	ev, err := f.svc.GetRandom(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Second", ev.Title)
}

func TestEventService_GetRandomIsUniform(t *testing.T) {
	f := newServiceFixture(NewSeededPicker(7, 11))
	ctx := context.Background()

	const k = 4
	for i := 0; i < k; i++ {
		d := validDraft()
		d.Title = fmt.Sprintf("Event %d", i)
		_, err := f.svc.Create(ctx, d, "admin-1")
		require.NoError(t, err)
	}

	const calls = 20000
	counts := make(map[string]int, k)
	for i := 0; i < calls; i++ {
		ev, err := f.svc.GetRandom(ctx)
		require.NoError(t, err)
		counts[ev.Title]++
	}

	require.Len(t, counts, k)
	for title, c := range counts {
		freq := float64(c) / calls
		assert.LessOrEqual(t, math.Abs(freq-1.0/k), 0.02, "%s picked with frequency %.4f", title, freq)
	}
}

func TestEventService_GetByTitleNotFound(t *testing.T) {
	f := newServiceFixture(NewUniformPicker())

	_, err := f.svc.GetByTitle(context.Background(), "Nowhere")
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeEventNotFound, appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.HTTPStatus)
}

func TestEventService_TitleTaken(t *testing.T) {
	f := newServiceFixture(NewUniformPicker())
	ctx := context.Background()

	taken, err := f.svc.TitleTaken(ctx, "Locked door")
	require.NoError(t, err)
	assert.False(t, taken)

	_, err = f.svc.Create(ctx, validDraft(), "admin-1")
	require.NoError(t, err)

	taken, err = f.svc.TitleTaken(ctx, "Locked door")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = f.svc.TitleTaken(ctx, "locked door")
	require.NoError(t, err)
	assert.False(t, taken, "titles are case-sensitive")
}

func TestEventService_ConcurrentCreatesSameTitle(t *testing.T) {
	f := newServiceFixture(NewUniformPicker())
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Create(ctx, validDraft(), "admin-1")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		appErr, ok := apperrors.IsAppError(err)
		require.True(t, ok)
		assert.Contains(t, []string{apperrors.CodeValidationFailed, apperrors.CodeEventTitleConflict}, appErr.Code)
	}
	assert.Equal(t, 1, succeeded)

	n, err := f.repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, f.audit.records, 1)
}

func TestUniformPicker_Range(t *testing.T) {
	p := NewUniformPicker()
	for n := 1; n <= 10; n++ {
		for i := 0; i < 100; i++ {
			got := p.Pick(n)
			require.GreaterOrEqual(t, got, 0)
			require.Less(t, got, n)
		}
	}
}

func TestSeededPicker_Deterministic(t *testing.T) {
	a := NewSeededPicker(1, 2)
	b := NewSeededPicker(1, 2)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Pick(1000), b.Pick(1000))
	}
}
