package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventforge.io/eventforge/internal/domain"
	"eventforge.io/eventforge/internal/repository"
	"eventforge.io/eventforge/internal/testutil"
)

func newEvent(title string) domain.Event {
	return domain.Event{
		Title:       title,
		Description: "The river is high after the rains.",
		Decisions: []domain.Decision{
			{
				Type:        domain.DecisionSTR,
				Description: "Swim across",
				Log:         domain.NewDecisionLog([]string{"Cold water.", "Strong current, a real one."}),
				Difficulty:  14,
				Outcomes: domain.Outcomes{
					OnSuccess: domain.Outcome{ResultDescr: "You reach the far bank."},
					OnFailure: domain.Outcome{ResultDescr: "The current drags you back."},
				},
			},
			{
				Type:        domain.DecisionTEXT,
				Description: "Wait",
				Log:         domain.NewDecisionLog([]string{"You sit."}),
				Outcomes: domain.Outcomes{
					OnSuccess: domain.Outcome{ResultDescr: "The water recedes."},
					OnFailure: domain.Outcome{ResultDescr: "Night falls."},
				},
			},
		},
	}
}

func TestEventRepo_RoundTrip(t *testing.T) {
	pool := testutil.OpenPGXPool(t, "event_repo_roundtrip")
	ctx := context.Background()
	require.NoError(t, EnsureSchema(ctx, pool))
	require.NoError(t, EnsureSchema(ctx, pool), "schema bootstrap is idempotent")

	repo := NewEventRepo(pool)
	created, err := repo.Create(ctx, newEvent("River"))
	require.NoError(t, err)
	require.True(t, created.IsPersisted())
	require.Len(t, created.Decisions, 2)

	got, err := repo.GetByTitle(ctx, "River")
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, "[Cold water., Strong current, a real one.]", got.Decisions[0].Log.String())
	assert.Equal(t, []string{"Cold water.", "Strong current, a real one."}, got.Decisions[0].Log.Entries())

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	at, err := repo.GetAt(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, created.ID, at.ID)

	_, err = repo.GetAt(ctx, 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.GetByTitle(ctx, "river")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEventRepo_TitleConflict(t *testing.T) {
	pool := testutil.OpenPGXPool(t, "event_repo_conflict")
	ctx := context.Background()
	require.NoError(t, EnsureSchema(ctx, pool))

	repo := NewEventRepo(pool)
	_, err := repo.Create(ctx, newEvent("River"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newEvent("River"))
	assert.ErrorIs(t, err, repository.ErrTitleConflict)
}

func TestTxManager_RollbackWithAudit(t *testing.T) {
	pool := testutil.OpenPGXPool(t, "event_repo_tx")
	ctx := context.Background()
	require.NoError(t, EnsureSchema(ctx, pool))

	repo := NewEventRepo(pool)
	audits := NewAuditStore(pool)
	tx := NewTxManager(pool)

	boom := errors.New("boom")
	err := tx.RunInTx(ctx, func(ctx context.Context) error {
		ev, err := repo.Create(ctx, newEvent("Doomed"))
		if err != nil {
			return err
		}
		if err := audits.Append(ctx, repository.AuditRecord{
			ID: "audit-doomed", Action: "event.create", ResourceType: "event",
			ResourceID: "x", Actor: "tester",
		}); err != nil {
			return err
		}
		_, inTx := TxFromContext(ctx)
		require.True(t, inTx)
		require.True(t, ev.IsPersisted())
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	recs, err := audits.ListByResource(ctx, "event", "x")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestAuditStore_AppendAndList(t *testing.T) {
	pool := testutil.OpenPGXPool(t, "audit_store")
	ctx := context.Background()
	require.NoError(t, EnsureSchema(ctx, pool))

	s := NewAuditStore(pool)
	rec := repository.AuditRecord{
		ID: "audit-1", Action: "event.create", ResourceType: "event", ResourceID: "7",
		Actor: "admin-1", Details: map[string]interface{}{"title": "River"},
	}
	require.NoError(t, s.Append(ctx, rec))
	require.NoError(t, s.Append(ctx, rec), "duplicate ids are ignored")

	got, err := s.ListByResource(ctx, "event", "7")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "admin-1", got[0].Actor)
	assert.Equal(t, "River", got[0].Details["title"])
}

func TestPinger(t *testing.T) {
	pool := testutil.OpenPGXPool(t, "pinger")
	assert.NoError(t, NewPinger(pool).Ping(context.Background()))
}

func TestTxFromContext_Empty(t *testing.T) {
	_, ok := TxFromContext(context.Background())
	assert.False(t, ok)
}
