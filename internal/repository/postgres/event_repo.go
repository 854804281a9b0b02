package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"eventforge.io/eventforge/internal/domain"
	"eventforge.io/eventforge/internal/repository"
)

// EventRepo stores events in the events, decisions and decision_results tables.
type EventRepo struct {
	pool *pgxpool.Pool
	tx   TxManager
}

// NewEventRepo creates an EventRepo.
func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool, tx: NewTxManager(pool)}
}

var _ repository.EventRepository = (*EventRepo)(nil)

// Create inserts the event graph. Without a caller transaction it opens its own.
func (r *EventRepo) Create(ctx context.Context, ev domain.Event) (domain.Event, error) {
	err := r.tx.RunInTx(ctx, func(ctx context.Context) error {
		q := conn(ctx, r.pool)

		err := q.QueryRow(ctx,
			`INSERT INTO events (title, description) VALUES ($1, $2) RETURNING id`,
			ev.Title, ev.Description,
		).Scan(&ev.ID)
		if err != nil {
			if isTitleViolation(err) {
				return repository.ErrTitleConflict
			}
			return fmt.Errorf("insert event %q: %w", ev.Title, err)
		}

		for i := range ev.Decisions {
			d := &ev.Decisions[i]
			err := q.QueryRow(ctx, `
				INSERT INTO decisions
					(event_id, position, decision_type, description, decision_log, decision_log_entries, difficulty)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING id`,
				ev.ID, i, string(d.Type), d.Description, d.Log.String(), d.Log.Entries(), d.Difficulty,
			).Scan(&d.ID)
			if err != nil {
				return fmt.Errorf("insert decision %d of event %d: %w", i, ev.ID, err)
			}

			if _, err := q.Exec(ctx, `
				INSERT INTO decision_results (decision_id, success, result_descr)
				VALUES ($1, TRUE, $2), ($1, FALSE, $3)`,
				d.ID, d.Outcomes.OnSuccess.ResultDescr, d.Outcomes.OnFailure.ResultDescr,
			); err != nil {
				return fmt.Errorf("insert results of decision %d: %w", d.ID, err)
			}
			d.EventTitle = ev.Title
		}
		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}
	return ev, nil
}

// GetByTitle loads the event with exactly this title.
func (r *EventRepo) GetByTitle(ctx context.Context, title string) (domain.Event, error) {
	row := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, title, description FROM events WHERE title = $1`, title)
	return r.loadEvent(ctx, row)
}

// Count returns the number of stored events.
func (r *EventRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// GetAt returns the event at offset in id order.
func (r *EventRepo) GetAt(ctx context.Context, offset int) (domain.Event, error) {
	if offset < 0 {
		return domain.Event{}, repository.ErrNotFound
	}
	row := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, title, description FROM events ORDER BY id OFFSET $1 LIMIT 1`, offset)
	return r.loadEvent(ctx, row)
}

func (r *EventRepo) loadEvent(ctx context.Context, row pgx.Row) (domain.Event, error) {
	var ev domain.Event
	if err := row.Scan(&ev.ID, &ev.Title, &ev.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Event{}, repository.ErrNotFound
		}
		return domain.Event{}, fmt.Errorf("scan event: %w", err)
	}

	decisions, err := r.loadDecisions(ctx, ev.ID, ev.Title)
	if err != nil {
		return domain.Event{}, err
	}
	ev.Decisions = decisions
	return ev, nil
}

func (r *EventRepo) loadDecisions(ctx context.Context, eventID int64, title string) ([]domain.Decision, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT d.id, d.decision_type, d.description, d.decision_log_entries, d.difficulty,
		       r.success, r.result_descr
		FROM decisions d
		JOIN decision_results r ON r.decision_id = d.id
		WHERE d.event_id = $1
		ORDER BY d.position, r.success DESC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("query decisions of event %d: %w", eventID, err)
	}
	defer rows.Close()

	var out []domain.Decision
	for rows.Next() {
		var (
			id         int64
			typ        string
			descr      string
			logEntries []string
			difficulty int
			success    bool
			resultText string
		)
		if err := rows.Scan(&id, &typ, &descr, &logEntries, &difficulty, &success, &resultText); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}

		// Rows arrive grouped by decision; start a new one when the id changes.
		if len(out) == 0 || out[len(out)-1].ID != id {
			out = append(out, domain.Decision{
				ID:          id,
				Type:        domain.DecisionType(typ),
				Description: descr,
				Log:         domain.NewDecisionLog(logEntries),
				Difficulty:  difficulty,
				EventTitle:  title,
			})
		}
		d := &out[len(out)-1]
		if success {
			d.Outcomes.OnSuccess = domain.Outcome{ResultDescr: resultText}
		} else {
			d.Outcomes.OnFailure = domain.Outcome{ResultDescr: resultText}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decisions of event %d: %w", eventID, err)
	}
	return out, nil
}
