package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"eventforge.io/eventforge/internal/domain"
	apperrors "eventforge.io/eventforge/internal/pkg/errors"
	"eventforge.io/eventforge/internal/pkg/logger"
	"eventforge.io/eventforge/internal/pkg/worker"
	"eventforge.io/eventforge/internal/service"
)

const seedActor = "seed"

type eventDraft = service.EventDraft

type catalog struct {
	Events []eventDraft `yaml:"events"`
}

// eventCreator is the part of EventService the seeder needs.
type eventCreator interface {
	Create(ctx context.Context, draft service.EventDraft, actor string) (domain.Event, error)
	TitleTaken(ctx context.Context, title string) (bool, error)
}

// seedReport counts draft outcomes.
type seedReport struct {
	Created  int
	Skipped  int
	Rejected int
}

// loadCatalog decodes a catalog. Unknown keys are rejected.
func loadCatalog(r io.Reader) ([]eventDraft, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c catalog
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog is empty")
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(c.Events) == 0 {
		return nil, errors.New("catalog has no events")
	}
	return c.Events, nil
}

// seedCatalog creates every draft on pool. Titles that already exist are
// skipped, as are repeats of a title earlier in the catalog. A store or
// pool failure aborts with an error; validation failures are only counted.
func seedCatalog(ctx context.Context, events eventCreator, pool *worker.Pool, drafts []eventDraft) (seedReport, error) {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		report   seedReport
		firstErr error
	)
	record := func(fn func()) {
		mu.Lock()
		defer mu.Unlock()
		fn()
	}

	seen := make(map[string]struct{}, len(drafts))
	for i, draft := range drafts {
		if _, dup := seen[draft.Title]; dup {
			logger.Warn("Duplicate title in catalog, skipping",
				zap.Int("index", i),
				zap.String("title", draft.Title),
			)
			record(func() { report.Skipped++ })
			continue
		}
		seen[draft.Title] = struct{}{}

		wg.Add(1)
		err := pool.Submit(ctx, func(ctx context.Context) {
			defer wg.Done()
			outcome, err := seedOne(ctx, events, i, draft)
			record(func() {
				switch {
				case err != nil:
					if firstErr == nil {
						firstErr = err
					}
				case outcome == outcomeCreated:
					report.Created++
				case outcome == outcomeSkipped:
					report.Skipped++
				default:
					report.Rejected++
				}
			})
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return report, fmt.Errorf("submit draft %d: %w", i, err)
		}
	}
	wg.Wait()

	if firstErr != nil {
		return report, firstErr
	}
	return report, nil
}

type seedOutcome int

const (
	outcomeCreated seedOutcome = iota
	outcomeSkipped
	outcomeRejected
)

func seedOne(ctx context.Context, events eventCreator, index int, draft eventDraft) (seedOutcome, error) {
	taken, err := events.TitleTaken(ctx, draft.Title)
	if err != nil {
		return 0, fmt.Errorf("look up %q: %w", draft.Title, err)
	}
	if taken {
		logger.Info("Event already exists, skipping", zap.String("title", draft.Title))
		return outcomeSkipped, nil
	}

	ev, err := events.Create(ctx, draft, seedActor)
	if err == nil {
		logger.Info("Event seeded",
			zap.Int64("event_id", ev.ID),
			zap.String("title", ev.Title),
			zap.Int("decisions", len(ev.Decisions)),
		)
		return outcomeCreated, nil
	}

	switch apperrors.CodeOf(err) {
	case apperrors.CodeEventTitleConflict:
		// Another writer took the title after the lookup.
		logger.Info("Event already exists, skipping", zap.String("title", draft.Title))
		return outcomeSkipped, nil
	case apperrors.CodeValidationFailed:
		logger.Warn("Draft rejected",
			zap.Int("index", index),
			zap.String("title", draft.Title),
			zap.Any("violations", apperrors.FieldErrorsOf(err)),
		)
		return outcomeRejected, nil
	default:
		return 0, fmt.Errorf("create %q: %w", draft.Title, err)
	}
}
