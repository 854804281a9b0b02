package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"eventforge.io/eventforge/internal/domain"
	apperrors "eventforge.io/eventforge/internal/pkg/errors"
	"eventforge.io/eventforge/internal/pkg/logger"
)

// Custom validation tags.
const (
	tagDecisionType = "decisiontype"
	tagNotBlank     = "notblank"
	tagResultKey    = "resultkey"
	tagResultDescr  = "resultdescr"
	tagRequired     = "required"
)

// Messages returned to clients. Field paths use the request's JSON names.
const (
	msgTitle            = "Should be no more than 100 characters long and must not be blank."
	msgEventDescription = "Should be no more than 1000 characters long and must not be blank."
	msgDecisions        = "The decisions list must contain at least one element and no more than 20."
	msgDecisionType     = "Invalid decision type."
	msgDecisionDescr    = "Should be no more than 100 characters long and must not be blank."
	msgDecisionLog      = "Decision log must contain at least one entry and no more than 5."
	msgDecisionLogEntry = "Decision log entry cannot exceed 100 characters and must not be blank."
	msgDifficulty       = "Difficulty must be at least 0."
	msgDifficultyMax    = "Difficulty must not exceed 2147483647."
	msgResultsRequired  = "It is necessary to indicate the positive and negative result."
	msgResultKey        = "The result key must be true or false."
	msgResultDescr      = "Should be no more than 1000 characters long and must not be blank."

	msgResultMissing       = "The successful or unsuccessful result is not specified."
	msgSimpleDifficulty    = "The simple decisions should be with 0 difficulty."
	msgCheckWithDifficulty = "The characteristic check decisions should be with difficulty more than 0."
)

// fieldMessages is keyed by field path with every index replaced by "[]".
var fieldMessages = map[string]string{
	"title":                             msgTitle,
	"description":                       msgEventDescription,
	"decisions":                         msgDecisions,
	"decisions[].decisionType":          msgDecisionType,
	"decisions[].description":           msgDecisionDescr,
	"decisions[].decisionLog":           msgDecisionLog,
	"decisions[].decisionLog[]":         msgDecisionLogEntry,
	"decisions[].difficulty":            msgDifficulty,
	"decisions[].results":               msgResultsRequired,
	"decisions[].results[].resultDescr": msgResultDescr,
}

var indexPattern = regexp.MustCompile(`\[[^\]]*\]`)

// TitleLookup reports whether an event with exactly this title exists.
type TitleLookup func(ctx context.Context, title string) (bool, error)

// EventValidator checks create requests and turns accepted ones into
// normalized domain events. It holds no per-request state.
type EventValidator struct {
	validate *validator.Validate
}

// NewEventValidator creates an EventValidator with the draft rules registered.
func NewEventValidator() *EventValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	// Postgres text columns cannot hold NUL, so it counts as blank.
	_ = v.RegisterValidation(tagNotBlank, func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return strings.TrimSpace(s) != "" && !strings.ContainsRune(s, 0)
	})
	_ = v.RegisterValidation(tagDecisionType, func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseDecisionType(fl.Field().String())
		return ok
	})
	v.RegisterStructValidation(validateResultEntries, DecisionDraft{})

	return &EventValidator{validate: v}
}

// Validate runs the structural rules, then the business rules and the title
// uniqueness check. Violations are returned together as one
// VALIDATION_FAILED AppError. An error from isTitleTaken is returned as is.
func (v *EventValidator) Validate(ctx context.Context, draft EventDraft, isTitleTaken TitleLookup) (domain.Event, error) {
	logger.Info("Checking new event", zap.String("title", draft.Title))

	violations, err := v.structural(draft)
	if err != nil {
		return domain.Event{}, err
	}
	if len(violations) > 0 {
		logger.Warn("Event draft failed structural validation",
			zap.String("title", draft.Title),
			zap.Int("violations", len(violations)),
		)
		return domain.Event{}, apperrors.ErrValidationFailed(violations)
	}

	violations = businessViolations(draft)

	taken, err := isTitleTaken(ctx, draft.Title)
	if err != nil {
		return domain.Event{}, err
	}
	if taken {
		logger.Warn("Event title is not unique", zap.String("title", draft.Title))
		violations = append(violations, apperrors.FieldError{Field: "title", Descr: apperrors.TitleNotUniqueDescr})
	}

	if len(violations) > 0 {
		return domain.Event{}, apperrors.ErrValidationFailed(violations)
	}
	return normalize(draft), nil
}

// structural translates tag failures into ordered field violations.
func (v *EventValidator) structural(draft EventDraft) ([]apperrors.FieldError, error) {
	err := v.validate.Struct(draft)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, fmt.Errorf("validate event draft: %w", err)
	}

	out := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		path := fieldPath(fe.Namespace())
		out = append(out, apperrors.FieldError{Field: path, Descr: messageFor(path, fe.Tag())})
	}
	return out, nil
}

// fieldPath drops the root struct name: "EventDraft.decisions[0].difficulty"
// becomes "decisions[0].difficulty".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func messageFor(path, tag string) string {
	shape := indexPattern.ReplaceAllString(path, "[]")
	if shape == "decisions[].results[]" {
		if tag == tagResultKey {
			return msgResultKey
		}
		return msgResultsRequired
	}
	if shape == "decisions[].difficulty" && tag == "max" {
		return msgDifficultyMax
	}
	if msg, ok := fieldMessages[shape]; ok {
		return msg
	}
	return fmt.Sprintf("Invalid value (%s).", tag)
}

// validateResultEntries checks result keys and texts of one decision.
// Keys are visited as "true", "false", then any others sorted.
func validateResultEntries(sl validator.StructLevel) {
	d, ok := sl.Current().Interface().(DecisionDraft)
	if !ok || d.Results == nil {
		return
	}

	for _, key := range orderedResultKeys(d.Results) {
		field := "results[" + key + "]"
		out := d.Results[key]
		switch {
		case key != resultKeySuccess && key != resultKeyFailure:
			sl.ReportError(key, field, "Results", tagResultKey, key)
		case out == nil:
			sl.ReportError(key, field, "Results", tagRequired, "")
		default:
			if err := sl.Validator().Var(out.ResultDescr, resultDescrRule); err != nil {
				sl.ReportError(out.ResultDescr, field+".resultDescr", "ResultDescr", tagResultDescr, "")
			}
		}
	}
}

func orderedResultKeys(results map[string]*OutcomeDraft) []string {
	keys := make([]string, 0, len(results))
	var others []string
	for _, k := range []string{resultKeySuccess, resultKeyFailure} {
		if _, ok := results[k]; ok {
			keys = append(keys, k)
		}
	}
	for k := range results {
		if k != resultKeySuccess && k != resultKeyFailure {
			others = append(others, k)
		}
	}
	sort.Strings(others)
	return append(keys, others...)
}

// businessViolations applies the cross-field rules, in decision order.
// It assumes the structural rules passed.
func businessViolations(draft EventDraft) []apperrors.FieldError {
	var out []apperrors.FieldError
	reject := func(i int, msg string) {
		logger.Warn("Decision rejected",
			zap.String("title", draft.Title),
			zap.Int("decision", i),
			zap.String("reason", msg),
		)
		out = append(out, apperrors.FieldError{Field: fmt.Sprintf("decisions[%d].results", i), Descr: msg})
	}

	for i, d := range draft.Decisions {
		if d.Results[resultKeySuccess] == nil || d.Results[resultKeyFailure] == nil {
			reject(i, msgResultMissing)
		}

		typ, _ := domain.ParseDecisionType(d.DecisionType)
		if !typ.RequiresCheck() && d.Difficulty > 0 {
			reject(i, msgSimpleDifficulty)
		}
		if typ.RequiresCheck() && d.Difficulty == 0 {
			reject(i, msgCheckWithDifficulty)
		}
	}
	return out
}

// normalize builds the domain event: logs become sets, duplicate decisions
// collapse, and each decision gets the event title.
func normalize(draft EventDraft) domain.Event {
	decisions := make([]domain.Decision, 0, len(draft.Decisions))
	for _, d := range draft.Decisions {
		typ, _ := domain.ParseDecisionType(d.DecisionType)
		decisions = append(decisions, domain.Decision{
			Type:        typ,
			Description: d.Description,
			Log:         domain.NewDecisionLog(d.DecisionLog),
			Difficulty:  d.Difficulty,
			Outcomes: domain.Outcomes{
				OnSuccess: domain.Outcome{ResultDescr: d.Results[resultKeySuccess].ResultDescr},
				OnFailure: domain.Outcome{ResultDescr: d.Results[resultKeyFailure].ResultDescr},
			},
			EventTitle: draft.Title,
		})
	}

	return domain.Event{
		Title:       draft.Title,
		Description: draft.Description,
		Decisions:   domain.DedupDecisions(decisions),
	}
}
