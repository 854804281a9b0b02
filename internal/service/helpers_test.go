package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "eventforge.io/eventforge/internal/pkg/errors"
	"eventforge.io/eventforge/internal/pkg/logger"
)

func init() {
	_ = logger.Init("error", "json")
}

func outcomes(success, failure string) map[string]*OutcomeDraft {
	return map[string]*OutcomeDraft{
		resultKeySuccess: {ResultDescr: success},
		resultKeyFailure: {ResultDescr: failure},
	}
}

func checkDecision() DecisionDraft {
	return DecisionDraft{
		DecisionType: "STR",
		Description:  "Force the door",
		DecisionLog:  []string{"You brace your shoulder."},
		Difficulty:   12,
		Results:      outcomes("The door gives way.", "Your shoulder aches."),
	}
}

func textDecision() DecisionDraft {
	return DecisionDraft{
		DecisionType: "TEXT",
		Description:  "Walk away",
		DecisionLog:  []string{"You turn around."},
		Difficulty:   0,
		Results:      outcomes("You leave quietly.", "Someone saw you."),
	}
}

func validDraft() EventDraft {
	return EventDraft{
		Title:       "Locked door",
		Description: "A heavy oak door blocks the corridor.",
		Decisions:   []DecisionDraft{checkDecision(), textDecision()},
	}
}

func titleFree(context.Context, string) (bool, error) { return false, nil }

func titleTaken(context.Context, string) (bool, error) { return true, nil }

// requireViolations asserts err is VALIDATION_FAILED carrying exactly want.
func requireViolations(t *testing.T, err error, want ...apperrors.FieldError) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	require.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
	require.Equal(t, want, appErr.FieldErrors)
}

func repeat(s string, n int) string { return strings.Repeat(s, n) }

func sameDecisions(n int) []DecisionDraft {
	out := make([]DecisionDraft, n)
	for i := range out {
		out[i] = checkDecision()
	}
	return out
}
