// Package domain contains the narrative event model.
//
// Events own their decisions; decisions carry exactly two outcomes.
// Values are immutable once an event has been created.
//
// Import Path: eventforge.io/eventforge/internal/domain
package domain

// Field limits shared by validation and storage.
const (
	MaxTitleLength             = 100
	MaxEventDescriptionLength  = 1000
	MinDecisions               = 1
	MaxDecisions               = 20
	MaxDecisionDescription     = 100
	MinDecisionLogEntries      = 1
	MaxDecisionLogEntries      = 5
	MaxDecisionLogEntryLength  = 100
	MaxResultDescriptionLength = 1000
)

// Event is a narrative scenario offering a set of decisions.
type Event struct {
	// ID is assigned by the store; zero until the event is persisted.
	ID          int64
	Title       string
	Description string
	Decisions   []Decision
}

// IsPersisted reports whether the store has assigned an identifier.
func (e Event) IsPersisted() bool {
	return e.ID != 0
}

// Outcome is the text shown when a decision resolves.
type Outcome struct {
	ResultDescr string
}

// Outcomes is the fixed success/failure pair of a decision.
type Outcomes struct {
	OnSuccess Outcome
	OnFailure Outcome
}

// For returns the outcome for the given resolution.
func (o Outcomes) For(success bool) Outcome {
	if success {
		return o.OnSuccess
	}
	return o.OnFailure
}
