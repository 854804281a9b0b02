package handlers

import (
	"time"

	"eventforge.io/eventforge/internal/domain"
	"eventforge.io/eventforge/internal/repository"
)

// Result keys of a decision view.
const (
	resultKeySuccess = "true"
	resultKeyFailure = "false"
)

// EventView is the JSON shape of a stored event.
type EventView struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Decisions   []DecisionView `json:"decisions"`
}

// DecisionView is the JSON shape of a stored decision.
type DecisionView struct {
	ID            int64                  `json:"id"`
	DecisionType  string                 `json:"decisionType"`
	DecisionDescr string                 `json:"decisionDescr"`
	Difficulty    int                    `json:"difficulty"`
	DecisionLog   string                 `json:"decisionLog"`
	EventTitle    string                 `json:"eventTitle"`
	Results       map[string]OutcomeView `json:"results"`
}

// OutcomeView is the text of one resolution.
type OutcomeView struct {
	ResultDescr string `json:"resultDescr"`
}

// AuditRecordView is the JSON shape of an audit record.
type AuditRecordView struct {
	ID           string                 `json:"id"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id"`
	Actor        string                 `json:"actor"`
	Details      map[string]interface{} `json:"details,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// AuditListView wraps audit records.
type AuditListView struct {
	Items []AuditRecordView `json:"items"`
}

func toEventView(ev domain.Event) EventView {
	decisions := make([]DecisionView, 0, len(ev.Decisions))
	for _, d := range ev.Decisions {
		decisions = append(decisions, toDecisionView(d))
	}
	return EventView{
		ID:          ev.ID,
		Title:       ev.Title,
		Description: ev.Description,
		Decisions:   decisions,
	}
}

func toDecisionView(d domain.Decision) DecisionView {
	return DecisionView{
		ID:            d.ID,
		DecisionType:  d.Type.String(),
		DecisionDescr: d.Description,
		Difficulty:    d.Difficulty,
		DecisionLog:   d.Log.String(),
		EventTitle:    d.EventTitle,
		Results: map[string]OutcomeView{
			resultKeySuccess: {ResultDescr: d.Outcomes.For(true).ResultDescr},
			resultKeyFailure: {ResultDescr: d.Outcomes.For(false).ResultDescr},
		},
	}
}

func toAuditListView(recs []repository.AuditRecord) AuditListView {
	items := make([]AuditRecordView, 0, len(recs))
	for _, r := range recs {
		items = append(items, AuditRecordView{
			ID:           r.ID,
			Action:       r.Action,
			ResourceType: r.ResourceType,
			ResourceID:   r.ResourceID,
			Actor:        r.Actor,
			Details:      r.Details,
			CreatedAt:    r.CreatedAt.UTC(),
		})
	}
	return AuditListView{Items: items}
}
