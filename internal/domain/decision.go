package domain

import (
	"strconv"
	"strings"
)

// DecisionType is the attribute check a decision rolls against.
type DecisionType string

const (
	DecisionSTR  DecisionType = "STR"
	DecisionDEX  DecisionType = "DEX"
	DecisionCON  DecisionType = "CON"
	DecisionINT  DecisionType = "INT"
	DecisionWIS  DecisionType = "WIS"
	DecisionCHA  DecisionType = "CHA"
	DecisionTEXT DecisionType = "TEXT" // narrative choice, no check
)

// DecisionTypes lists every valid type in declaration order.
var DecisionTypes = []DecisionType{
	DecisionSTR,
	DecisionDEX,
	DecisionCON,
	DecisionINT,
	DecisionWIS,
	DecisionCHA,
	DecisionTEXT,
}

// ParseDecisionType resolves an enum name. Matching is case-sensitive.
func ParseDecisionType(name string) (DecisionType, bool) {
	for _, t := range DecisionTypes {
		if string(t) == name {
			return t, true
		}
	}
	return "", false
}

// IsValid reports whether t is a member of the enumeration.
func (t DecisionType) IsValid() bool {
	_, ok := ParseDecisionType(string(t))
	return ok
}

// RequiresCheck is false only for TEXT decisions.
func (t DecisionType) RequiresCheck() bool {
	return t != DecisionTEXT
}

func (t DecisionType) String() string { return string(t) }

// Decision is one player-selectable action of an event.
type Decision struct {
	ID          int64
	Type        DecisionType
	Description string
	Log         DecisionLog
	Difficulty  int
	Outcomes    Outcomes

	// EventTitle is a display copy of the owning event's title.
	EventTitle string
}

// Key is the structural identity used to collapse duplicate decisions.
// Two decisions with equal keys are equal in every user-supplied field.
func (d Decision) Key() string {
	parts := []string{
		string(d.Type),
		d.Description,
		d.Log.String(),
		strconv.Itoa(d.Difficulty),
		d.Outcomes.OnSuccess.ResultDescr,
		d.Outcomes.OnFailure.ResultDescr,
	}
	var b strings.Builder
	for _, p := range parts {
		// Length prefix keeps separators inside values from colliding.
		b.WriteString(strconv.Itoa(len(p)))
		b.WriteByte(':')
		b.WriteString(p)
	}
	return b.String()
}

// DedupDecisions drops structurally equal decisions, keeping first-seen order.
func DedupDecisions(decisions []Decision) []Decision {
	seen := make(map[string]struct{}, len(decisions))
	out := make([]Decision, 0, len(decisions))
	for _, d := range decisions {
		k := d.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, d)
	}
	return out
}
