package domain

import "strings"

const (
	logOpen      = "["
	logClose     = "]"
	logSeparator = ", "
)

// DecisionLog is the deduplicated set of flavor-text lines of a decision.
// Entries keep the order in which they were first seen.
type DecisionLog struct {
	entries []string
}

// NewDecisionLog builds a log from raw entries, dropping exact duplicates.
func NewDecisionLog(entries []string) DecisionLog {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return DecisionLog{entries: out}
}

// Entries returns a copy of the distinct entries.
func (l DecisionLog) Entries() []string {
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of distinct entries.
func (l DecisionLog) Len() int { return len(l.entries) }

// String renders the log as "[a, b]". The value is what gets stored and
// what clients receive.
func (l DecisionLog) String() string {
	return logOpen + strings.Join(l.entries, logSeparator) + logClose
}
