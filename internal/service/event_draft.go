package service

// Result map keys of a decision draft.
const (
	resultKeySuccess = "true"
	resultKeyFailure = "false"
)

// EventDraft is an unvalidated create request. Struct tags carry the
// structural rules; EventValidator adds the cross-field ones.
type EventDraft struct {
	Title       string          `json:"title" yaml:"title" validate:"notblank,max=100"`
	Description string          `json:"description" yaml:"description" validate:"notblank,max=1000"`
	Decisions   []DecisionDraft `json:"decisions" yaml:"decisions" validate:"required,min=1,max=20,dive"`
}

// DecisionDraft is one proposed decision of an EventDraft.
//
// Results is keyed by "true" (success) and "false" (failure). Entries are
// checked by a struct-level rule so violations come out in key order.
type DecisionDraft struct {
	DecisionType string                   `json:"decisionType" yaml:"decisionType" validate:"decisiontype"`
	Description  string                   `json:"description" yaml:"description" validate:"notblank,max=100"`
	DecisionLog  []string                 `json:"decisionLog" yaml:"decisionLog" validate:"required,min=1,max=5,dive,notblank,max=100"`
	Difficulty   int                      `json:"difficulty" yaml:"difficulty" validate:"min=0,max=2147483647"`
	Results      map[string]*OutcomeDraft `json:"results" yaml:"results" validate:"required"`
}

// OutcomeDraft is the text of one resolution.
type OutcomeDraft struct {
	ResultDescr string `json:"resultDescr" yaml:"resultDescr"`
}

// resultDescrRule is applied to every OutcomeDraft.ResultDescr.
const resultDescrRule = "notblank,max=1000"
