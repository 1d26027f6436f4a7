package model

import "github.com/m-mizutani/goerr/v2"

// Relation is the semantic relation between a new candidate and an
// existing record, as judged by the classifier.
type Relation string

const (
	RelationConflict  Relation = "CONFLICT"
	RelationUpdate    Relation = "UPDATE"
	RelationAddition  Relation = "ADDITION"
	RelationDuplicate Relation = "DUPLICATE"
	RelationNone      Relation = "NONE"
)

// ParseRelation maps a raw classifier label to a Relation, falling
// back to NONE for anything unrecognized (fail-open).
func ParseRelation(s string) Relation {
	switch Relation(s) {
	case RelationConflict, RelationUpdate, RelationAddition, RelationDuplicate:
		return Relation(s)
	default:
		return RelationNone
	}
}

// Severity orders relations for resolution: a CONFLICT must never lose
// to a higher-ranked DUPLICATE.
func (r Relation) Severity() int {
	switch r {
	case RelationConflict:
		return 4
	case RelationUpdate:
		return 3
	case RelationDuplicate:
		return 2
	case RelationAddition:
		return 1
	default:
		return 0
	}
}

// ConflictVerdict links a candidate to one existing record with the
// classifier's judgement and the resolution flags applied by policy.
type ConflictVerdict struct {
	Relation   Relation                 `json:"relation"`
	Confidence float64                  `json:"confidence"`
	Reason     string                   `json:"reason"`
	Similarity float64                  `json:"similarity"`
	Existing   ExistingMemoryRecord     `json:"existing"`
	Candidate  ExtractedMemoryCandidate `json:"candidate"`

	NeedsClarification bool `json:"needsClarification"`
	AutoResolved       bool `json:"autoResolved"`
}

// Validate enforces the verdict invariant: at most one of autoResolved
// and needsClarification; NONE and ADDITION imply neither.
func (v *ConflictVerdict) Validate() error {
	if v.AutoResolved && v.NeedsClarification {
		return goerr.Wrap(ErrMalformedInput, "verdict is both auto-resolved and pending clarification",
			goerr.V("relation", v.Relation))
	}
	if (v.Relation == RelationNone || v.Relation == RelationAddition) &&
		(v.AutoResolved || v.NeedsClarification) {
		return goerr.Wrap(ErrMalformedInput, "neutral relation must carry no resolution flags",
			goerr.V("relation", v.Relation))
	}
	return nil
}

// ResolutionAction is one of the three canonical answers a user can
// give to a conflict card.
type ResolutionAction string

const (
	ResolutionReplace  ResolutionAction = "replace"
	ResolutionKeepBoth ResolutionAction = "keep_both"
	ResolutionDiscard  ResolutionAction = "discard"
)

// ConflictActions is the fixed action set rendered on every conflict
// card, in presentation order.
func ConflictActions() []ResolutionAction {
	return []ResolutionAction{ResolutionReplace, ResolutionKeepBoth, ResolutionDiscard}
}

// ConflictCard is the presentation projection of a pending verdict
type ConflictCard struct {
	ID       CardID             `json:"id"`
	Verdict  ConflictVerdict    `json:"verdict"`
	Question string             `json:"question"`
	Actions  []ResolutionAction `json:"actions"`
}
