package model

import "github.com/google/uuid"

// CardID identifies one card within a turn response so the caller can
// reference it when the user answers a question or resolves a conflict.
type CardID string

// NewCardID generates a new unique CardID
func NewCardID() CardID {
	return CardID(uuid.New().String())
}

type CardStatus string

const (
	CardStatusPending  CardStatus = "pending"
	CardStatusComplete CardStatus = "complete"
)

// MemoryCard is the presentation projection of a candidate after the
// slot completion check. Complete iff MissingRequired is empty.
type MemoryCard struct {
	ID              CardID                   `json:"id"`
	Item            ExtractedMemoryCandidate `json:"item"`
	Status          CardStatus               `json:"status"`
	MissingRequired []string                 `json:"missingRequired"`
	Complete        bool                     `json:"complete"`
	Questions       []ClarifyQuestion        `json:"questions"`
}

// ClarifyQuestion is one follow-up question attached to a card
type ClarifyQuestion struct {
	SlotID   string `json:"slotId"`
	Question string `json:"question"`
	Reason   string `json:"reason"`
}

type SuggestionPriority string

const (
	PriorityHigh   SuggestionPriority = "high"
	PriorityMedium SuggestionPriority = "medium"
	PriorityLow    SuggestionPriority = "low"
)

// Suggestion is one finding of the remote ambiguity analyzer. The
// remote model only suggests; the local arbiter decides.
type Suggestion struct {
	SlotID        string             `json:"slotId"`
	Issue         string             `json:"issue"`
	Question      string             `json:"question"`
	Reason        string             `json:"reason"`
	Priority      SuggestionPriority `json:"priority"`
	ResolvedValue string             `json:"resolvedValue,omitempty"`
}
