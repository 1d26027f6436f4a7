package model

// ContextLayer is one bounded, independently-sourced block of
// assembled context. Built fresh every turn; never persisted except
// the session-summary cache.
type ContextLayer struct {
	Name       string `json:"name"`
	Content    string `json:"content"`
	TokenCount int    `json:"tokenCount"`
	ItemCount  int    `json:"itemCount"`
	Trimmed    bool   `json:"trimmed"`
}

// Empty reports whether the layer carries no content and must be
// omitted from assembly entirely.
func (l ContextLayer) Empty() bool {
	return l.Content == ""
}

// ContextMode bounds what the downstream model may do with memories
// this turn. Derived per turn, never persisted.
type ContextMode string

const (
	ModeIdentityOnly        ContextMode = "identity_only"
	ModeNeutralAck          ContextMode = "neutral_ack"
	ModeMemoryConfirm       ContextMode = "memory_confirm_allowed"
	ModeMemoryUse           ContextMode = "memory_use_allowed"
)

// SaveDecision is supplied by the upstream save stage. The pipeline
// never computes it, only consumes it.
type SaveDecision struct {
	Saved        bool     `json:"saved"`
	Decision     string   `json:"decision"`
	PendingCards []string `json:"pendingCards,omitempty"`
}

// SaveResult is the legacy per-item save outcome shape still emitted
// by older save stages.
type SaveResult struct {
	MemoryID MemoryID `json:"memoryId"`
	Saved    bool     `json:"saved"`
	Error    string   `json:"error,omitempty"`
}

// ScoredMemory pairs a record with the relevance score assigned by the
// upstream retrieval stage for this turn.
type ScoredMemory struct {
	Record    ExistingMemoryRecord `json:"record"`
	Relevance float64              `json:"relevance"`
}
