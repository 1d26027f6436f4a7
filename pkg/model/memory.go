package model

import (
	"time"
)

// MemoryID identifies a long-lived record in the document store.
// Minted by the upstream extraction stage, never by the pipeline.
type MemoryID string

// IIN is the per-user identity key namespacing all stored data
type IIN string

type SessionID string

type RecordStatus string

const (
	RecordStatusActive   RecordStatus = "active"
	RecordStatusInactive RecordStatus = "inactive"
)

// SlotSource indicates where a slot value came from
type SlotSource string

const (
	SlotSourceExtraction SlotSource = "extraction"
	SlotSourceAnalysis   SlotSource = "ambiguity_analysis"
	SlotSourceUser       SlotSource = "user"
)

// Slot is a named field of a structured memory item
type Slot struct {
	Value  string     `json:"value" firestore:"value"`
	Filled bool       `json:"filled" firestore:"filled"`
	Source SlotSource `json:"source" firestore:"source"`
}

// ExtractedMemoryCandidate is a fact extracted from the current user
// message by the upstream extraction stage. The pipeline never mutates
// it structurally except for slot auto-resolution during arbitration.
type ExtractedMemoryCandidate struct {
	Content    string          `json:"content"`
	Type       string          `json:"type"`
	Confidence float64         `json:"confidence"`
	Slots      map[string]Slot `json:"slots"`
}

// Clone returns a deep copy so slot auto-resolution never aliases the
// caller's value.
func (c ExtractedMemoryCandidate) Clone() ExtractedMemoryCandidate {
	slots := make(map[string]Slot, len(c.Slots))
	for id, s := range c.Slots {
		slots[id] = s
	}
	c.Slots = slots
	return c
}

// ExistingMemoryRecord is a long-lived fact owned by the document
// store. Read-only within the pipeline.
type ExistingMemoryRecord struct {
	ID        MemoryID        `json:"id" firestore:"id"`
	Content   string          `json:"content" firestore:"content"`
	Type      string          `json:"type" firestore:"type"`
	Slots     map[string]Slot `json:"slots" firestore:"slots"`
	Status    RecordStatus    `json:"status" firestore:"status"`
	Relevance float64         `json:"relevance" firestore:"relevance"`
	Tier      string          `json:"tier" firestore:"tier"`
	CreatedAt time.Time       `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt" firestore:"updatedAt"`
}

// Message is one entry of a per-session conversation log
type Message struct {
	Role      string    `json:"role" firestore:"role"`
	Content   string    `json:"content" firestore:"content"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

// CalendarEvent is a per-user event record
type CalendarEvent struct {
	Title    string    `json:"title" firestore:"title"`
	StartsAt time.Time `json:"startsAt" firestore:"startsAt"`
	Location string    `json:"location" firestore:"location"`
}

// DaySummary is one day of the long-range digest feed produced by the
// external nightly batch job. Consumed read-only; ordered by date.
type DaySummary struct {
	Date    string   `json:"date" firestore:"date"` // YYYY-MM-DD
	Content string   `json:"content" firestore:"content"`
	Topics  []string `json:"topics" firestore:"topics"`
}
