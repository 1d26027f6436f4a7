package model

import "strings"

// requiredSlots maps a memory type to the slot ids that must be filled
// before the item is considered complete.
var requiredSlots = map[string][]string{
	"event":         {"what", "when_date"},
	"reminder":      {"what", "when_date"},
	"task":          {"what"},
	"preference":    {"subject"},
	"relationship":  {"person"},
	"location":      {"place"},
	"job":           {"role"},
	"personal_info": {"fact"},
}

// questionTemplates maps a slot id to the clarifying question shown to
// the user when that slot is missing.
var questionTemplates = map[string]string{
	"what":      "What should I remember this as?",
	"when_date": "When is this happening?",
	"when_time": "What time?",
	"subject":   "What is this preference about?",
	"person":    "Who is this about?",
	"place":     "Which place is this?",
}

// RequiredSlotIDs returns the required slot ids for a memory type.
// Unknown types have no requirements.
func RequiredSlotIDs(memoryType string) []string {
	return requiredSlots[memoryType]
}

// SlotQuestion returns the clarifying question for a missing slot,
// falling back to a generic phrasing built from the slot id
// (e.g. "when_date" -> "What is the when date?").
func SlotQuestion(slotID string) string {
	if q, ok := questionTemplates[slotID]; ok {
		return q
	}
	return "What is the " + strings.ReplaceAll(slotID, "_", " ") + "?"
}
