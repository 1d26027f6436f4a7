package disclose

import "github.com/m-mizutani/recall/pkg/model"

// NoSaveDirective is the fixed directive emitted whenever no explicit
// save confirmation exists - including total absence of save
// information. It overrides tone, intent and memory presence.
const NoSaveDirective = "Nothing was saved this turn. Do not claim to remember, to have " +
	"saved, or to be able to recall what the user just said. You may acknowledge their " +
	"message neutrally."

// SaveConfirmDirective is emitted only on an explicit save confirmation
const SaveConfirmDirective = "The information the user shared was saved. You may confirm " +
	"that it was remembered."

// saveDirective applies the save-truth guard: a save is claimed only
// if the upstream decision explicitly says saved, or at least one
// legacy save-result did.
func saveDirective(decision *model.SaveDecision, results []model.SaveResult) string {
	if decision != nil && decision.Saved {
		return SaveConfirmDirective
	}
	for _, r := range results {
		if r.Saved {
			return SaveConfirmDirective
		}
	}
	return NoSaveDirective
}

// saveConfirmed mirrors saveDirective for quick-reply selection
func saveConfirmed(decision *model.SaveDecision, results []model.SaveResult) bool {
	if decision != nil && decision.Saved {
		return true
	}
	for _, r := range results {
		if r.Saved {
			return true
		}
	}
	return false
}

// HoldDirective is appended when the turn is held by pending
// completion cards: the cards carry the detail, the reply stays short.
const HoldDirective = "Clarification cards are being shown to the user. Keep your reply to " +
	"one or two short sentences; the cards carry the details."
