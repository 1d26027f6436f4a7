package clarify

import "github.com/m-mizutani/recall/pkg/model"

// buildMemoryCard projects an item into its presentation shape
func buildMemoryCard(item model.ExtractedMemoryCandidate, missing []string, questions []model.ClarifyQuestion) model.MemoryCard {
	status := model.CardStatusComplete
	if len(missing) > 0 {
		status = model.CardStatusPending
	}
	return model.MemoryCard{
		ID:              model.NewCardID(),
		Item:            item,
		Status:          status,
		MissingRequired: missing,
		Complete:        len(missing) == 0,
		Questions:       questions,
	}
}

// buildConflictCard renders a pending verdict 1:1 with the three
// canonical resolution actions.
func buildConflictCard(verdict model.ConflictVerdict) model.ConflictCard {
	return model.ConflictCard{
		ID:      model.NewCardID(),
		Verdict: verdict,
		Question: "I already have \"" + verdict.Existing.Content + "\" - you just told me \"" +
			verdict.Candidate.Content + "\". Which should I keep?",
		Actions: model.ConflictActions(),
	}
}

// fallbackQuestion builds the locally generated question for a missing
// slot, using its template or the generic phrasing.
func fallbackQuestion(slotID string) model.ClarifyQuestion {
	return model.ClarifyQuestion{
		SlotID:   slotID,
		Question: model.SlotQuestion(slotID),
		Reason:   "required field is missing",
	}
}
