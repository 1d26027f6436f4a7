package clarify

import "github.com/m-mizutani/recall/pkg/model"

// missingRequired returns the required slot ids of the item's type
// whose slot is absent or unfilled, in the registry's order.
func missingRequired(item model.ExtractedMemoryCandidate) []string {
	var missing []string
	for _, id := range model.RequiredSlotIDs(item.Type) {
		slot, ok := item.Slots[id]
		if !ok || !slot.Filled {
			missing = append(missing, id)
		}
	}
	return missing
}

// completenessScore is the mean over items of filled-required over
// total-required. Items whose type has no required slots score 1, and
// an empty item set scores 1 vacuously.
func completenessScore(items []model.ExtractedMemoryCandidate) float64 {
	if len(items) == 0 {
		return 1
	}

	total := 0.0
	for _, item := range items {
		required := model.RequiredSlotIDs(item.Type)
		if len(required) == 0 {
			total += 1
			continue
		}
		filled := 0
		for _, id := range required {
			if slot, ok := item.Slots[id]; ok && slot.Filled {
				filled++
			}
		}
		total += float64(filled) / float64(len(required))
	}
	return total / float64(len(items))
}
