package clarify

import "github.com/m-mizutani/recall/pkg/model"

// arbiterPolicy bounds how many questions arbitration may queue
type arbiterPolicy struct {
	maxQuestionsPerItem int
	allowPartialAfter   int
	questionsAsked      int // already asked earlier in the turn's session
	turnQueued          int // queued for other items this turn
}

// arbitration is the deterministic outcome of weighing remote
// suggestions against local policy.
type arbitration struct {
	autoApply []model.Suggestion
	ask       []model.Suggestion
	dropped   int
}

// arbitrate decides what to do with the remote model's suggestions for
// one item. The remote model only suggests; this function is the
// authority:
//
//  1. A suggestion carrying a resolvedValue is applied directly and
//     never counts against question budgets.
//  2. A suggestion for a required slot with high or medium priority is
//     queued as a question, until the per-item cap or the turn's
//     fatigue allowance is hit.
//  3. Everything else is dropped - fail-safe is fewer interruptions.
func arbitrate(suggestions []model.Suggestion, required map[string]struct{}, policy arbiterPolicy) arbitration {
	var out arbitration

	for _, s := range suggestions {
		if s.ResolvedValue != "" {
			out.autoApply = append(out.autoApply, s)
			continue
		}

		_, isRequired := required[s.SlotID]
		if !isRequired || (s.Priority != model.PriorityHigh && s.Priority != model.PriorityMedium) {
			out.dropped++
			continue
		}

		if len(out.ask) >= policy.maxQuestionsPerItem {
			out.dropped++
			continue
		}
		if policy.questionsAsked+policy.turnQueued+len(out.ask) >= policy.allowPartialAfter {
			out.dropped++
			continue
		}

		out.ask = append(out.ask, s)
	}

	return out
}
