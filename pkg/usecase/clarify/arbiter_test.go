package clarify

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/recall/pkg/model"
)

func defaultArbiterPolicy() arbiterPolicy {
	return arbiterPolicy{
		maxQuestionsPerItem: 2,
		allowPartialAfter:   3,
	}
}

func TestArbitrateResolvedValueAutoApplies(t *testing.T) {
	suggestions := []model.Suggestion{
		{SlotID: "when_date", Issue: "relative date", ResolvedValue: "2026-09-01", Priority: model.PriorityLow},
	}
	out := arbitrate(suggestions, map[string]struct{}{"when_date": {}}, defaultArbiterPolicy())

	// Resolved values apply regardless of priority and never count as questions
	gt.A(t, out.autoApply).Length(1)
	gt.A(t, out.ask).Length(0)
	gt.Equal(t, out.dropped, 0)
}

func TestArbitrateRequiredHighQueues(t *testing.T) {
	suggestions := []model.Suggestion{
		{SlotID: "when_date", Issue: "missing", Question: "When?", Priority: model.PriorityHigh},
		{SlotID: "what", Issue: "vague", Question: "What exactly?", Priority: model.PriorityMedium},
	}
	required := map[string]struct{}{"when_date": {}, "what": {}}

	out := arbitrate(suggestions, required, defaultArbiterPolicy())
	gt.A(t, out.ask).Length(2)
	gt.Equal(t, out.dropped, 0)
}

func TestArbitrateDropsOptionalAndLowPriority(t *testing.T) {
	suggestions := []model.Suggestion{
		{SlotID: "where", Issue: "missing location", Question: "Where?", Priority: model.PriorityHigh},
		{SlotID: "when_date", Issue: "minor", Question: "When?", Priority: model.PriorityLow},
	}
	required := map[string]struct{}{"when_date": {}}

	out := arbitrate(suggestions, required, defaultArbiterPolicy())
	gt.A(t, out.ask).Length(0)
	gt.Equal(t, out.dropped, 2)
}

func TestArbitratePerItemCap(t *testing.T) {
	suggestions := []model.Suggestion{
		{SlotID: "a", Question: "a?", Priority: model.PriorityHigh},
		{SlotID: "b", Question: "b?", Priority: model.PriorityHigh},
		{SlotID: "c", Question: "c?", Priority: model.PriorityHigh},
	}
	required := map[string]struct{}{"a": {}, "b": {}, "c": {}}

	out := arbitrate(suggestions, required, defaultArbiterPolicy())
	gt.A(t, out.ask).Length(2)
	gt.Equal(t, out.dropped, 1)
}

func TestArbitrateFatigueAllowance(t *testing.T) {
	suggestions := []model.Suggestion{
		{SlotID: "a", Question: "a?", Priority: model.PriorityHigh},
		{SlotID: "b", Question: "b?", Priority: model.PriorityHigh},
	}
	required := map[string]struct{}{"a": {}, "b": {}}

	t.Run("session questions consume the allowance", func(t *testing.T) {
		policy := defaultArbiterPolicy()
		policy.questionsAsked = 3
		out := arbitrate(suggestions, required, policy)
		gt.A(t, out.ask).Length(0)
		gt.Equal(t, out.dropped, 2)
	})

	t.Run("earlier items this turn consume the allowance", func(t *testing.T) {
		policy := defaultArbiterPolicy()
		policy.questionsAsked = 1
		policy.turnQueued = 1
		out := arbitrate(suggestions, required, policy)
		// 1 asked + 1 queued leaves room for exactly one more
		gt.A(t, out.ask).Length(1)
		gt.Equal(t, out.ask[0].SlotID, "a")
		gt.Equal(t, out.dropped, 1)
	})
}
