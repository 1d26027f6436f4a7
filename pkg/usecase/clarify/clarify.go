// Package clarify decides whether to interrupt the user with a
// follow-up question before committing extracted memory items. A local
// required-field check is authoritative; in hybrid mode a remote
// ambiguity analysis adds suggestions that a deterministic local
// arbiter weighs against question budgets.
package clarify

import (
	"context"

	"github.com/m-mizutani/recall/pkg/adapter"
	"github.com/m-mizutani/recall/pkg/model"
	"github.com/m-mizutani/recall/pkg/utils/logging"
)

// ActionProceed means the turn continues without holding for the user
const ActionProceed = "proceed"

// Input is everything the clarify stage consumes for one turn
type Input struct {
	Items               []model.ExtractedMemoryCandidate
	Pending             []model.ConflictVerdict
	Message             string
	Today               string
	QuestionsAskedCount int
}

// Decision is the turn-level outcome of the clarify stage
type Decision struct {
	Cards                []model.MemoryCard
	ConflictCards        []model.ConflictCard
	Items                []model.ExtractedMemoryCandidate // post slot auto-resolution
	HoldForClarification bool
	Action               string
	CompletenessScore    float64
}

// Checker runs the slot completion check, the optional ambiguity
// analysis and the local arbiter.
type Checker struct {
	llm adapter.TextModel
}

func NewChecker(llm adapter.TextModel) *Checker {
	return &Checker{llm: llm}
}

// Run walks each item through draft -> locally-checked -> (hybrid)
// ambiguity-analyzed -> resolved, then makes the turn decision.
func (c *Checker) Run(ctx context.Context, in Input, cfg model.ClarifyConfig) *Decision {
	if !cfg.Enabled {
		// Disabled stage passes all items through unchanged
		return &Decision{
			Items:             in.Items,
			Action:            ActionProceed,
			CompletenessScore: completenessScore(in.Items),
		}
	}

	if len(in.Items) == 0 && len(in.Pending) == 0 {
		return &Decision{Action: ActionProceed, CompletenessScore: 1}
	}

	decision := &Decision{}
	hybrid := cfg.Mode == model.ClarifyModeHybrid
	turnQueued := 0

	for _, raw := range in.Items {
		item := raw.Clone()
		missing := missingRequired(item)

		var questions []model.ClarifyQuestion
		covered := map[string]struct{}{}

		if hybrid {
			suggestions := suggest(ctx, c.llm, item, in.Message, in.Today)

			required := map[string]struct{}{}
			for _, id := range model.RequiredSlotIDs(item.Type) {
				required[id] = struct{}{}
			}

			outcome := arbitrate(suggestions, required, arbiterPolicy{
				maxQuestionsPerItem: cfg.MaxQuestionsPerItem,
				allowPartialAfter:   cfg.AllowPartialAfter,
				questionsAsked:      in.QuestionsAskedCount,
				turnQueued:          turnQueued,
			})

			for _, s := range outcome.autoApply {
				item.Slots[s.SlotID] = model.Slot{
					Value:  s.ResolvedValue,
					Filled: true,
					Source: model.SlotSourceAnalysis,
				}
				covered[s.SlotID] = struct{}{}
			}

			for _, s := range outcome.ask {
				questions = append(questions, model.ClarifyQuestion{
					SlotID:   s.SlotID,
					Question: s.Question,
					Reason:   s.Reason,
				})
				covered[s.SlotID] = struct{}{}
			}
			turnQueued += len(outcome.ask)

			// Auto-applied values may have completed the item
			missing = missingRequired(item)
		}

		// Local requirements are never weakened by remote silence:
		// missing slots without a remote suggestion get the fallback
		// question, within the per-item cap.
		for _, slotID := range missing {
			if _, ok := covered[slotID]; ok {
				continue
			}
			if len(questions) >= cfg.MaxQuestionsPerItem {
				break
			}
			questions = append(questions, fallbackQuestion(slotID))
		}

		decision.Items = append(decision.Items, item)
		decision.Cards = append(decision.Cards, buildMemoryCard(item, missing, questions))
	}

	for _, verdict := range in.Pending {
		decision.ConflictCards = append(decision.ConflictCards, buildConflictCard(verdict))
	}

	for _, card := range decision.Cards {
		if !card.Complete {
			decision.HoldForClarification = true
		}
	}
	if len(decision.ConflictCards) > 0 {
		decision.HoldForClarification = true
	}

	if decision.HoldForClarification {
		decision.Action = cfg.WhenIncomplete
	} else {
		decision.Action = ActionProceed
	}
	decision.CompletenessScore = completenessScore(decision.Items)

	logging.From(ctx).Debug("clarify decision",
		"hold", decision.HoldForClarification,
		"action", decision.Action,
		"completeness", decision.CompletenessScore,
		"cards", len(decision.Cards),
		"conflictCards", len(decision.ConflictCards))

	return decision
}
