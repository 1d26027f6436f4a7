// Package conflict decides whether newly extracted facts collide with
// what is already known about the user. Lexical similarity and a
// category heuristic pick candidate matches; a semantic classifier
// judges each one; a resolution policy turns judgements into
// auto-resolutions, clarification requests, or clean passes.
package conflict

import (
	"context"

	"github.com/m-mizutani/recall/pkg/adapter"
	"github.com/m-mizutani/recall/pkg/model"
	"github.com/m-mizutani/recall/pkg/policy"
	"github.com/m-mizutani/recall/pkg/utils/logging"
)

// Result partitions the candidates of one turn
type Result struct {
	Clean                 []model.ExtractedMemoryCandidate
	AutoResolved          []model.ConflictVerdict
	PendingClarifications []model.ConflictVerdict
}

// Finder runs the candidate finder, classifier and resolution policy
type Finder struct {
	llm    adapter.TextModel
	engine *policy.Engine
}

func NewFinder(llm adapter.TextModel, engine *policy.Engine) *Finder {
	return &Finder{llm: llm, engine: engine}
}

// FindConflicts partitions candidates into clean, auto-resolved and
// pending-clarification sets. With no existing records every candidate
// is clean and the classifier is never invoked.
func (f *Finder) FindConflicts(ctx context.Context, candidates []model.ExtractedMemoryCandidate, existing []*model.ExistingMemoryRecord, cfg model.ConflictConfig, today string) (*Result, error) {
	result := &Result{}

	if !cfg.Enabled || len(existing) == 0 {
		result.Clean = append(result.Clean, candidates...)
		return result, nil
	}

	logger := logging.From(ctx)

	for _, candidate := range candidates {
		matches := findCandidateMatches(candidate, existing, cfg)

		// Classify every match at or above the full threshold, then
		// pick by severity so a CONFLICT never loses to a
		// higher-ranked DUPLICATE.
		var verdicts []model.ConflictVerdict
		for _, m := range matches {
			if m.similarity < cfg.SimilarityThreshold {
				continue
			}
			relation, confidence, reason := classify(ctx, f.llm, candidate, m.record, today)
			verdicts = append(verdicts, model.ConflictVerdict{
				Relation:   relation,
				Confidence: confidence,
				Reason:     reason,
				Similarity: m.similarity,
				Existing:   *m.record,
				Candidate:  candidate,
			})
		}

		verdict := pickVerdict(verdicts)
		if verdict == nil {
			result.Clean = append(result.Clean, candidate)
			continue
		}

		switch applyDisposition(ctx, f.engine, verdict, cfg) {
		case dispositionAutoResolve:
			logger.Info("auto-resolved memory candidate",
				"relation", verdict.Relation,
				"similarity", verdict.Similarity,
				"existing", verdict.Existing.ID)
			result.AutoResolved = append(result.AutoResolved, *verdict)
		case dispositionAsk:
			logger.Info("memory candidate needs clarification",
				"relation", verdict.Relation,
				"similarity", verdict.Similarity,
				"existing", verdict.Existing.ID)
			result.PendingClarifications = append(result.PendingClarifications, *verdict)
		default:
			result.Clean = append(result.Clean, candidate)
		}
	}

	return result, nil
}
