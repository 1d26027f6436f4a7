package conflict

import (
	"context"

	"github.com/m-mizutani/recall/pkg/model"
	"github.com/m-mizutani/recall/pkg/policy"
	"github.com/m-mizutani/recall/pkg/utils/logging"
)

type disposition int

const (
	dispositionClean disposition = iota
	dispositionAutoResolve
	dispositionAsk
)

// resolve maps a verdict to its disposition under the configured
// auto-resolution rules.
func resolve(relation model.Relation, cfg model.ConflictConfig) disposition {
	switch {
	case relation == model.RelationDuplicate && cfg.SkipDuplicates:
		return dispositionAutoResolve
	case relation == model.RelationUpdate && cfg.AutoResolveUpdates:
		return dispositionAutoResolve
	case relation == model.RelationConflict || relation == model.RelationUpdate:
		return dispositionAsk
	default:
		return dispositionClean
	}
}

// pickVerdict selects the decisive verdict among every classified
// match: highest severity wins, ties broken by similarity rank. This
// keeps a lower-ranked CONFLICT from losing to a higher-ranked
// DUPLICATE.
func pickVerdict(verdicts []model.ConflictVerdict) *model.ConflictVerdict {
	var best *model.ConflictVerdict
	for i := range verdicts {
		v := &verdicts[i]
		if v.Relation.Severity() == 0 {
			continue
		}
		if best == nil ||
			v.Relation.Severity() > best.Relation.Severity() ||
			(v.Relation.Severity() == best.Relation.Severity() && v.Similarity > best.Similarity) {
			best = v
		}
	}
	return best
}

// applyDisposition stamps the resolution flags onto the verdict,
// consulting the optional Rego override first.
func applyDisposition(ctx context.Context, engine *policy.Engine, verdict *model.ConflictVerdict, cfg model.ConflictConfig) disposition {
	d := resolve(verdict.Relation, cfg)

	// ADDITION and NONE carry no resolution flags, so there is nothing
	// for a policy to override.
	if verdict.Relation == model.RelationAddition || verdict.Relation == model.RelationNone {
		return d
	}

	if override, err := engine.Resolve(ctx, map[string]any{
		"relation":   string(verdict.Relation),
		"confidence": verdict.Confidence,
		"similarity": verdict.Similarity,
		"candidate":  verdict.Candidate.Content,
		"existing":   verdict.Existing.Content,
	}); err != nil {
		logging.From(ctx).Warn("resolution policy evaluation failed, keeping configured disposition", "error", err)
	} else if override != "" {
		switch override {
		case policy.DispositionAutoResolve:
			d = dispositionAutoResolve
		case policy.DispositionAsk:
			d = dispositionAsk
		case policy.DispositionClean:
			d = dispositionClean
		}
	}

	switch d {
	case dispositionAutoResolve:
		verdict.AutoResolved = true
		verdict.NeedsClarification = false
	case dispositionAsk:
		verdict.NeedsClarification = true
		verdict.AutoResolved = false
	default:
		verdict.AutoResolved = false
		verdict.NeedsClarification = false
	}
	return d
}
