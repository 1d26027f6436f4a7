package contextbuild

import (
	"sort"
	"strings"

	"github.com/m-mizutani/recall/pkg/model"
)

// buildProfile renders relevance-ranked long-lived facts. Type
// allow/deny lists and the minimum relevance filter run first; the
// trim loop then drops the lowest-relevance item until the layer fits.
func buildProfile(records []*model.ExistingMemoryRecord, cfg model.ContextConfig, estimate TokenEstimator) model.ContextLayer {
	allow := toSet(cfg.ProfileAllowTypes)
	deny := toSet(cfg.ProfileDenyTypes)

	var facts []*model.ExistingMemoryRecord
	for _, rec := range records {
		if rec.Relevance < cfg.ProfileMinRelevance {
			continue
		}
		if len(allow) > 0 {
			if _, ok := allow[rec.Type]; !ok {
				continue
			}
		}
		if _, ok := deny[rec.Type]; ok {
			continue
		}
		facts = append(facts, rec)
	}

	// Highest relevance first; the tail is what trimming removes
	sort.SliceStable(facts, func(i, j int) bool {
		return facts[i].Relevance > facts[j].Relevance
	})
	if len(facts) > cfg.ProfileMaxItems {
		facts = facts[:cfg.ProfileMaxItems]
	}
	if len(facts) == 0 {
		return model.ContextLayer{Name: model.LayerProfile}
	}

	content := renderFacts(facts)
	budget := cfg.Budget(model.LayerProfile)
	trimmed := false
	for estimate(content) > budget && len(facts) > 1 {
		facts = facts[:len(facts)-1]
		content = renderFacts(facts)
		trimmed = true
	}

	return model.ContextLayer{
		Name:       model.LayerProfile,
		Content:    content,
		TokenCount: estimate(content),
		ItemCount:  len(facts),
		Trimmed:    trimmed,
	}
}

func renderFacts(facts []*model.ExistingMemoryRecord) string {
	var b strings.Builder
	for _, f := range facts {
		b.WriteString("- ")
		b.WriteString(f.Content)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func toSet(items []string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
