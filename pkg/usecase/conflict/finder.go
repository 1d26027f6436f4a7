package conflict

import (
	"sort"
	"strings"

	"github.com/m-mizutani/recall/pkg/model"
)

// categoryKeywords routes content-level matches across differing
// types: a "location" record can still collide with a "personal_info"
// candidate that talks about moving house.
var categoryKeywords = map[string][]string{
	"location":      {"live", "lives", "living", "moved", "moving", "address", "city", "hometown"},
	"job":           {"work", "works", "working", "job", "career", "company", "employed", "hired"},
	"relationship":  {"wife", "husband", "partner", "girlfriend", "boyfriend", "married", "dating", "engaged"},
	"name":          {"name", "called", "nickname"},
	"preference":    {"like", "likes", "love", "loves", "hate", "hates", "favorite", "prefer", "prefers"},
	"personal_info": {"birthday", "born", "age", "allergic", "allergy", "phone", "email"},
}

// rankedMatch is one existing record considered similar enough to send
// to the classifier.
type rankedMatch struct {
	record     *model.ExistingMemoryRecord
	similarity float64
}

// matchesCategory reports whether both texts hit the same category's
// keyword table.
func matchesCategory(candidate, existing string) bool {
	candNorm := " " + normalize(candidate) + " "
	existNorm := " " + normalize(existing) + " "
	for _, words := range categoryKeywords {
		candHit := false
		existHit := false
		for _, w := range words {
			if strings.Contains(candNorm, " "+w+" ") {
				candHit = true
			}
			if strings.Contains(existNorm, " "+w+" ") {
				existHit = true
			}
			if candHit && existHit {
				return true
			}
		}
	}
	return false
}

// findCandidateMatches ranks existing records against one candidate.
// A record qualifies when its type equals the candidate's type or the
// category keyword table matches both contents, and its similarity is
// at least half the configured threshold. Results are ordered by
// similarity and capped at maxCandidates.
func findCandidateMatches(candidate model.ExtractedMemoryCandidate, existing []*model.ExistingMemoryRecord, cfg model.ConflictConfig) []rankedMatch {
	minSim := cfg.SimilarityThreshold / 2

	var matches []rankedMatch
	for _, rec := range existing {
		if rec.Type != candidate.Type && !matchesCategory(candidate.Content, rec.Content) {
			continue
		}
		sim := similarity(candidate.Content, rec.Content)
		if sim < minSim {
			continue
		}
		matches = append(matches, rankedMatch{record: rec, similarity: sim})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].similarity > matches[j].similarity
	})
	if len(matches) > cfg.MaxCandidates {
		matches = matches[:cfg.MaxCandidates]
	}
	return matches
}
