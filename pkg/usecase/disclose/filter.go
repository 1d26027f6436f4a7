package disclose

import "github.com/m-mizutani/recall/pkg/model"

// identityType is the memory type always safe to disclose
const identityType = "identity"

// highRelevance is the floor for disclosing non-identity facts under
// intents without an explicit memory purpose.
const highRelevance = 0.8

// personalTypes is the fixed set explicitly excluded under greeting
// and smalltalk, on top of the identity-only retention.
var personalTypes = map[string]struct{}{
	"event":      {},
	"preference": {},
	"goal":       {},
}

// filterMemories narrows the memory set already filtered upstream for
// relevance, type and tier. This filter only ever removes entries.
func filterMemories(intent string, memories []model.ScoredMemory) []model.ScoredMemory {
	switch intent {
	case intentGreeting, intentSmalltalk:
		var kept []model.ScoredMemory
		for _, m := range memories {
			if _, personal := personalTypes[m.Record.Type]; personal {
				continue
			}
			if m.Record.Type == identityType {
				kept = append(kept, m)
			}
		}
		return kept

	case intentMemoryInstruction, intentQuestion, intentRecall, intentRecallTemporal, intentRecommendation, intentAdvice:
		return memories

	default:
		var kept []model.ScoredMemory
		for _, m := range memories {
			if m.Record.Type == identityType || m.Relevance >= highRelevance {
				kept = append(kept, m)
			}
		}
		return kept
	}
}
