// Package disclose derives what the downstream model may claim this
// turn: the context mode from the upstream intent signal, the narrowed
// memory set, the save-truth directive, and the quick-reply menu. The
// whole stage is deterministic - no model calls, no I/O.
package disclose

import (
	"strings"

	"github.com/m-mizutani/recall/pkg/model"
)

// Input is everything the disclosure stage consumes
type Input struct {
	Intent       model.IntentSignal
	Memories     []model.ScoredMemory
	SaveDecision *model.SaveDecision
	SaveResults  []model.SaveResult
	Hold         bool // turn is held by pending completion cards
}

// Result is the final instruction block and its parts
type Result struct {
	Mode         model.ContextMode
	Directives   []string
	Instructions string
	Memories     []model.ScoredMemory
	QuickReplies []string
}

// Build assembles the instruction block: base persona first, then the
// fixed directive blocks appended in a stable order. The save-truth
// directive takes hard precedence over tone, intent, and memory
// presence - it is always present, one way or the other.
func Build(in Input, cfg model.DiscloseConfig) *Result {
	intent := in.Intent.Normalized()
	mode := modeFor(intent)

	directives := []string{modeDirectives[mode]}
	directives = append(directives, saveDirective(in.SaveDecision, in.SaveResults))
	if in.Hold {
		directives = append(directives, HoldDirective)
	}

	confirmed := saveConfirmed(in.SaveDecision, in.SaveResults)

	return &Result{
		Mode:         mode,
		Directives:   directives,
		Instructions: cfg.BasePersona + "\n\n" + strings.Join(directives, "\n\n"),
		Memories:     filterMemories(intent, in.Memories),
		QuickReplies: quickReplies(intent, confirmed, in.Hold),
	}
}
