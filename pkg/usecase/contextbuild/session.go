package contextbuild

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"text/template"

	"github.com/m-mizutani/recall/pkg/model"
	"github.com/m-mizutani/recall/pkg/utils/logging"
)

//go:embed prompt/session_summary.md
var summaryPromptRaw string

var summaryPromptTmpl = template.Must(template.New("session_summary").Parse(summaryPromptRaw))

// buildSessionSummary summarizes the earliest block of a long session.
// The layer stays empty until the session passes the message-count
// threshold. Summaries are cached per session with a TTL: staleness
// invalidates them, content change does not. Summarizer failure leaves
// the layer empty for the turn.
func (a *Assembler) buildSessionSummary(ctx context.Context, iin model.IIN, session model.SessionID, cfg model.ContextConfig) model.ContextLayer {
	layer := model.ContextLayer{Name: model.LayerSessionSummary}

	total, err := a.repo.CountMessages(ctx, iin, session)
	if err != nil {
		logging.From(ctx).Warn("failed to count session messages, skipping summary layer", "error", err)
		return layer
	}
	if total <= cfg.SessionMessageThreshold {
		return layer
	}

	summary, ok := a.cache.Get(ctx, string(session))
	if !ok {
		summary = a.summarizeEarliest(ctx, iin, session, cfg)
		if summary == "" {
			return layer
		}
		a.cache.Set(ctx, string(session), summary, cfg.SessionSummaryTTL)
	}

	// A single opaque item: trim by truncation against the active
	// estimator. Floors at a one-character remnant rather than dropping
	// the layer outright.
	budget := cfg.Budget(model.LayerSessionSummary)
	trimmed := false
	for a.estimate(summary) > budget {
		cut := len(summary) * 3 / 4
		if cut == 0 {
			break
		}
		summary = strings.ToValidUTF8(summary[:cut], "")
		trimmed = true
	}

	layer.Content = summary
	layer.TokenCount = a.estimate(summary)
	layer.ItemCount = 1
	layer.Trimmed = trimmed
	return layer
}

func (a *Assembler) summarizeEarliest(ctx context.Context, iin model.IIN, session model.SessionID, cfg model.ContextConfig) string {
	// The earliest block is everything that no longer fits the
	// immediate window.
	msgs, err := a.repo.ListMessages(ctx, iin, session, cfg.SessionMessageThreshold*4)
	if err != nil || len(msgs) == 0 {
		logging.From(ctx).Warn("failed to load session messages for summary", "error", err)
		return ""
	}
	recent := cfg.ImmediateTurns * 2
	if len(msgs) > recent {
		msgs = msgs[:len(msgs)-recent]
	}
	if len(msgs) == 0 {
		return ""
	}

	var buf bytes.Buffer
	if err := summaryPromptTmpl.Execute(&buf, map[string]any{
		"Conversation": renderTurns(groupTurns(msgs)),
	}); err != nil {
		logging.From(ctx).Warn("failed to render summary prompt", "error", err)
		return ""
	}

	summary, err := a.llm.Complete(ctx, buf.String(), adapterParamsSummary())
	if err != nil {
		logging.From(ctx).Warn("session summarization failed, layer stays empty this turn", "error", err)
		return ""
	}
	return summary
}
