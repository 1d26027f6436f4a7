package conflict

import (
	"bytes"
	"context"
	_ "embed"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/recall/pkg/adapter"
	"github.com/m-mizutani/recall/pkg/model"
	"github.com/m-mizutani/recall/pkg/utils/llmjson"
	"github.com/m-mizutani/recall/pkg/utils/logging"
)

//go:embed prompt/classify.md
var classifyPromptRaw string

var classifyPromptTmpl = template.Must(template.New("classify").Parse(classifyPromptRaw))

// classifyResponse is the JSON object the classifier must answer with
type classifyResponse struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// classify asks the semantic classifier how a candidate relates to one
// existing record. Any failure - call error, missing JSON, unknown
// label - degrades to RelationNone: the classifier is never a
// correctness dependency.
func classify(ctx context.Context, llm adapter.TextModel, candidate model.ExtractedMemoryCandidate, existing *model.ExistingMemoryRecord, today string) (model.Relation, float64, string) {
	var buf bytes.Buffer
	if err := classifyPromptTmpl.Execute(&buf, map[string]any{
		"ExistingType":     existing.Type,
		"ExistingContent":  existing.Content,
		"ExistingSlots":    existing.Slots,
		"CandidateType":    candidate.Type,
		"CandidateContent": candidate.Content,
		"CandidateSlots":   candidate.Slots,
		"Today":            today,
	}); err != nil {
		logging.From(ctx).Warn("failed to render classify prompt", "error", err)
		return model.RelationNone, 0, ""
	}

	resp, err := llm.Complete(ctx, buf.String(), adapter.CompleteParams{
		MaxTokens:   256,
		Temperature: 0.2,
	})
	if err != nil {
		logging.From(ctx).Warn("conflict classifier call failed, treating as unrelated",
			"error", goerr.Wrap(model.ErrModelCall, err.Error()))
		return model.RelationNone, 0, ""
	}

	var parsed classifyResponse
	if err := llmjson.UnmarshalObject(resp, &parsed); err != nil {
		logging.From(ctx).Warn("unparsable classifier response, treating as unrelated", "error", err)
		return model.RelationNone, 0, ""
	}

	return model.ParseRelation(parsed.Type), parsed.Confidence, parsed.Reason
}
