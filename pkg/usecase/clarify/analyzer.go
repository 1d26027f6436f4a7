package clarify

import (
	"bytes"
	"context"
	_ "embed"
	"text/template"

	"github.com/m-mizutani/recall/pkg/adapter"
	"github.com/m-mizutani/recall/pkg/model"
	"github.com/m-mizutani/recall/pkg/utils/llmjson"
	"github.com/m-mizutani/recall/pkg/utils/logging"
)

//go:embed prompt/ambiguity.md
var ambiguityPromptRaw string

var ambiguityPromptTmpl = template.Must(template.New("ambiguity").Parse(ambiguityPromptRaw))

// analysisResponse is the JSON object the ambiguity analyzer answers with
type analysisResponse struct {
	Suggestions   []model.Suggestion `json:"suggestions"`
	ResolvedSlots []string           `json:"resolvedSlots"`
	Analysis      string             `json:"analysis"`
}

// suggest asks the remote model for ambiguity findings on one item.
// The model only suggests; arbitration decides. Malformed or failed
// calls degrade to no suggestions, which means fewer interruptions.
func suggest(ctx context.Context, llm adapter.TextModel, item model.ExtractedMemoryCandidate, message, today string) []model.Suggestion {
	var buf bytes.Buffer
	if err := ambiguityPromptTmpl.Execute(&buf, map[string]any{
		"Message": message,
		"Type":    item.Type,
		"Content": item.Content,
		"Slots":   item.Slots,
		"Today":   today,
	}); err != nil {
		logging.From(ctx).Warn("failed to render ambiguity prompt", "error", err)
		return nil
	}

	resp, err := llm.Complete(ctx, buf.String(), adapter.CompleteParams{
		MaxTokens:   512,
		Temperature: 0.3,
	})
	if err != nil {
		logging.From(ctx).Warn("ambiguity analysis call failed, continuing without suggestions", "error", err)
		return nil
	}

	var parsed analysisResponse
	if err := llmjson.UnmarshalObject(resp, &parsed); err != nil {
		logging.From(ctx).Warn("unparsable ambiguity analysis, continuing without suggestions", "error", err)
		return nil
	}

	return parsed.Suggestions
}
