package adapter

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// CompleteParams carries the per-call knobs of a text completion
type CompleteParams struct {
	SystemPrompt string
	MaxTokens    int32
	Temperature  float32
}

// TextModel is the single text-completion capability used for conflict
// classification, ambiguity analysis, and summarization. The contract
// is "may fail; may return prose wrapping JSON" - callers parse
// defensively and degrade on error.
type TextModel interface {
	Complete(ctx context.Context, prompt string, params CompleteParams) (string, error)
}

type GeminiClient struct {
	client *genai.Client
	model  string
}

type GeminiOption func(*GeminiClient)

func WithModel(model string) GeminiOption {
	return func(g *GeminiClient) {
		g.model = model
	}
}

func NewGemini(ctx context.Context, projectID, location string, opts ...GeminiOption) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}

	g := &GeminiClient{
		client: client,
		model:  "gemini-2.5-flash",
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

func (g *GeminiClient) Complete(ctx context.Context, prompt string, params CompleteParams) (string, error) {
	thinkingBudget := int32(0)
	config := &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  &thinkingBudget,
		},
	}
	if params.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(params.SystemPrompt, "")
	}
	if params.MaxTokens > 0 {
		config.MaxOutputTokens = params.MaxTokens
	}
	if params.Temperature > 0 {
		config.Temperature = &params.Temperature
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content")
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", goerr.New("no completion generated")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		return "", goerr.New("empty completion generated")
	}

	return text.String(), nil
}
