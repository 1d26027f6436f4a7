package llmjson_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/recall/pkg/model"
	"github.com/m-mizutani/recall/pkg/utils/llmjson"
)

type payload struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

func TestUnmarshalObject(t *testing.T) {
	t.Run("bare object", func(t *testing.T) {
		var p payload
		gt.NoError(t, llmjson.UnmarshalObject(`{"type": "UPDATE", "confidence": 0.9}`, &p))
		gt.Equal(t, p.Type, "UPDATE")
		gt.Equal(t, p.Confidence, 0.9)
	})

	t.Run("object wrapped in prose", func(t *testing.T) {
		var p payload
		resp := "Sure, here is my answer:\n{\"type\": \"DUPLICATE\", \"confidence\": 0.8}\nLet me know if you need anything else."
		gt.NoError(t, llmjson.UnmarshalObject(resp, &p))
		gt.Equal(t, p.Type, "DUPLICATE")
	})

	t.Run("object in markdown fence", func(t *testing.T) {
		var p payload
		resp := "```json\n{\"type\": \"CONFLICT\", \"confidence\": 0.7}\n```"
		gt.NoError(t, llmjson.UnmarshalObject(resp, &p))
		gt.Equal(t, p.Type, "CONFLICT")
	})

	t.Run("nested braces use the last closing brace", func(t *testing.T) {
		var out struct {
			Inner payload `json:"inner"`
		}
		gt.NoError(t, llmjson.UnmarshalObject(`{"inner": {"type": "UPDATE"}}`, &out))
		gt.Equal(t, out.Inner.Type, "UPDATE")
	})

	t.Run("no object", func(t *testing.T) {
		var p payload
		err := llmjson.UnmarshalObject("I cannot answer that.", &p)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, model.ErrResponseParse))
	})

	t.Run("truncated object", func(t *testing.T) {
		var p payload
		err := llmjson.UnmarshalObject(`{"type": "UPDATE", "confidence":`, &p)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, model.ErrResponseParse))
	})
}
