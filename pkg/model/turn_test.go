package model_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/recall/pkg/model"
)

func TestIntentSignalUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		primary string
	}{
		{"bare string", `"greeting"`, "greeting"},
		{"object form", `{"primary": "memory_recall"}`, "memory_recall"},
		{"object with extra fields", `{"primary": "question", "confidence": 0.8}`, "question"},
		{"number degrades to absent", `42`, ""},
		{"array degrades to absent", `["greeting"]`, ""},
		{"null degrades to absent", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s model.IntentSignal
			gt.NoError(t, json.Unmarshal([]byte(tt.raw), &s))
			gt.Equal(t, s.Primary, tt.primary)
		})
	}
}

func TestIntentSignalNormalized(t *testing.T) {
	gt.Equal(t, model.IntentSignal{Primary: "  Greeting "}.Normalized(), "greeting")
	gt.Equal(t, model.IntentSignal{}.Normalized(), "")
}

func TestTurnRequestValidate(t *testing.T) {
	valid := func() model.TurnRequest {
		return model.TurnRequest{
			IIN:       "u1",
			SessionID: "s1",
			Now:       time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC),
			Candidates: []model.ExtractedMemoryCandidate{
				{Type: "event", Content: "dentist appointment"},
			},
		}
	}

	t.Run("valid request", func(t *testing.T) {
		req := valid()
		gt.NoError(t, req.Validate())
	})

	t.Run("missing iin", func(t *testing.T) {
		req := valid()
		req.IIN = ""
		err := req.Validate()
		gt.Error(t, err)
		gt.True(t, errors.Is(err, model.ErrMalformedInput))
	})

	t.Run("missing session", func(t *testing.T) {
		req := valid()
		req.SessionID = ""
		gt.Error(t, req.Validate())
	})

	t.Run("empty candidate content", func(t *testing.T) {
		req := valid()
		req.Candidates[0].Content = ""
		gt.Error(t, req.Validate())
	})

	t.Run("empty candidate type", func(t *testing.T) {
		req := valid()
		req.Candidates[0].Type = ""
		gt.Error(t, req.Validate())
	})

	t.Run("zero now defaults to wall clock", func(t *testing.T) {
		req := valid()
		req.Now = time.Time{}
		gt.NoError(t, req.Validate())
		gt.False(t, req.Now.IsZero())
	})
}
