package conflict_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/recall/pkg/adapter"
	"github.com/m-mizutani/recall/pkg/model"
	"github.com/m-mizutani/recall/pkg/usecase/conflict"
)

// mockModel is a mock implementation of adapter.TextModel for testing
type mockModel struct {
	completeFunc func(ctx context.Context, prompt string, params adapter.CompleteParams) (string, error)
	calls        atomic.Int64
}

func (m *mockModel) Complete(ctx context.Context, prompt string, params adapter.CompleteParams) (string, error) {
	m.calls.Add(1)
	if m.completeFunc != nil {
		return m.completeFunc(ctx, prompt, params)
	}
	return "", errors.New("not implemented")
}

func activeRecord(id, recType, content string) *model.ExistingMemoryRecord {
	return &model.ExistingMemoryRecord{
		ID:      model.MemoryID(id),
		Type:    recType,
		Content: content,
		Status:  model.RecordStatusActive,
	}
}

func TestFindConflictsDuplicate(t *testing.T) {
	ctx := context.Background()

	// Scenario: identical dentist appointment already stored
	mock := &mockModel{
		completeFunc: func(_ context.Context, _ string, _ adapter.CompleteParams) (string, error) {
			return `{"type": "DUPLICATE", "confidence": 0.95, "reason": "same appointment"}`, nil
		},
	}

	cfg := model.DefaultConflictConfig()
	cfg.SkipDuplicates = true

	candidates := []model.ExtractedMemoryCandidate{{
		Type:    "event",
		Content: "Dentist appt Tuesday 3pm",
		Slots: map[string]model.Slot{
			"when_time": {Value: "15:00", Filled: true},
		},
	}}
	existing := []*model.ExistingMemoryRecord{
		activeRecord("m1", "event", "Dentist appt Tuesday 3pm"),
	}

	finder := conflict.NewFinder(mock, nil)
	result, err := finder.FindConflicts(ctx, candidates, existing, cfg, "2026-08-26")
	gt.NoError(t, err)

	gt.A(t, result.Clean).Length(0)
	gt.A(t, result.PendingClarifications).Length(0)
	gt.A(t, result.AutoResolved).Length(1)
	gt.Equal(t, result.AutoResolved[0].Relation, model.RelationDuplicate)
	gt.Equal(t, result.AutoResolved[0].Similarity, 1.0)
	gt.True(t, result.AutoResolved[0].AutoResolved)
	gt.False(t, result.AutoResolved[0].NeedsClarification)
}

func TestFindConflictsNoExistingRecords(t *testing.T) {
	ctx := context.Background()
	mock := &mockModel{}

	candidates := []model.ExtractedMemoryCandidate{
		{Type: "event", Content: "dentist appointment tuesday"},
		{Type: "preference", Content: "likes oat milk lattes"},
		{Type: "location", Content: "lives in Osaka"},
	}

	finder := conflict.NewFinder(mock, nil)
	result, err := finder.FindConflicts(ctx, candidates, nil, model.DefaultConflictConfig(), "2026-08-26")
	gt.NoError(t, err)

	// Every candidate is clean and the classifier is never invoked
	gt.A(t, result.Clean).Length(3)
	gt.A(t, result.AutoResolved).Length(0)
	gt.A(t, result.PendingClarifications).Length(0)
	gt.Equal(t, mock.calls.Load(), int64(0))
}

func TestFindConflictsFailOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		resp string
		err  error
	}{
		{"call failure", "", errors.New("deadline exceeded")},
		{"no JSON in response", "I could not decide, sorry.", nil},
		{"broken JSON", `{"type": "CONFLICT", "confidence":`, nil},
		{"unknown label", `{"type": "MAYBE", "confidence": 0.5, "reason": "?"}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockModel{
				completeFunc: func(_ context.Context, _ string, _ adapter.CompleteParams) (string, error) {
					return tt.resp, tt.err
				},
			}

			candidates := []model.ExtractedMemoryCandidate{{
				Type:    "event",
				Content: "Dentist appt Tuesday 3pm",
			}}
			existing := []*model.ExistingMemoryRecord{
				activeRecord("m1", "event", "Dentist appt Tuesday 3pm"),
			}

			finder := conflict.NewFinder(mock, nil)
			result, err := finder.FindConflicts(ctx, candidates, existing, model.DefaultConflictConfig(), "2026-08-26")
			gt.NoError(t, err)

			// Degrades to NONE: the item passes through clean
			gt.A(t, result.Clean).Length(1)
			gt.A(t, result.PendingClarifications).Length(0)
		})
	}
}

func TestFindConflictsSeverityOverRank(t *testing.T) {
	ctx := context.Background()

	// The most similar record classifies as DUPLICATE, a less similar
	// one as CONFLICT. Severity must win over rank.
	mock := &mockModel{
		completeFunc: func(_ context.Context, prompt string, _ adapter.CompleteParams) (string, error) {
			if strings.Contains(prompt, "Dentist appt Tuesday 3pm at the downtown clinic") {
				return `{"type": "CONFLICT", "confidence": 0.8, "reason": "different clinic"}`, nil
			}
			return `{"type": "DUPLICATE", "confidence": 0.9, "reason": "same appointment"}`, nil
		},
	}

	cfg := model.DefaultConflictConfig()
	cfg.SkipDuplicates = true

	candidates := []model.ExtractedMemoryCandidate{{
		Type:    "event",
		Content: "Dentist appt Tuesday 3pm at the clinic",
	}}
	existing := []*model.ExistingMemoryRecord{
		activeRecord("dup", "event", "Dentist appt Tuesday 3pm at the clinic"),
		activeRecord("conf", "event", "Dentist appt Tuesday 3pm at the downtown clinic"),
	}

	finder := conflict.NewFinder(mock, nil)
	result, err := finder.FindConflicts(ctx, candidates, existing, cfg, "2026-08-26")
	gt.NoError(t, err)

	gt.A(t, result.AutoResolved).Length(0)
	gt.A(t, result.PendingClarifications).Length(1)
	gt.Equal(t, result.PendingClarifications[0].Relation, model.RelationConflict)
	gt.Equal(t, result.PendingClarifications[0].Existing.ID, model.MemoryID("conf"))
}

func TestFindConflictsDisabled(t *testing.T) {
	ctx := context.Background()
	mock := &mockModel{}

	cfg := model.DefaultConflictConfig()
	cfg.Enabled = false

	candidates := []model.ExtractedMemoryCandidate{{Type: "event", Content: "anything"}}
	existing := []*model.ExistingMemoryRecord{activeRecord("m1", "event", "anything")}

	finder := conflict.NewFinder(mock, nil)
	result, err := finder.FindConflicts(ctx, candidates, existing, cfg, "2026-08-26")
	gt.NoError(t, err)
	gt.A(t, result.Clean).Length(1)
	gt.Equal(t, mock.calls.Load(), int64(0))
}
