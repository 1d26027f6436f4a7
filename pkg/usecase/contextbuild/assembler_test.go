package contextbuild_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/recall/pkg/adapter"
	"github.com/m-mizutani/recall/pkg/model"
	"github.com/m-mizutani/recall/pkg/repository"
	"github.com/m-mizutani/recall/pkg/usecase/contextbuild"
)

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

const (
	testIIN     = model.IIN("user-1")
	testSession = model.SessionID("session-1")
)

type archiveObject struct {
	bytes.Buffer
}

func (o *archiveObject) Close() error { return nil }

type mockArchive struct {
	objects map[string]*archiveObject
}

func newMockArchive() *mockArchive {
	return &mockArchive{objects: map[string]*archiveObject{}}
}

func (m *mockArchive) Put(_ context.Context, key string) (io.WriteCloser, error) {
	obj := &archiveObject{}
	m.objects[key] = obj
	return obj, nil
}

func (m *mockArchive) Get(_ context.Context, key string) (io.ReadCloser, error) {
	obj, ok := m.objects[key]
	if !ok {
		return nil, errors.New("object not found: " + key)
	}
	return io.NopCloser(bytes.NewReader(obj.Bytes())), nil
}

func seededRepo(now time.Time) *repository.Memory {
	repo := repository.NewMemory()

	repo.Memories[testIIN] = []*model.ExistingMemoryRecord{
		{ID: "m1", Type: "location", Content: "lives in Osaka", Relevance: 0.9, Status: model.RecordStatusActive},
		{ID: "m2", Type: "preference", Content: "prefers morning appointments", Relevance: 0.6, Status: model.RecordStatusActive},
	}
	repo.Events[testIIN] = []model.CalendarEvent{
		{Title: "Dentist", StartsAt: now.Add(48 * time.Hour), Location: "Downtown Clinic"},
	}
	repo.Summaries[testIIN] = []model.DaySummary{
		{Date: "2026-08-24", Content: "talked about work stress"},
		{Date: "2026-08-25", Content: "booked the dentist", Topics: []string{"health"}},
	}

	msgs := map[model.SessionID][]model.Message{testSession: nil}
	for i := 0; i < 7; i++ {
		msgs[testSession] = append(msgs[testSession],
			model.Message{Role: "user", Content: "question number " + string(rune('a'+i))},
			model.Message{Role: "assistant", Content: "answer number " + string(rune('a'+i))},
		)
	}
	repo.Messages[testIIN] = msgs

	return repo
}

func TestAssembleAllLayers(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)

	mock := &mockModel{
		completeFunc: func(_ context.Context, _ string, _ adapter.CompleteParams) (string, error) {
			return "Earlier the user planned a dentist visit.", nil
		},
	}

	assembler := contextbuild.NewAssembler(seededRepo(now), mock, adapter.NewMemoryCache())
	cfg := model.DefaultContextConfig()

	out, err := assembler.Assemble(ctx, contextbuild.Input{
		IIN:       testIIN,
		SessionID: testSession,
		Now:       now,
	}, cfg)
	gt.NoError(t, err)
	gt.NotNil(t, out)

	// Every layer is present and the headers appear in configured order
	headers := []string{
		cfg.Headers[model.LayerProfile],
		cfg.Headers[model.LayerCalendar],
		cfg.Headers[model.LayerSessionSummary],
		cfg.Headers[model.LayerLongRange],
		cfg.Headers[model.LayerImmediate],
	}
	prev := -1
	for _, h := range headers {
		idx := strings.Index(out.Text, h)
		gt.True(t, idx > prev)
		prev = idx
	}

	gt.S(t, out.Text).Contains("lives in Osaka")
	gt.S(t, out.Text).Contains("Dentist @ Downtown Clinic")
	gt.S(t, out.Text).Contains("Earlier the user planned a dentist visit.")
	gt.S(t, out.Text).Contains("2026-08-25: booked the dentist (health)")
	gt.S(t, out.Text).Contains("User: question number")

	gt.A(t, out.Layers).Length(5)
	for _, layer := range out.Layers {
		gt.False(t, layer.Trimmed)
		gt.False(t, layer.Empty())
	}
	gt.True(t, out.TotalTokens > 0)
	gt.Equal(t, out.Debug.TotalTokens, out.TotalTokens)
	gt.Equal(t, out.Debug.Order, cfg.Order)
}

func TestAssembleEmptyLayersOmitted(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)

	assembler := contextbuild.NewAssembler(repository.NewMemory(), &mockModel{}, adapter.NewMemoryCache())
	cfg := model.DefaultContextConfig()

	out, err := assembler.Assemble(ctx, contextbuild.Input{
		IIN:       testIIN,
		SessionID: testSession,
		Now:       now,
	}, cfg)
	gt.NoError(t, err)

	gt.Equal(t, out.Text, "")
	gt.Equal(t, out.TotalTokens, 0)
	// The accounting still lists every layer, marked as excluded
	gt.A(t, out.Debug.Layers).Length(5)
	for _, layer := range out.Debug.Layers {
		gt.False(t, layer.Included)
	}
}

func TestAssembleSummaryBelowThreshold(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)

	repo := seededRepo(now)
	repo.Messages[testIIN][testSession] = repo.Messages[testIIN][testSession][:4]

	mock := &mockModel{}
	assembler := contextbuild.NewAssembler(repo, mock, adapter.NewMemoryCache())

	out, err := assembler.Assemble(ctx, contextbuild.Input{
		IIN:       testIIN,
		SessionID: testSession,
		Now:       now,
	}, model.DefaultContextConfig())
	gt.NoError(t, err)

	// Short sessions never reach the summarizer
	gt.Equal(t, mock.calls.Load(), int64(0))
	gt.S(t, out.Text).NotContains("Earlier in this conversation")
}

func TestAssembleSummarizerFailureDegrades(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)

	mock := &mockModel{
		completeFunc: func(_ context.Context, _ string, _ adapter.CompleteParams) (string, error) {
			return "", errors.New("deadline exceeded")
		},
	}
	assembler := contextbuild.NewAssembler(seededRepo(now), mock, adapter.NewMemoryCache())
	cfg := model.DefaultContextConfig()

	out, err := assembler.Assemble(ctx, contextbuild.Input{
		IIN:       testIIN,
		SessionID: testSession,
		Now:       now,
	}, cfg)
	gt.NoError(t, err)

	// The summary layer stays empty; everything else still assembles
	gt.S(t, out.Text).NotContains(cfg.Headers[model.LayerSessionSummary])
	gt.S(t, out.Text).Contains("lives in Osaka")
	gt.S(t, out.Text).Contains("User: question number")
}

func TestAssembleSummaryCached(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)

	mock := &mockModel{
		completeFunc: func(_ context.Context, _ string, _ adapter.CompleteParams) (string, error) {
			return "Earlier the user planned a dentist visit.", nil
		},
	}
	assembler := contextbuild.NewAssembler(seededRepo(now), mock, adapter.NewMemoryCache())
	cfg := model.DefaultContextConfig()
	in := contextbuild.Input{IIN: testIIN, SessionID: testSession, Now: now}

	_, err := assembler.Assemble(ctx, in, cfg)
	gt.NoError(t, err)
	gt.Equal(t, mock.calls.Load(), int64(1))

	// The second assembly within the TTL reuses the cached summary
	out, err := assembler.Assemble(ctx, in, cfg)
	gt.NoError(t, err)
	gt.Equal(t, mock.calls.Load(), int64(1))
	gt.S(t, out.Text).Contains("Earlier the user planned a dentist visit.")
}

func TestAssembleArchivesBlock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)

	archive := newMockArchive()
	assembler := contextbuild.NewAssembler(seededRepo(now), &mockModel{
		completeFunc: func(_ context.Context, _ string, _ adapter.CompleteParams) (string, error) {
			return "Earlier the user planned a dentist visit.", nil
		},
	}, adapter.NewMemoryCache(), contextbuild.WithArchive(archive))

	out, err := assembler.Assemble(ctx, contextbuild.Input{
		IIN:       testIIN,
		SessionID: testSession,
		Now:       now,
	}, model.DefaultContextConfig())
	gt.NoError(t, err)

	// The archived object is readable back under the derived key
	r, err := archive.Get(ctx, contextbuild.ArchiveKey(testIIN, testSession, now))
	gt.NoError(t, err)
	defer r.Close()

	var stored struct {
		Text  string            `json:"text"`
		Debug contextbuild.Debug `json:"debug"`
	}
	gt.NoError(t, json.NewDecoder(r).Decode(&stored))
	gt.Equal(t, stored.Text, out.Text)
	gt.Equal(t, stored.Debug.TotalTokens, out.TotalTokens)
}

func TestArchiveKeyNormalizesToUTC(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	key := contextbuild.ArchiveKey("u1", "s1", time.Date(2026, 8, 26, 18, 0, 0, 0, jst))
	gt.Equal(t, key, "context/u1/s1/2026-08-26T09:00:00Z.json")
}

func TestAssembleSummaryTrimHonorsEstimator(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)

	// An estimator far above the default chars-per-token ratio: the
	// summary truncation must converge against it, not the ratio.
	expensive := func(text string) int {
		if text == "" {
			return 0
		}
		return len(text) * 20
	}

	assembler := contextbuild.NewAssembler(seededRepo(now), &mockModel{
		completeFunc: func(_ context.Context, _ string, _ adapter.CompleteParams) (string, error) {
			return "Earlier the user planned a dentist visit and asked about parking.", nil
		},
	}, adapter.NewMemoryCache(), contextbuild.WithEstimator(expensive))

	cfg := model.DefaultContextConfig()
	out, err := assembler.Assemble(ctx, contextbuild.Input{
		IIN:       testIIN,
		SessionID: testSession,
		Now:       now,
	}, cfg)
	gt.NoError(t, err)

	for _, layer := range out.Layers {
		if layer.Name != model.LayerSessionSummary {
			continue
		}
		gt.False(t, layer.Empty())
		gt.True(t, layer.Trimmed)
		gt.True(t, layer.TokenCount <= cfg.SessionBudget)
	}
}

func TestAssembleCustomEstimator(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)

	// An estimator that makes everything expensive forces trims
	expensive := func(text string) int {
		if text == "" {
			return 0
		}
		return len(text) * 20
	}

	assembler := contextbuild.NewAssembler(seededRepo(now), &mockModel{
		completeFunc: func(_ context.Context, _ string, _ adapter.CompleteParams) (string, error) {
			return "Earlier the user planned a dentist visit.", nil
		},
	}, adapter.NewMemoryCache(), contextbuild.WithEstimator(expensive))

	out, err := assembler.Assemble(ctx, contextbuild.Input{
		IIN:       testIIN,
		SessionID: testSession,
		Now:       now,
	}, model.DefaultContextConfig())
	gt.NoError(t, err)

	for _, layer := range out.Layers {
		if layer.Name == model.LayerCalendar || layer.Empty() {
			continue
		}
		// Trim floors keep one item even when nothing fits
		gt.True(t, layer.Trimmed)
		gt.True(t, layer.ItemCount >= 1)
	}
}
