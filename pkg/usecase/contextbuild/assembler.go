// Package contextbuild assembles the budget-constrained, multi-layer
// context block handed to the downstream generative model. Five layers
// are built concurrently, each independently budgeted and trimmed by a
// shared deterministic token estimator, then concatenated in the
// configured order.
package contextbuild

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/m-mizutani/recall/pkg/adapter"
	"github.com/m-mizutani/recall/pkg/interfaces"
	"github.com/m-mizutani/recall/pkg/model"
	"github.com/m-mizutani/recall/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// Input identifies whose context to assemble for the turn
type Input struct {
	IIN       model.IIN
	SessionID model.SessionID
	Now       time.Time
}

// LayerDebug is the per-layer accounting exposed for inspection
type LayerDebug struct {
	Name     string `json:"name"`
	Tokens   int    `json:"tokens"`
	Items    int    `json:"items"`
	Trimmed  bool   `json:"trimmed"`
	Included bool   `json:"included"`
}

// Debug is the turn's assembly accounting
type Debug struct {
	TotalTokens int          `json:"totalTokens"`
	Order       []string     `json:"order"`
	Layers      []LayerDebug `json:"layers"`
}

// Assembled is the result of one assembly run
type Assembled struct {
	Layers      []model.ContextLayer
	Text        string
	TotalTokens int
	Debug       Debug
}

// Assembler builds and composes the five context layers
type Assembler struct {
	repo     interfaces.Repository
	llm      adapter.TextModel
	cache    adapter.SummaryCache
	archive  adapter.Storage // optional
	estimate TokenEstimator
}

type AssemblerOption func(*Assembler)

// WithArchive enables best-effort archiving of assembled blocks
func WithArchive(archive adapter.Storage) AssemblerOption {
	return func(a *Assembler) {
		a.archive = archive
	}
}

// WithEstimator replaces the default token estimator
func WithEstimator(estimate TokenEstimator) AssemblerOption {
	return func(a *Assembler) {
		a.estimate = estimate
	}
}

func NewAssembler(repo interfaces.Repository, llm adapter.TextModel, cache adapter.SummaryCache, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		repo:     repo,
		llm:      llm,
		cache:    cache,
		estimate: EstimateTokens,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func adapterParamsSummary() adapter.CompleteParams {
	return adapter.CompleteParams{MaxTokens: 512, Temperature: 0.3}
}

// Assemble builds all five layers concurrently and concatenates the
// non-empty ones in the configured order, each under its header.
// Layer source failures degrade to empty layers; Assemble itself only
// fails on a malformed configuration.
func (a *Assembler) Assemble(ctx context.Context, in Input, cfg model.ContextConfig) (*Assembled, error) {
	logger := logging.From(ctx)

	layers := map[string]*model.ContextLayer{}
	for _, name := range []string{model.LayerProfile, model.LayerCalendar, model.LayerSessionSummary, model.LayerLongRange, model.LayerImmediate} {
		layers[name] = &model.ContextLayer{Name: name}
	}

	// The builders share no mutable state: each goroutine writes only
	// its own slot.
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		msgs, err := a.repo.ListMessages(egCtx, in.IIN, in.SessionID, cfg.ImmediateTurns*2)
		if err != nil {
			logger.Warn("failed to load conversation, immediate layer stays empty", "error", err)
			return nil
		}
		*layers[model.LayerImmediate] = buildImmediate(msgs, cfg.Budget(model.LayerImmediate), a.estimate)
		return nil
	})

	eg.Go(func() error {
		*layers[model.LayerSessionSummary] = a.buildSessionSummary(egCtx, in.IIN, in.SessionID, cfg)
		return nil
	})

	eg.Go(func() error {
		records, err := a.repo.ListActiveMemories(egCtx, in.IIN)
		if err != nil {
			logger.Warn("failed to load memories, profile layer stays empty", "error", err)
			return nil
		}
		*layers[model.LayerProfile] = buildProfile(records, cfg, a.estimate)
		return nil
	})

	eg.Go(func() error {
		until := in.Now.AddDate(0, 0, cfg.CalendarWindowDays)
		events, err := a.repo.ListEvents(egCtx, in.IIN, in.Now, until, cfg.CalendarMaxItems)
		if err != nil {
			logger.Warn("failed to load events, calendar layer stays empty", "error", err)
			return nil
		}
		*layers[model.LayerCalendar] = buildCalendar(events, cfg, a.estimate)
		return nil
	})

	eg.Go(func() error {
		days, err := a.repo.ListDaySummaries(egCtx, in.IIN, cfg.LongRangeDays)
		if err != nil {
			logger.Warn("failed to load day summaries, long-range layer stays empty", "error", err)
			return nil
		}
		*layers[model.LayerLongRange] = buildLongRange(days, cfg.Budget(model.LayerLongRange), a.estimate)
		return nil
	})

	// Builders swallow their own failures
	_ = eg.Wait()

	return a.compose(ctx, in, layers, cfg), nil
}

// compose orders the built layers, omitting empty ones entirely
func (a *Assembler) compose(ctx context.Context, in Input, layers map[string]*model.ContextLayer, cfg model.ContextConfig) *Assembled {
	out := &Assembled{}
	var blocks []string

	for _, name := range cfg.Order {
		layer, ok := layers[name]
		if !ok {
			continue
		}
		out.Layers = append(out.Layers, *layer)
		out.Debug.Layers = append(out.Debug.Layers, LayerDebug{
			Name:     layer.Name,
			Tokens:   layer.TokenCount,
			Items:    layer.ItemCount,
			Trimmed:  layer.Trimmed,
			Included: !layer.Empty(),
		})
		if layer.Empty() {
			continue
		}

		header := cfg.Headers[name]
		if header == "" {
			header = "## " + name
		}
		blocks = append(blocks, header+"\n"+layer.Content)
		out.TotalTokens += layer.TokenCount
	}

	out.Text = strings.Join(blocks, "\n\n")
	out.Debug.TotalTokens = out.TotalTokens
	out.Debug.Order = cfg.Order

	if a.archive != nil {
		a.archiveBlock(ctx, in, out)
	}

	return out
}

// ArchiveKey is the object key of the archived context block for one
// assembly run. Shared with the CLI so archived blocks can be read back.
func ArchiveKey(iin model.IIN, session model.SessionID, at time.Time) string {
	return "context/" + string(iin) + "/" + string(session) + "/" + at.UTC().Format(time.RFC3339) + ".json"
}

// archiveBlock writes the assembled block and its accounting to Cloud
// Storage. Best-effort: failures are logged, never surfaced.
func (a *Assembler) archiveBlock(ctx context.Context, in Input, out *Assembled) {
	key := ArchiveKey(in.IIN, in.SessionID, in.Now)

	w, err := a.archive.Put(ctx, key)
	if err != nil {
		logging.From(ctx).Warn("failed to open context archive object", "error", err, "key", key)
		return
	}
	defer func() {
		if err := w.Close(); err != nil {
			logging.From(ctx).Warn("failed to close context archive object", "error", err, "key", key)
		}
	}()

	if err := json.NewEncoder(w).Encode(map[string]any{
		"text":  out.Text,
		"debug": out.Debug,
	}); err != nil {
		logging.From(ctx).Warn("failed to write context archive", "error", err, "key", key)
	}
}
