// Package turn composes the full pipeline for one request/response
// cycle: conflict detection, clarification arbitration, context
// assembly and disclosure. Each invocation is request-scoped and
// short-lived; the session-summary cache is the only state shared
// across invocations.
package turn

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/recall/pkg/adapter"
	"github.com/m-mizutani/recall/pkg/interfaces"
	"github.com/m-mizutani/recall/pkg/model"
	"github.com/m-mizutani/recall/pkg/policy"
	"github.com/m-mizutani/recall/pkg/usecase/clarify"
	"github.com/m-mizutani/recall/pkg/usecase/conflict"
	"github.com/m-mizutani/recall/pkg/usecase/contextbuild"
	"github.com/m-mizutani/recall/pkg/usecase/disclose"
	"github.com/m-mizutani/recall/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// Result aggregates every stage's output for one turn
type Result struct {
	Config     model.PipelineConfig   `json:"config"`
	Conflicts  *conflict.Result       `json:"conflicts"`
	Decision   *clarify.Decision      `json:"decision"`
	Context    *contextbuild.Assembled `json:"context"`
	Disclosure *disclose.Result       `json:"disclosure"`
}

// Pipeline wires the stages to their dependencies
type Pipeline struct {
	repo      interfaces.Repository
	finder    *conflict.Finder
	checker   *clarify.Checker
	assembler *contextbuild.Assembler
}

type NewInput struct {
	Repo   interfaces.Repository
	LLM    adapter.TextModel
	Cache  adapter.SummaryCache
	Engine *policy.Engine
	// Archive enables context block archiving when non-nil
	Archive adapter.Storage
}

func New(in NewInput) (*Pipeline, error) {
	if in.Repo == nil {
		return nil, goerr.New("repository is required")
	}
	if in.LLM == nil {
		return nil, goerr.New("text model is required")
	}
	if in.Cache == nil {
		in.Cache = adapter.NewMemoryCache()
	}

	var opts []contextbuild.AssemblerOption
	if in.Archive != nil {
		opts = append(opts, contextbuild.WithArchive(in.Archive))
	}

	return &Pipeline{
		repo:      in.Repo,
		finder:    conflict.NewFinder(in.LLM, in.Engine),
		checker:   clarify.NewChecker(in.LLM),
		assembler: contextbuild.NewAssembler(in.Repo, in.LLM, in.Cache, opts...),
	}, nil
}

// Run executes one turn. The memory decision path and the context
// assembly are independent, so they run in parallel; the disclosure
// stage joins them at the end.
func (p *Pipeline) Run(ctx context.Context, req *model.TurnRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger := logging.From(ctx)
	cfg := p.loadConfig(ctx, req.IIN)
	today := req.Now.Format("2006-01-02")

	result := &Result{Config: cfg}

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		existing, err := p.repo.ListActiveMemories(egCtx, req.IIN)
		if err != nil {
			// Persistence failures surface as empty results: the turn
			// proceeds as if the user had no records.
			logger.Warn("failed to load existing memories, treating all candidates as clean", "error", err)
			existing = nil
		}

		conflicts, err := p.finder.FindConflicts(egCtx, req.Candidates, existing, cfg.Conflict, today)
		if err != nil {
			return err
		}
		result.Conflicts = conflicts

		result.Decision = p.checker.Run(egCtx, clarify.Input{
			Items:               conflicts.Clean,
			Pending:             conflicts.PendingClarifications,
			Message:             req.Message,
			Today:               today,
			QuestionsAskedCount: req.QuestionsAskedCount,
		}, cfg.Clarify)
		return nil
	})

	eg.Go(func() error {
		assembled, err := p.assembler.Assemble(egCtx, contextbuild.Input{
			IIN:       req.IIN,
			SessionID: req.SessionID,
			Now:       req.Now,
		}, cfg.Context)
		if err != nil {
			return err
		}
		result.Context = assembled
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	result.Disclosure = disclose.Build(disclose.Input{
		Intent:       req.Intent,
		Memories:     req.Memories,
		SaveDecision: req.SaveDecision,
		SaveResults:  req.SaveResults,
		Hold:         result.Decision.HoldForClarification,
	}, cfg.Disclose)

	logger.Info("turn completed",
		"iin", req.IIN,
		"session", req.SessionID,
		"mode", result.Disclosure.Mode,
		"hold", result.Decision.HoldForClarification,
		"contextTokens", result.Context.TotalTokens)

	return result, nil
}

// loadConfig resolves the stage configuration, falling back to the
// hardcoded defaults on any load or validation failure. Never fatal.
func (p *Pipeline) loadConfig(ctx context.Context, iin model.IIN) model.PipelineConfig {
	doc, err := p.repo.GetStageConfig(ctx, iin)
	if err != nil {
		logging.From(ctx).Warn("failed to load stage config, using defaults", "error", err)
		return model.DefaultPipelineConfig()
	}

	cfg, err := model.ResolvePipelineConfig(doc)
	if err != nil {
		logging.From(ctx).Warn("invalid stage config, using defaults", "error", err)
		return model.DefaultPipelineConfig()
	}
	return cfg
}
