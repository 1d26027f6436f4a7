package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/recall/pkg/adapter"
	"github.com/m-mizutani/recall/pkg/interfaces"
	"github.com/m-mizutani/recall/pkg/policy"
	"github.com/m-mizutani/recall/pkg/repository"
	"github.com/m-mizutani/recall/pkg/usecase/turn"
	"github.com/m-mizutani/recall/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// secret name resolved through the credential provider
const secretRedisPassword = "REDIS_PASSWORD"

// config holds configuration values
type config struct {
	// Logging
	logLevel string

	// Repository
	project  string
	database string
	local    bool

	// Adapters
	geminiProject  string
	geminiLocation string
	geminiModel    string
	redisAddr      string
	debugBucket    string
	policyDir      string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("RECALL_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.BoolFlag{
			Name:        "local",
			Usage:       "Run against an in-memory store instead of Firestore",
			Sources:     cli.EnvVars("RECALL_LOCAL"),
			Destination: &cfg.local,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model name",
			Sources:     cli.EnvVars("GEMINI_MODEL"),
			Destination: &cfg.geminiModel,
		},
	}
}

// pipelineFlags returns flags for optional pipeline infrastructure
func pipelineFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "redis-addr",
			Usage:       "Redis address for the session summary cache (in-process cache when empty)",
			Sources:     cli.EnvVars("REDIS_ADDR"),
			Destination: &cfg.redisAddr,
		},
		&cli.StringFlag{
			Name:        "debug-bucket",
			Usage:       "Cloud Storage bucket for context block archives",
			Sources:     cli.EnvVars("RECALL_DEBUG_BUCKET"),
			Destination: &cfg.debugBucket,
		},
		&cli.StringFlag{
			Name:        "policy-dir",
			Usage:       "Directory of Rego policies overriding conflict resolution",
			Sources:     cli.EnvVars("RECALL_POLICY_DIR"),
			Destination: &cfg.policyDir,
		},
	}
}

// setupLogger creates the command logger and attaches it to the context
func (cfg *config) setupLogger(ctx context.Context) context.Context {
	logger := logging.New(cfg.logLevel, os.Stderr)
	logging.SetDefault(logger)
	return logging.With(ctx, logger)
}

// newRepository creates a new repository instance
func (cfg *config) newRepository(ctx context.Context) (interfaces.Repository, error) {
	if cfg.local {
		return repository.NewMemory(), nil
	}
	if cfg.project == "" {
		return nil, goerr.New("project is required")
	}
	if cfg.database == "" {
		return nil, goerr.New("database is required")
	}

	repo, err := repository.NewFirestore(ctx, cfg.project, cfg.database)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create repository")
	}
	return repo, nil
}

// newTextModel creates the Gemini adapter, or the unavailable stub in
// local runs without a Gemini project (all secondary analyses then
// degrade to their defaults).
func (cfg *config) newTextModel(ctx context.Context) (adapter.TextModel, error) {
	if cfg.geminiProject == "" {
		if cfg.local {
			return adapter.NewUnavailableModel(), nil
		}
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}

	var opts []adapter.GeminiOption
	if cfg.geminiModel != "" {
		opts = append(opts, adapter.WithModel(cfg.geminiModel))
	}
	return adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation, opts...)
}

// newSummaryCache creates the Redis-backed cache when an address is
// configured, resolving the password through the credential provider.
// A missing credential degrades to the in-process cache.
func (cfg *config) newSummaryCache(ctx context.Context) adapter.SummaryCache {
	if cfg.redisAddr == "" {
		return adapter.NewMemoryCache()
	}

	password := ""
	if cfg.project != "" {
		secrets, err := adapter.NewSecrets(ctx, cfg.project)
		if err != nil {
			logging.From(ctx).Warn("credential provider unavailable, using in-process summary cache", "error", err)
			return adapter.NewMemoryCache()
		}
		password, err = secrets.Get(ctx, secretRedisPassword)
		if err != nil {
			logging.From(ctx).Warn("redis credential unavailable, using in-process summary cache", "error", err)
			return adapter.NewMemoryCache()
		}
	}

	cache, err := adapter.NewRedisCache(cfg.redisAddr, password)
	if err != nil {
		logging.From(ctx).Warn("failed to create redis cache, using in-process summary cache", "error", err)
		return adapter.NewMemoryCache()
	}
	return cache
}

// newPipeline wires the full pipeline from the command configuration.
// The repository is returned alongside so commands that log messages
// write to the same store the pipeline reads from.
func (cfg *config) newPipeline(ctx context.Context) (*turn.Pipeline, interfaces.Repository, error) {
	repo, err := cfg.newRepository(ctx)
	if err != nil {
		return nil, nil, err
	}

	llm, err := cfg.newTextModel(ctx)
	if err != nil {
		return nil, nil, err
	}

	var engine *policy.Engine
	if cfg.policyDir != "" {
		engine, err = policy.New(ctx, cfg.policyDir)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to load resolution policies")
		}
	}

	var archive adapter.Storage
	if cfg.debugBucket != "" {
		archive, err = adapter.NewStorage(ctx, cfg.debugBucket)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create debug archive")
		}
	}

	pipeline, err := turn.New(turn.NewInput{
		Repo:    repo,
		LLM:     llm,
		Cache:   cfg.newSummaryCache(ctx),
		Engine:  engine,
		Archive: archive,
	})
	if err != nil {
		return nil, nil, err
	}
	return pipeline, repo, nil
}
