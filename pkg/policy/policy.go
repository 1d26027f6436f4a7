// Package policy evaluates optional Rego rules that can override how a
// conflict verdict is dispatched. Deployments that need bespoke
// resolution behavior drop .rego files into a directory; absence of
// policies is a no-op.
package policy

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/open-policy-agent/opa/v1/rego"
)

// Dispositions a policy may force for a verdict
const (
	DispositionAutoResolve = "auto_resolve"
	DispositionAsk         = "ask"
	DispositionClean       = "clean"
)

// Engine holds the prepared resolution query
type Engine struct {
	resolve *rego.PreparedEvalQuery
}

// New loads all .rego files from policyDir and prepares the
// data.resolve query. An empty directory yields an engine that never
// overrides anything.
func New(ctx context.Context, policyDir string) (*Engine, error) {
	files, err := filepath.Glob(filepath.Join(policyDir, "*.rego"))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to glob policy files")
	}
	if len(files) == 0 {
		return &Engine{}, nil
	}

	options := make([]func(*rego.Rego), 0, len(files)+1)
	options = append(options, rego.Query("data.resolve"))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read policy file", goerr.Value("path", file))
		}
		options = append(options, rego.Module(file, string(data)))
	}

	prepared, err := rego.New(options...).PrepareForEval(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to prepare resolve query")
	}

	return &Engine{resolve: &prepared}, nil
}

// NewFromModules builds an engine from in-memory module sources.
// Used by tests.
func NewFromModules(ctx context.Context, modules map[string]string) (*Engine, error) {
	if len(modules) == 0 {
		return &Engine{}, nil
	}

	options := []func(*rego.Rego){rego.Query("data.resolve")}
	for name, src := range modules {
		options = append(options, rego.Module(name, src))
	}

	prepared, err := rego.New(options...).PrepareForEval(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to prepare resolve query")
	}
	return &Engine{resolve: &prepared}, nil
}

// Resolve evaluates the policies against a verdict input and returns
// the forced disposition, or "" when no policy claims the verdict.
func (e *Engine) Resolve(ctx context.Context, input map[string]any) (string, error) {
	if e == nil || e.resolve == nil {
		return "", nil
	}

	results, err := e.resolve.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", goerr.Wrap(err, "failed to evaluate resolve policy")
	}

	for _, result := range results {
		for _, expr := range result.Expressions {
			doc, ok := expr.Value.(map[string]any)
			if !ok {
				continue
			}
			if d, ok := doc["disposition"].(string); ok {
				switch d {
				case DispositionAutoResolve, DispositionAsk, DispositionClean:
					return d, nil
				}
			}
		}
	}
	return "", nil
}
