package model

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

// ResolvePipelineConfig overlays a stage configuration document onto
// the hardcoded defaults and validates the result. Fields absent from
// the document keep their default values. The document is the generic
// map shape the document store hands back.
func ResolvePipelineConfig(doc map[string]any) (PipelineConfig, error) {
	cfg := DefaultPipelineConfig()
	if doc == nil {
		return cfg, nil
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return DefaultPipelineConfig(), goerr.Wrap(ErrConfigLoad, "config document is not serializable")
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return DefaultPipelineConfig(), goerr.Wrap(ErrConfigLoad, "config document has invalid field types")
	}
	if err := cfg.Validate(); err != nil {
		return DefaultPipelineConfig(), goerr.Wrap(ErrConfigLoad, "config document failed validation")
	}
	return cfg, nil
}

// ResolvePipelineConfigYAML overlays a local YAML override file onto
// the defaults. Used by the CLI when running without a document store.
func ResolvePipelineConfigYAML(data []byte) (PipelineConfig, error) {
	cfg := DefaultPipelineConfig()
	if len(data) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultPipelineConfig(), goerr.Wrap(ErrConfigLoad, "invalid yaml config")
	}
	if err := cfg.Validate(); err != nil {
		return DefaultPipelineConfig(), goerr.Wrap(ErrConfigLoad, "yaml config failed validation")
	}
	return cfg, nil
}
