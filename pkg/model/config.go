package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Clarify stage modes
const (
	ClarifyModeLocal  = "local"
	ClarifyModeHybrid = "hybrid"
	ClarifyModeLLM    = "llm" // reserved; currently behaves as local
)

// Policies for a turn held by incomplete cards
const (
	WhenIncompleteAsk         = "ask"
	WhenIncompleteSavePartial = "savePartial"
	WhenIncompleteReject      = "reject"
)

// Context layer names, also valid entries of ContextConfig.Order
const (
	LayerProfile        = "profile"
	LayerCalendar       = "calendar"
	LayerSessionSummary = "session_summary"
	LayerLongRange      = "long_range"
	LayerImmediate      = "immediate"
)

// ConflictConfig is the resolved configuration of the conflict stage
type ConflictConfig struct {
	Enabled             bool    `json:"enabled" yaml:"enabled" firestore:"enabled"`
	SimilarityThreshold float64 `json:"similarityThreshold" yaml:"similarityThreshold" firestore:"similarityThreshold"`
	MaxCandidates       int     `json:"maxCandidates" yaml:"maxCandidates" firestore:"maxCandidates"`
	SkipDuplicates      bool    `json:"skipDuplicates" yaml:"skipDuplicates" firestore:"skipDuplicates"`
	AutoResolveUpdates  bool    `json:"autoResolveUpdates" yaml:"autoResolveUpdates" firestore:"autoResolveUpdates"`
}

// DefaultConflictConfig returns the hardcoded fallback used whenever
// the stage configuration document cannot be loaded.
func DefaultConflictConfig() ConflictConfig {
	return ConflictConfig{
		Enabled:             true,
		SimilarityThreshold: 0.7,
		MaxCandidates:       5,
		SkipDuplicates:      true,
		AutoResolveUpdates:  false,
	}
}

// Validate checks the resolved value object
func (c *ConflictConfig) Validate() error {
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return goerr.New("similarityThreshold must be within [0,1]",
			goerr.V("value", c.SimilarityThreshold))
	}
	if c.MaxCandidates < 1 {
		return goerr.New("maxCandidates must be positive", goerr.V("value", c.MaxCandidates))
	}
	return nil
}

// ClarifyConfig is the resolved configuration of the clarify stage
type ClarifyConfig struct {
	Enabled             bool   `json:"enabled" yaml:"enabled" firestore:"enabled"`
	Mode                string `json:"mode" yaml:"mode" firestore:"mode"`
	MaxQuestionsPerItem int    `json:"maxQuestionsPerItem" yaml:"maxQuestionsPerItem" firestore:"maxQuestionsPerItem"`
	AllowPartialAfter   int    `json:"allowPartialAfter" yaml:"allowPartialAfter" firestore:"allowPartialAfter"`
	WhenIncomplete      string `json:"whenIncomplete" yaml:"whenIncomplete" firestore:"whenIncomplete"`
}

func DefaultClarifyConfig() ClarifyConfig {
	return ClarifyConfig{
		Enabled:             true,
		Mode:                ClarifyModeLocal,
		MaxQuestionsPerItem: 2,
		AllowPartialAfter:   3,
		WhenIncomplete:      WhenIncompleteAsk,
	}
}

func (c *ClarifyConfig) Validate() error {
	switch c.Mode {
	case ClarifyModeLocal, ClarifyModeHybrid, ClarifyModeLLM:
	default:
		return goerr.New("invalid clarify mode", goerr.V("mode", c.Mode))
	}
	switch c.WhenIncomplete {
	case WhenIncompleteAsk, WhenIncompleteSavePartial, WhenIncompleteReject:
	default:
		return goerr.New("invalid whenIncomplete policy", goerr.V("policy", c.WhenIncomplete))
	}
	if c.MaxQuestionsPerItem < 0 || c.AllowPartialAfter < 0 {
		return goerr.New("question budgets must be non-negative")
	}
	return nil
}

// ContextConfig is the resolved configuration of the context stage
type ContextConfig struct {
	ImmediateTurns  int `json:"immediateTurns" yaml:"immediateTurns" firestore:"immediateTurns"`
	ImmediateBudget int `json:"immediateBudget" yaml:"immediateBudget" firestore:"immediateBudget"`

	SessionBudget           int           `json:"sessionBudget" yaml:"sessionBudget" firestore:"sessionBudget"`
	SessionMessageThreshold int           `json:"sessionMessageThreshold" yaml:"sessionMessageThreshold" firestore:"sessionMessageThreshold"`
	SessionSummaryTTL       time.Duration `json:"sessionSummaryTTL" yaml:"sessionSummaryTTL" firestore:"sessionSummaryTTL"`

	ProfileBudget       int      `json:"profileBudget" yaml:"profileBudget" firestore:"profileBudget"`
	ProfileMinRelevance float64  `json:"profileMinRelevance" yaml:"profileMinRelevance" firestore:"profileMinRelevance"`
	ProfileMaxItems     int      `json:"profileMaxItems" yaml:"profileMaxItems" firestore:"profileMaxItems"`
	ProfileAllowTypes   []string `json:"profileAllowTypes" yaml:"profileAllowTypes" firestore:"profileAllowTypes"`
	ProfileDenyTypes    []string `json:"profileDenyTypes" yaml:"profileDenyTypes" firestore:"profileDenyTypes"`

	CalendarBudget     int `json:"calendarBudget" yaml:"calendarBudget" firestore:"calendarBudget"`
	CalendarWindowDays int `json:"calendarWindowDays" yaml:"calendarWindowDays" firestore:"calendarWindowDays"`
	CalendarMaxItems   int `json:"calendarMaxItems" yaml:"calendarMaxItems" firestore:"calendarMaxItems"`

	LongRangeBudget int `json:"longRangeBudget" yaml:"longRangeBudget" firestore:"longRangeBudget"`
	LongRangeDays   int `json:"longRangeDays" yaml:"longRangeDays" firestore:"longRangeDays"`

	Order   []string          `json:"order" yaml:"order" firestore:"order"`
	Headers map[string]string `json:"headers" yaml:"headers" firestore:"headers"`

	// DebugBucket enables archiving of assembled context blocks to
	// Cloud Storage when non-empty.
	DebugBucket string `json:"debugBucket" yaml:"debugBucket" firestore:"debugBucket"`
}

func DefaultContextConfig() ContextConfig {
	return ContextConfig{
		ImmediateTurns:  10,
		ImmediateBudget: 400,

		SessionBudget:           200,
		SessionMessageThreshold: 12,
		SessionSummaryTTL:       10 * time.Minute,

		ProfileBudget:       300,
		ProfileMinRelevance: 0.4,
		ProfileMaxItems:     8,

		CalendarBudget:     100,
		CalendarWindowDays: 7,
		CalendarMaxItems:   5,

		LongRangeBudget: 200,
		LongRangeDays:   7,

		Order: []string{LayerProfile, LayerCalendar, LayerSessionSummary, LayerLongRange, LayerImmediate},
		Headers: map[string]string{
			LayerProfile:        "## What you know about the user",
			LayerCalendar:       "## Upcoming events",
			LayerSessionSummary: "## Earlier in this conversation",
			LayerLongRange:      "## Recent days",
			LayerImmediate:      "## Current conversation",
		},
	}
}

func (c *ContextConfig) Validate() error {
	budgets := map[string]int{
		LayerImmediate:      c.ImmediateBudget,
		LayerSessionSummary: c.SessionBudget,
		LayerProfile:        c.ProfileBudget,
		LayerCalendar:       c.CalendarBudget,
		LayerLongRange:      c.LongRangeBudget,
	}
	for name, b := range budgets {
		if b <= 0 {
			return goerr.New("layer budget must be positive",
				goerr.V("layer", name), goerr.V("budget", b))
		}
	}
	if c.ProfileMinRelevance < 0 || c.ProfileMinRelevance > 1 {
		return goerr.New("profileMinRelevance must be within [0,1]",
			goerr.V("value", c.ProfileMinRelevance))
	}
	for _, name := range c.Order {
		if _, ok := budgets[name]; !ok {
			return goerr.New("unknown layer in order", goerr.V("layer", name))
		}
	}
	return nil
}

// Budget returns the token budget of the named layer
func (c *ContextConfig) Budget(layer string) int {
	switch layer {
	case LayerImmediate:
		return c.ImmediateBudget
	case LayerSessionSummary:
		return c.SessionBudget
	case LayerProfile:
		return c.ProfileBudget
	case LayerCalendar:
		return c.CalendarBudget
	case LayerLongRange:
		return c.LongRangeBudget
	default:
		return 0
	}
}

// DiscloseConfig is the resolved configuration of the disclosure stage
type DiscloseConfig struct {
	BasePersona string `json:"basePersona" yaml:"basePersona" firestore:"basePersona"`
}

func DefaultDiscloseConfig() DiscloseConfig {
	return DiscloseConfig{
		BasePersona: "You are a warm, concise personal assistant.",
	}
}

func (c *DiscloseConfig) Validate() error {
	if c.BasePersona == "" {
		return goerr.New("basePersona must not be empty")
	}
	return nil
}

// PipelineConfig bundles the per-stage configurations of one turn
type PipelineConfig struct {
	Conflict ConflictConfig `json:"conflict" yaml:"conflict" firestore:"conflict"`
	Clarify  ClarifyConfig  `json:"clarify" yaml:"clarify" firestore:"clarify"`
	Context  ContextConfig  `json:"context" yaml:"context" firestore:"context"`
	Disclose DiscloseConfig `json:"disclose" yaml:"disclose" firestore:"disclose"`
}

func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Conflict: DefaultConflictConfig(),
		Clarify:  DefaultClarifyConfig(),
		Context:  DefaultContextConfig(),
		Disclose: DefaultDiscloseConfig(),
	}
}

func (c *PipelineConfig) Validate() error {
	if err := c.Conflict.Validate(); err != nil {
		return goerr.Wrap(err, "conflict config")
	}
	if err := c.Clarify.Validate(); err != nil {
		return goerr.Wrap(err, "clarify config")
	}
	if err := c.Context.Validate(); err != nil {
		return goerr.Wrap(err, "context config")
	}
	if err := c.Disclose.Validate(); err != nil {
		return goerr.Wrap(err, "disclose config")
	}
	return nil
}
