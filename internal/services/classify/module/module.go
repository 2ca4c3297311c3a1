// Package module implements the classify module
package module

import (
	"bothunt/internal/adapters/llm"
	"bothunt/internal/core/promptpack"
	"bothunt/internal/modkit"
	"bothunt/internal/services/classify/domain"
	"bothunt/internal/services/classify/service"
)

// Ports exposed by the classify module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
	opts  Options
}

// New constructs a new classify module
// Catalog and Cache ports must be injected with WithPorts; the gateway may
// be injected too (tests) or is built here from SERVICE_LLM_* config
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("classify"),
	}, opts...)...)

	// Basic guardrails against incorrect wiring
	ports, ok := b.Ports.(domain.Ports)
	if !ok {
		panic("classify module: expected WithPorts(classify/domain.Ports)")
	}
	if ports.Catalog == nil || ports.Cache == nil {
		panic("classify module: Ports missing Catalog or Cache")
	}

	// Merge config + overrides
	cfg := FromConfig(deps.Cfg)
	if overrides.Detector != "" {
		cfg.Detector = overrides.Detector
	}
	if overrides.Model != "" {
		cfg.Model = overrides.Model
	}
	if len(overrides.Datasets) != 0 {
		cfg.Datasets = overrides.Datasets
	}
	if overrides.Resume != "" {
		cfg.Resume = overrides.Resume
	}
	if overrides.Workers != 0 {
		cfg.Workers = overrides.Workers
	}
	if overrides.Delay != 0 {
		cfg.Delay = overrides.Delay
	}
	if overrides.Dispatch != "" {
		cfg.Dispatch = overrides.Dispatch
	}
	if overrides.BatchSize != 0 {
		cfg.BatchSize = overrides.BatchSize
	}
	if overrides.Depth != 0 {
		cfg.Depth = overrides.Depth
	}
	if overrides.FDR != 0 {
		cfg.FDR = overrides.FDR
	}
	if overrides.CalibrationModel != "" {
		cfg.CalibrationModel = overrides.CalibrationModel
	}
	if overrides.ConfidenceModel != "" {
		cfg.ConfidenceModel = overrides.ConfidenceModel
	}
	// bool override wins (defaults false if caller didn't set)
	cfg.DryRun = overrides.DryRun || cfg.DryRun

	prompts, err := promptpack.Load()
	if err != nil {
		panic(err)
	}

	gw := ports.Gateway
	if gw == nil {
		gw = newGateway(deps, cfg)
	}

	svc := service.New(ports.Catalog, ports.Cache, gw, prompts)

	m := &Module{deps: deps, opts: cfg}
	m.ports = Ports{Runner: svc}
	return m
}

// Opts returns the merged module options for the CLI to build run Options from
func (m *Module) Opts() Options { return m.opts }

// Name satisfies modkit.Module
func (m *Module) Name() string { return "classify" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// newGateway builds the provider client from SERVICE_LLM_* config
// Batched runs get a completion budget of one verdict line per user unless
// MAX_TOKENS pins it explicitly
func newGateway(deps modkit.Deps, cfg Options) domain.GatewayPort {
	lc := deps.Cfg.Prefix("SERVICE_LLM_")

	maxTokens := lc.MayInt("MAX_TOKENS", 0)
	if maxTokens <= 0 && cfg.Detector == string(domain.DetectorBatched) {
		maxTokens = 32 + 16*cfg.BatchSize
	}

	return llm.NewClient(llm.Options{
		BaseURL:    lc.MayString("BASE_URL", ""),
		APIKey:     lc.MayString("API_KEY", ""),
		Timeout:    lc.MayDuration("TIMEOUT", 0),
		MaxRetries: lc.MayInt("MAX_RETRIES", 0),
		RetryBase:  lc.MayDuration("RETRY_BASE", 0),
		MaxTokens:  maxTokens,
	})
}
