// Package module implements the score module
package module

import (
	"bothunt/internal/modkit"
	"bothunt/internal/services/score/domain"
	"bothunt/internal/services/score/service"
)

// Ports exposed by the score module
type Ports struct {
	Scorer domain.ScorerPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new score module
// Reader and Artifacts ports must be injected with WithPorts
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("score"),
	}, opts...)...)

	// Basic guardrails against incorrect wiring
	ports, ok := b.Ports.(domain.Ports)
	if !ok {
		panic("score module: expected WithPorts(score/domain.Ports)")
	}
	if ports.Reader == nil || ports.Artifacts == nil {
		panic("score module: Ports missing Reader or Artifacts")
	}

	svc := service.New(ports.Reader, ports.Artifacts)

	m := &Module{deps: deps}
	m.ports = Ports{Scorer: svc}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "score" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
