// Package module implements the runs module
package module

import (
	"bothunt/internal/modkit"
	"bothunt/internal/services/runs/domain"
	"bothunt/internal/services/runs/service"
)

// Ports exposed by the runs module
type Ports struct {
	Cache     domain.CachePort
	Artifacts domain.ArtifactPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new runs module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	_ = modkit.Build(append([]modkit.Option{
		modkit.WithName("runs"),
	}, opts...)...)

	if deps.Files == nil {
		panic("runs module: store files required")
	}

	svc := service.New(deps.Files)

	m := &Module{deps: deps}
	m.ports = Ports{
		Cache:     svc,
		Artifacts: svc,
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "runs" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
