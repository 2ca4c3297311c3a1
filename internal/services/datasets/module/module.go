// Package module implements the datasets module
package module

import (
	"bothunt/internal/modkit"
	"bothunt/internal/services/datasets/domain"
	"bothunt/internal/services/datasets/repo"
	"bothunt/internal/services/datasets/service"
)

// Ports exposed by the datasets module
type Ports struct {
	Catalog domain.CatalogPort
	Reader  domain.ReaderPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new datasets module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	_ = modkit.Build(append([]modkit.Option{
		modkit.WithName("datasets"),
	}, opts...)...)

	if deps.Files == nil {
		panic("datasets module: store files required")
	}

	reader := repo.NewFS(deps.Files)
	svc := service.New(reader)

	m := &Module{deps: deps}
	m.ports = Ports{
		Catalog: svc,
		Reader:  reader,
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "datasets" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
