package domain

import (
	"context"

	datadom "bothunt/internal/services/datasets/domain"
	runsdom "bothunt/internal/services/runs/domain"
)

// GatewayPort issues one prompt exchange against the model provider
type GatewayPort interface {
	// Classify sends system+user for model and returns the raw reply text
	Classify(ctx context.Context, system, user, model string) (string, error)
}

// RunnerPort is the external port for the classification engine
type RunnerPort interface {
	// Run classifies every pending unit for opts and writes the artifact.
	// On abort the cache keeps all progress made so far
	Run(ctx context.Context, opts Options) (Outcome, error)
}

// Ports are dependencies injected into the classify module
type Ports struct {
	Catalog datadom.CatalogPort // required
	Cache   runsdom.CachePort   // required
	Gateway GatewayPort         // required unless every run is a dry run
}
