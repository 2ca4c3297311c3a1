package domain

import (
	"context"

	datadom "bothunt/internal/services/datasets/domain"
	runsdom "bothunt/internal/services/runs/domain"
)

// ScorerPort grades run artifacts against dataset ground truth
type ScorerPort interface {
	// Score parses the artifact at runPath, computes its report, persists
	// the rendered text next to the run and returns all three.
	// Unknown predicted IDs and missing shards degrade to warnings; only a
	// run with zero loadable shards fails
	Score(ctx context.Context, runPath string) (Outcome, error)
}

// Ports are dependencies injected into the score module
type Ports struct {
	Reader    datadom.ReaderPort   // required
	Artifacts runsdom.ArtifactPort // required
}
