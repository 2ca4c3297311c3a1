package domain

import "context"

// CachePort creates, resumes and lists run cache records
type CachePort interface {
	// Create starts a new run with a fresh collision-free slug and persists
	// the empty record immediately
	Create(ctx context.Context, detector, model string, datasets []int, totalExpected int) (ActivePort, error)

	// Load resumes the record for slug; unreadable or unparseable records
	// fail with a corrupt-cache error
	Load(ctx context.Context, slug string) (ActivePort, error)

	// ListIncomplete returns unfinished runs newest first, skipping
	// unparseable records with a warning
	ListIncomplete(ctx context.Context) ([]Summary, error)

	// List returns every run newest first
	List(ctx context.Context) ([]Summary, error)
}

// ActivePort is one open run record
// WriteResult is safe for concurrent workers on disjoint keys
type ActivePort interface {
	Slug() string
	Path() string

	// Snapshot returns a copy of the current record
	Snapshot() Record

	// Lookup returns the cached verdict for key
	Lookup(key string) (bot bool, ok bool)

	// WriteResult stores the verdict in memory, then best-effort persists
	// the full record; a contended lock skips the flush and a later write
	// recovers it
	WriteResult(ctx context.Context, key string, bot bool) error

	// SetTotalExpected adjusts the completion bar and persists
	SetTotalExpected(ctx context.Context, n int) error

	// WriteArtifact renders and atomically writes the run artifact
	WriteArtifact(ctx context.Context, hdr Header, botIDs []string) (string, error)
}

// ArtifactPort reads artifacts back and persists scorer reports
type ArtifactPort interface {
	// ReadArtifact loads and parses an artifact by path
	ReadArtifact(ctx context.Context, path string) (Run, error)

	// SaveReport writes text next to the run, keyed by the artifact stem
	// plus ".accuracy.txt"
	SaveReport(ctx context.Context, runPath, text string) (string, error)
}
