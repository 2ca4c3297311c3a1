package store

// Config locates the data tree
// Empty fields fall back to Root-relative defaults
type Config struct {
	// Root is the base data directory, default "."
	Root string

	// DatasetsDir overrides <root>/datasets
	DatasetsDir string

	// RunsDir overrides <root>/runs
	RunsDir string
}
