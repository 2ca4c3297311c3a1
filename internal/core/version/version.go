// Package version exposes build metadata stamped in at link time.
package version

// BuildInfo identifies one build of the engine
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// The release pipeline overrides these, for example
// -ldflags "-X 'bothunt/internal/core/version.version=v0.1.0'
// -X 'bothunt/internal/core/version.commit=abcd123'
// -X 'bothunt/internal/core/version.date=2026-02-14'"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info reports the stamped build metadata
func Info() BuildInfo {
	return BuildInfo{
		Service: "bothunt",
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}
