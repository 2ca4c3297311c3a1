// Package domain defines the core types and interfaces for the classify service
package domain

import (
	"strings"
	"time"

	perr "bothunt/internal/platform/errors"
)

// Detector selects one of the classification strategies
type Detector string

const (
	// DetectorSinglePass issues one verdict call per user
	DetectorSinglePass Detector = "single-pass"
	// DetectorBatched classifies BatchSize users per call
	DetectorBatched Detector = "batched"
	// DetectorRecursive filters toward bot: biased rounds drop confident
	// humans, the final unbiased round names the bots
	DetectorRecursive Detector = "recursive"
	// DetectorInverse filters toward human: biased rounds trust BOT
	// verdicts immediately, the final unbiased round sweeps the remainder
	DetectorInverse Detector = "inverse-recursive"
	// DetectorStatistical is a single pass plus FDR-calibrated demotion of
	// the least confident suspects
	DetectorStatistical Detector = "statistical-correction"
)

// Detectors lists every strategy in flag-help order
func Detectors() []Detector {
	return []Detector{
		DetectorSinglePass,
		DetectorBatched,
		DetectorRecursive,
		DetectorInverse,
		DetectorStatistical,
	}
}

// String returns the flag spelling
func (d Detector) String() string { return string(d) }

// ParseDetector maps a flag value onto a Detector
func ParseDetector(s string) (Detector, error) {
	d := Detector(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Detectors() {
		if d == known {
			return d, nil
		}
	}
	return "", perr.InvalidArgf("unknown detector %q (want one of %v)", s, Detectors())
}

// Dispatch selects how calls inside one pass are issued
type Dispatch string

const (
	// DispatchPool runs a bounded worker pool of Workers goroutines
	DispatchPool Dispatch = "pool"
	// DispatchStaggered launches every call at once, call i sleeping
	// i*Delay before issuing its request
	DispatchStaggered Dispatch = "staggered"
)

// ParseDispatch maps a flag value onto a Dispatch
func ParseDispatch(s string) (Dispatch, error) {
	switch d := Dispatch(strings.ToLower(strings.TrimSpace(s))); d {
	case DispatchPool, DispatchStaggered:
		return d, nil
	}
	return "", perr.InvalidArgf("unknown dispatch %q (want pool or staggered)", s)
}

// Options configures one classification run
// Zero values fall back to engine defaults; Resume names an existing run
// slug instead of creating a new record
type Options struct {
	Detector Detector
	Model    string
	Datasets []int
	Resume   string

	Workers  int
	Delay    time.Duration
	Dispatch Dispatch

	BatchSize int
	Depth     int

	FDR              float64
	CalibrationModel string
	ConfidenceModel  string

	DryRun bool

	// OnProgress, when set, receives a tick after every resolved unit
	OnProgress func(Progress)
}

// Progress is one engine tick
// Done/Total count units within the current pass; Round is the 0-based
// round index for recursive strategies and 0 elsewhere; Rounds is the
// completed-round history, oldest first
type Progress struct {
	Done   int
	Total  int
	Round  int
	Rounds []RoundStat
}

// RoundStat summarizes one completed recursive round
// The final unbiased round carries index Depth. Removed counts users the
// round filtered out of the pool, Kept the survivors
type RoundStat struct {
	Round   int
	PoolIn  int
	Removed int
	Kept    int
}

// Outcome is what a finished run reports back to the caller
type Outcome struct {
	Slug     string
	RunPath  string
	Artifact string
	Bots     []string
	Total    int
	Rounds   []RoundStat
	DryRun   bool
}
