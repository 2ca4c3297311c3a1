// Package domain defines the core types and interfaces for the runs service
package domain

import (
	"sort"
	"strings"
	"time"
)

// Record is the on-disk cache state of one classification run
// Results maps a unit key to its verdict (true = bot). Multi-round
// strategies prefix keys with their round ("round0:", "final:"); single
// pass strategies use bare user IDs
type Record struct {
	Detector      string          `json:"detector"`
	Model         string          `json:"model"`
	Datasets      []int           `json:"datasets"`
	StartedAt     time.Time       `json:"started_at"`
	TotalExpected int             `json:"total_expected"`
	Results       map[string]bool `json:"results"`
}

// Done returns the number of classified units
func (r Record) Done() int { return len(r.Results) }

// Complete reports whether every expected unit has a result
func (r Record) Complete() bool {
	return r.TotalExpected > 0 && len(r.Results) >= r.TotalExpected
}

// BotIDs returns the sorted user IDs whose bare-key verdict is bot
// Round-prefixed keys are ignored: multi-round strategies compute their
// final bot set themselves
func (r Record) BotIDs() []string {
	out := make([]string, 0, len(r.Results))
	for k, bot := range r.Results {
		if bot && !strings.Contains(k, ":") {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Summary is one run as shown by the runs CLI
type Summary struct {
	Slug      string
	Detector  string
	Model     string
	Datasets  []int
	Done      int
	Total     int
	StartedAt time.Time
}

// Complete reports whether the summarized run finished all expected units
func (s Summary) Complete() bool { return s.Total > 0 && s.Done >= s.Total }

// Header is the metadata block of a run artifact
type Header struct {
	Datasets  []int
	Detector  string
	Model     string
	BatchSize int
	Depth     int
}

// Run is a parsed artifact: header plus the predicted bot IDs
type Run struct {
	Header Header
	BotIDs []string
}
