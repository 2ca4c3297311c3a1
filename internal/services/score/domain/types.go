// Package domain defines the core types and interfaces for the score service
package domain

import (
	"fmt"

	datadom "bothunt/internal/services/datasets/domain"
)

// Metrics are the confusion counts and derived scores of one scored slice
// Score weighs a caught bot +4, a missed bot -1 and a wrongly flagged
// human -2; MaxScore is the unreachable ceiling of catching every bot with
// zero false accusations
type Metrics struct {
	Total  int
	Bots   int
	Humans int

	TP int
	TN int
	FP int
	FN int

	Accuracy float64
	Score    int
	MaxScore int
	PctMax   float64
}

// Compute tallies truth against the predicted bot set
// Accuracy and PctMax fall back to zero on empty slices rather than NaN
func Compute(truth map[string]bool, predicted map[string]bool) Metrics {
	var m Metrics
	for id, isBot := range truth {
		m.Total++
		if isBot {
			m.Bots++
			if predicted[id] {
				m.TP++
			} else {
				m.FN++
			}
			continue
		}
		m.Humans++
		if predicted[id] {
			m.FP++
		} else {
			m.TN++
		}
	}

	m.Score = 4*m.TP - m.FN - 2*m.FP
	m.MaxScore = 4 * m.Bots
	if m.Total > 0 {
		m.Accuracy = 100 * float64(m.TP+m.TN) / float64(m.Total)
	}
	if m.MaxScore > 0 {
		m.PctMax = 100 * float64(m.Score) / float64(m.MaxScore)
	}
	return m
}

// Line renders the one-line summary shape shared by per-dataset rows and
// the combined row
func (m Metrics) Line(prefix string) string {
	return fmt.Sprintf(
		"%s: total=%d bots=%d humans=%d | TP=%d TN=%d FP=%d FN=%d | acc=%.2f%% score=%d/%d (%.1f%%)",
		prefix, m.Total, m.Bots, m.Humans, m.TP, m.TN, m.FP, m.FN, m.Accuracy, m.Score, m.MaxScore, m.PctMax,
	)
}

// DatasetMetrics is one shard's breakdown row
// Rows score the global predicted set against the shard's own users, so a
// user carried by several shards counts in each shard's row while combined
// totals count them once
type DatasetMetrics struct {
	DatasetID int
	Metrics   Metrics
}

// Report is everything one scoring pass derived from a run artifact
type Report struct {
	RunFile  string
	Datasets []int

	Combined   Metrics
	PerDataset []DatasetMetrics

	// FalsePositives and FalseNegatives are sorted by user ID
	FalsePositives []datadom.User
	FalseNegatives []datadom.User

	// Warnings carry non-fatal findings (unknown predicted IDs, skipped
	// shards); they are logged, never rendered into the report text
	Warnings []string
}

// Outcome bundles what one scoring pass produced
type Outcome struct {
	Report     Report
	Text       string
	ReportPath string
}
