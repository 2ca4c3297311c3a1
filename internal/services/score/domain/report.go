package domain

import (
	"fmt"
	"strconv"
	"strings"

	"bothunt/internal/core/prompt"
	pstr "bothunt/internal/platform/strings"
	datadom "bothunt/internal/services/datasets/domain"
)

// Render produces the accuracy report document
// The structure is fixed: header block, counts, per-dataset rows, score
// lines, then the misclassified-user listings. Sections always appear, so
// two reports diff cleanly line by line
func Render(r Report) string {
	var b strings.Builder
	m := r.Combined

	b.WriteString("--- Run accuracy ---\n")
	b.WriteString("Run file: " + r.RunFile + "\n")
	b.WriteString("Datasets: " + pstr.JoinInts(r.Datasets, ", ") + "\n")
	b.WriteString("Total users: " + strconv.Itoa(m.Total) + "\n")
	b.WriteString("\n")

	b.WriteString("Counts:\n")
	fmt.Fprintf(&b, "  Correct (TP + TN): %d  (%.2f%%)\n", m.TP+m.TN, pctOf(m.TP+m.TN, m.Total))
	fmt.Fprintf(&b, "  False Positives:   %d  (%.2f%%)\n", m.FP, pctOf(m.FP, m.Total))
	fmt.Fprintf(&b, "  False Negatives:   %d  (%.2f%%)\n", m.FN, pctOf(m.FN, m.Total))
	b.WriteString("\n")

	b.WriteString("Per dataset:\n")
	for _, dm := range r.PerDataset {
		b.WriteString("  " + dm.Metrics.Line("dataset "+strconv.Itoa(dm.DatasetID)) + "\n")
	}
	b.WriteString("  " + m.Line("combined") + "\n")
	b.WriteString("\n")

	fmt.Fprintf(&b, "Score (+4 TP, -1 FN, -2 FP): %d\n", m.Score)
	fmt.Fprintf(&b, "Max score (every bot caught, none falsely accused): %d\n", m.MaxScore)
	fmt.Fprintf(&b, "Percent of max score: %.2f%%\n", m.PctMax)
	b.WriteString("\n")

	b.WriteString("False positives (wrongly flagged humans):\n")
	writeUsers(&b, r.FalsePositives)
	b.WriteString("\n")
	b.WriteString("False negatives (missed bots):\n")
	writeUsers(&b, r.FalseNegatives)

	return b.String()
}

func pctOf(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(part) / float64(total)
}

// writeUsers renders each user as the prompt-shaped profile block
func writeUsers(b *strings.Builder, users []datadom.User) {
	if len(users) == 0 {
		b.WriteString("\n(none)\n")
		return
	}
	for _, u := range users {
		b.WriteString("\n")
		b.WriteString(prompt.Fields(prompt.Profile{
			UserID:      u.ID,
			Username:    u.Username,
			Name:        u.Name,
			Description: u.Description,
			Location:    u.Location,
			TweetCount:  u.TweetCount,
			ZScore:      u.ZScore,
		}))
		b.WriteString("\n")
	}
}
