package domain

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	perr "bothunt/internal/platform/errors"
	pstr "bothunt/internal/platform/strings"
)

// datasetsRe matches the mandatory first header line, case-insensitive
var datasetsRe = regexp.MustCompile(`(?i)Datasets:\s*([\d\s,]+)`)

// EncodeArtifact renders a run to its on-disk text form
// UTF-8, LF endings: header block, one blank line, one bot ID per line.
// Model names keep their provider prefix and never gain a second one
func EncodeArtifact(r Run) []byte {
	var b strings.Builder

	b.WriteString("Datasets: " + pstr.JoinInts(r.Header.Datasets, ", ") + "\n")
	if r.Header.Detector != "" {
		b.WriteString("Detector: " + r.Header.Detector + "\n")
	}
	if r.Header.Model != "" {
		model := r.Header.Model
		if !strings.Contains(model, "/") {
			model = "openai/" + model
		}
		b.WriteString("Model: " + model + "\n")
	}
	if r.Header.BatchSize > 0 {
		b.WriteString("Batch size: " + strconv.Itoa(r.Header.BatchSize) + "\n")
	}
	if r.Header.Depth > 0 {
		b.WriteString("Depth: " + strconv.Itoa(r.Header.Depth) + "\n")
	}
	b.WriteString("\n")
	for _, id := range r.BotIDs {
		b.WriteString(id + "\n")
	}
	return []byte(b.String())
}

// ParseArtifact reads both artifact generations
//
// Old runs carry a bare "Datasets: 30, 31" first line with IDs from line 2.
// Newer runs carry a full key:value block closed by a blank line. As a
// defensive heuristic for malformed files lacking the blank separator, a
// UUID-shaped or colon-free line also ends the header. Unknown keys are
// ignored; Datasets is mandatory
func ParseArtifact(raw []byte) (Run, error) {
	lines := strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return Run{}, perr.InvalidArgf("artifact is empty")
	}

	var r Run
	bodyAt := len(lines)

	for i, line := range lines {
		t := strings.TrimSpace(line)
		if i == 0 {
			// mandatory Datasets line, matched loosely like the original scorer
			m := datasetsRe.FindStringSubmatch(t)
			if m == nil {
				return Run{}, perr.InvalidArgf("artifact first line has no Datasets list: %q", t)
			}
			ids, err := pstr.ParseInts(m[1])
			if err != nil || len(ids) == 0 {
				return Run{}, perr.InvalidArgf("artifact Datasets list unparseable: %q", t)
			}
			r.Header.Datasets = ids
			continue
		}
		if t == "" {
			bodyAt = i + 1
			break
		}
		if uuid.Validate(t) == nil {
			bodyAt = i
			break
		}
		key, val, ok := strings.Cut(t, ":")
		if !ok {
			// bare ID right after the header, the old format
			bodyAt = i
			break
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "datasets":
			// first line already claimed it; a duplicate is ignored
		case "detector":
			r.Header.Detector = strings.TrimSpace(val)
		case "model":
			r.Header.Model = strings.TrimSpace(val)
		case "batch size":
			r.Header.BatchSize = atoiSafe(val)
		case "depth":
			r.Header.Depth = atoiSafe(val)
		default:
			// unknown header keys are ignored
		}
	}

	for _, line := range lines[min(bodyAt, len(lines)):] {
		if id := strings.TrimSpace(line); id != "" {
			r.BotIDs = append(r.BotIDs, id)
		}
	}
	return r, nil
}

func atoiSafe(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
