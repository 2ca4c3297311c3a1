// Package promptpack loads the embedded system prompts the detectors send.
// Prompt text is data, not code; it lives in prompts/*.txt so wording changes
// never touch Go source
package promptpack

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed prompts/*.txt
var embedded embed.FS

// Pack holds one system prompt per detection mode
type Pack struct {
	// System is the unbiased single-user prompt, also used for final rounds
	System string
	// BatchedSystem asks for one "<user id>: BOT|HUMAN" line per user
	BatchedSystem string
	// ConfidenceSystem asks for a single 0-100 bot-confidence integer
	ConfidenceSystem string
	// StrictBotSystem answers BOT only on overwhelming evidence
	StrictBotSystem string
	// StrictHumanSystem answers HUMAN only on overwhelming evidence
	StrictHumanSystem string
}

// Load returns the prompts from the embedded prompts directory.
// A trailing newline added by editors is stripped; otherwise prompt bytes pass
// through untouched
func Load() (*Pack, error) {
	p := &Pack{}
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"system", &p.System},
		{"batched_system", &p.BatchedSystem},
		{"confidence_system", &p.ConfidenceSystem},
		{"strict_bot_system", &p.StrictBotSystem},
		{"strict_human_system", &p.StrictHumanSystem},
	} {
		b, err := embedded.ReadFile("prompts/" + f.name + ".txt")
		if err != nil {
			return nil, fmt.Errorf("promptpack: read %s: %w", f.name, err)
		}
		s := strings.TrimRight(string(b), "\n")
		if s == "" {
			return nil, fmt.Errorf("promptpack: %s.txt is empty", f.name)
		}
		*f.dst = s
	}
	return p, nil
}
