// Package verdict parses provider replies into bot or human labels.
//
// Parsing never fails. Single-verdict replies map to HUMAN unless they open
// with BOT, confidence replies fall back to a neutral 50, and batch replies
// recover a verdict for every listed user via ID-prefix lines first and
// positional token order second. The positional fallback is lossy: when a
// reply drops lines or reorders users it can misattribute verdicts, and users
// with no matchable token at all default to HUMAN
package verdict

import (
	"strconv"
	"strings"

	"bothunt/internal/core/textnorm"
)

// Verdict is a binary classification label
type Verdict int

const (
	// Human is the default label and the conservative fallback
	Human Verdict = iota
	// Bot marks an account flagged as automated
	Bot
)

// String returns the lowercase label used in logs
func (v Verdict) String() string {
	if v == Bot {
		return "bot"
	}
	return "human"
}

// Parse maps a raw single-user reply to a verdict
// The reply is cleaned, trimmed and uppercased; anything not starting with
// BOT counts as HUMAN
func Parse(raw string) Verdict {
	s := strings.ToUpper(strings.TrimSpace(textnorm.Clean(raw)))
	if strings.HasPrefix(s, "BOT") {
		return Bot
	}
	return Human
}

// ParseConfidence extracts the first integer in raw clamped to [0,100]
// A reply with no integer at all yields the neutral 50
func ParseConfidence(raw string) int {
	s := textnorm.Clean(raw)
	for i := 0; i < len(s); i++ {
		c := s[i]
		neg := c == '-' && i+1 < len(s) && isDigit(s[i+1])
		if !isDigit(c) && !neg {
			continue
		}
		j := i
		if neg {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		n, err := strconv.Atoi(s[i:k])
		switch {
		case err != nil && neg:
			return 0
		case err != nil:
			return 100 // digit run too long for int, clamp high
		case n < 0:
			return 0
		case n > 100:
			return 100
		}
		return n
	}
	return 50
}

// ParseBatch recovers one verdict per id from a multi-line batch reply
//
// Pass 1 matches reply lines that start with a known user ID (after any list
// markers) and carry a BOT or HUMAN token. Pass 2 zips the BOT/HUMAN tokens
// of the remaining lines, in reply order, against the still-unmatched ids in
// their prompt order. Ids left over after both passes default to HUMAN
func ParseBatch(raw string, ids []string) map[string]Verdict {
	out := make(map[string]Verdict, len(ids))
	assigned := make(map[string]bool, len(ids))

	lines := strings.Split(textnorm.Clean(raw), "\n")
	usedLine := make([]bool, len(lines))

	// Pass 1: ID-prefix lines
	for li, line := range lines {
		body := trimListMarker(line)
		for _, id := range ids {
			if assigned[id] || !hasIDPrefix(body, id) {
				continue
			}
			v, ok := firstToken(body[len(id):])
			if !ok {
				continue
			}
			out[id] = v
			assigned[id] = true
			usedLine[li] = true
			break
		}
	}

	// Pass 2: positional tokens from unconsumed lines, in prompt order
	var tokens []Verdict
	for li, line := range lines {
		if usedLine[li] {
			continue
		}
		rest := line
		for {
			v, ok := firstToken(rest)
			if !ok {
				break
			}
			tokens = append(tokens, v)
			rest = afterFirstToken(rest)
		}
	}
	ti := 0
	for _, id := range ids {
		if assigned[id] {
			continue
		}
		if ti < len(tokens) {
			out[id] = tokens[ti]
			ti++
		} else {
			out[id] = Human
		}
		assigned[id] = true
	}

	return out
}

// trimListMarker strips leading enumeration noise such as "3. " or "- "
func trimListMarker(line string) string {
	s := strings.TrimLeft(line, " \t")
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		return strings.TrimLeft(s[i+1:], " \t")
	}
	return strings.TrimLeft(s, "-* \t")
}

// hasIDPrefix reports whether body begins with id at a token boundary
func hasIDPrefix(body, id string) bool {
	if id == "" || !strings.HasPrefix(body, id) {
		return false
	}
	if len(body) == len(id) {
		return true
	}
	c := body[len(id)]
	return !isDigit(c) && !isLetter(c)
}

// firstToken finds the first standalone BOT or HUMAN word in s
func firstToken(s string) (Verdict, bool) {
	u := strings.ToUpper(s)
	for i := 0; i < len(u); i++ {
		if isLetter(u[i]) {
			j := i
			for j < len(u) && isLetter(u[j]) {
				j++
			}
			switch u[i:j] {
			case "BOT":
				return Bot, true
			case "HUMAN":
				return Human, true
			}
			i = j
		}
	}
	return Human, false
}

// afterFirstToken returns the suffix of s following its first BOT/HUMAN word
func afterFirstToken(s string) string {
	u := strings.ToUpper(s)
	for i := 0; i < len(u); i++ {
		if isLetter(u[i]) {
			j := i
			for j < len(u) && isLetter(u[j]) {
				j++
			}
			if w := u[i:j]; w == "BOT" || w == "HUMAN" {
				return s[j:]
			}
			i = j
		}
	}
	return ""
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
