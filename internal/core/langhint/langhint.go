// Package langhint provides coarse script detection for post text.
package langhint

import (
	"unicode"
)

// scripts pairs each recognized script with its range table
// Order doubles as the tie-break: on equal counts the earlier entry wins,
// so the specific scripts beat Latin. Runes outside every table count as
// nothing, which keeps mixed emoji/digit text from skewing the tally
var scripts = []struct {
	name  string
	runes *unicode.RangeTable
}{
	{"Hiragana", unicode.Hiragana},
	{"Katakana", unicode.Katakana},
	{"Hangul", unicode.Hangul},
	{"Han", unicode.Han},
	{"Arabic", unicode.Arabic},
	{"Hebrew", unicode.Hebrew},
	{"Thai", unicode.Thai},
	{"Greek", unicode.Greek},
	{"Cyrillic", unicode.Cyrillic},
	{"Georgian", unicode.Georgian},
	{"Armenian", unicode.Armenian},
	{"Devanagari", unicode.Devanagari},
	{"Latin", unicode.Latin},
}

// DetectScript returns the predominant script name for s, or "" when s has no letters
// Shard metadata already carries the language code, so no lang guessing happens here
func DetectScript(s string) string {
	counts := make([]int, len(scripts))
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		for i, sc := range scripts {
			if unicode.In(r, sc.runes) {
				counts[i]++
				break
			}
		}
	}

	best := -1
	for i, n := range counts {
		if n > 0 && (best < 0 || n > counts[best]) {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return scripts[best].name
}

// Distribution tallies DetectScript over texts. Texts without letters are skipped
func Distribution(texts []string) map[string]int {
	out := make(map[string]int)
	for _, t := range texts {
		if s := DetectScript(t); s != "" {
			out[s]++
		}
	}
	return out
}
