// Package time formats the run slug timestamps
package time

import "time"

// SlugLayout is the filename-safe UTC timestamp layout used for run slugs
// Colons are swapped for dashes so slugs work on every filesystem
const SlugLayout = "2006-01-02T15-04-05Z"

// Slug formats t as a filename-safe UTC timestamp
// Lexicographic order on slugs matches chronological order
func Slug(t time.Time) string {
	return t.UTC().Format(SlugLayout)
}

// ParseSlug parses a slug timestamp back into a UTC time
func ParseSlug(s string) (time.Time, error) {
	return time.Parse(SlugLayout, s)
}
