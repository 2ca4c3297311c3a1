// Package strings provides the int-list and text helpers shared across services
package strings

import (
	"strconv"
	std "strings"
)

// JoinInts renders ints as "30, 31, 32" style lists
func JoinInts(ns []int, sep string) string {
	if len(ns) == 0 {
		return ""
	}
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return std.Join(parts, sep)
}

// ParseInts parses a comma separated int list like "30, 31,32"
// Blank chunks are skipped; a non-numeric chunk fails the whole parse
func ParseInts(s string) ([]int, error) {
	var out []int
	for _, chunk := range std.Split(s, ",") {
		chunk = std.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		n, err := strconv.Atoi(chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// Truncate shortens s to at most n runes, appending "..." when cut
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
