package testkit

import (
	"sync"
	"testing"
)

// one lock shared by every test that opts into Serial
var serialMu sync.Mutex

// Swap replaces *target until the test finishes, then restores the original
// Works on any assignable seam: a clock field like Service.now, a package
// var, a plain value
func Swap[T any](t *testing.T, target *T, replacement T) {
	t.Helper()
	saved := *target
	*target = replacement
	t.Cleanup(func() { *target = saved })
}

// Serial holds a process-wide lock for the rest of the test so tests that
// mutate shared seams cannot interleave
func Serial(t *testing.T) {
	t.Helper()
	serialMu.Lock()
	t.Cleanup(serialMu.Unlock)
}
