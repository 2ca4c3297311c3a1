package testkit

import "testing"

func TestMustPanic_SeesPanic(t *testing.T) {
	t.Parallel()

	MustPanic(t, func() { panic("port not wired") })
}

func TestMustNotPanic_AcceptsQuietFunc(t *testing.T) {
	t.Parallel()

	MustNotPanic(t, func() {})
}

func TestMustContain_FindsNeedle(t *testing.T) {
	t.Parallel()

	report := "run complete: 40 accounts, 12 flagged bots, 2 rounds"
	MustContain(t, report, "12 flagged bots")
}
