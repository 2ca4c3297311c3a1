package service

import (
	"context"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	perr "bothunt/internal/platform/errors"
	"bothunt/internal/services/classify/domain"
)

func TestRun_RecursiveTowardBot(t *testing.T) {
	ctx := context.Background()
	// humans answer HUMAN everywhere, bots answer BOT everywhere
	humans := map[string]bool{"1": true, "3": true}
	h := newHarness(t, accounts("1", "2", "3", "4"), func(c gatewayCall) (string, error) {
		if humans[uidOf(c.user)] {
			return "HUMAN", nil
		}
		return "BOT", nil
	})

	out, err := h.svc.Run(ctx, serial(domain.Options{
		Detector: domain.DetectorRecursive,
		Model:    "m",
		Datasets: []int{30},
		Depth:    2,
	}))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !reflect.DeepEqual(out.Bots, []string{"2", "4"}) {
		t.Fatalf("Bots = %v, want [2 4]", out.Bots)
	}

	want := []domain.RoundStat{
		{Round: 0, PoolIn: 4, Removed: 2, Kept: 2},
		{Round: 1, PoolIn: 2, Removed: 0, Kept: 2},
		{Round: 2, PoolIn: 2, Removed: 0, Kept: 2},
	}
	if !reflect.DeepEqual(out.Rounds, want) {
		t.Fatalf("Rounds = %+v, want %+v", out.Rounds, want)
	}

	// biased rounds ask the strict-human prompt, the final round the
	// unbiased one
	biased, final := 0, 0
	for _, c := range h.gw.recorded() {
		switch c.system {
		case h.prompts.StrictHumanSystem:
			biased++
		case h.prompts.System:
			final++
		default:
			t.Fatal("unexpected system prompt in a toward-bot run")
		}
	}
	if biased != 6 || final != 2 {
		t.Fatalf("calls biased/final = %d/%d, want 6/2", biased, final)
	}

	// every user keyed exactly once per visited round
	rec, err := h.runs.Load(ctx, out.Slug)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	snap := rec.Snapshot()
	wantKeys := []string{
		"round0:1", "round0:2", "round0:3", "round0:4",
		"round1:2", "round1:4",
		"final:2", "final:4",
	}
	if snap.Done() != len(wantKeys) {
		t.Fatalf("cached keys = %d, want %d", snap.Done(), len(wantKeys))
	}
	for _, k := range wantKeys {
		if _, ok := snap.Results[k]; !ok {
			t.Fatalf("missing cache key %q", k)
		}
	}
	if !snap.Complete() || snap.TotalExpected != len(wantKeys) {
		t.Fatalf("TotalExpected = %d, want %d and complete", snap.TotalExpected, len(wantKeys))
	}

	run, err := h.runs.ReadArtifact(ctx, out.Artifact)
	if err != nil {
		t.Fatalf("ReadArtifact: %v", err)
	}
	if run.Header.Depth != 2 {
		t.Fatalf("artifact depth = %d, want 2", run.Header.Depth)
	}
}

func TestRun_RecursiveEmptyPoolExitsEarly(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, accounts("1", "2"), func(c gatewayCall) (string, error) {
		return "HUMAN", nil
	})

	out, err := h.svc.Run(ctx, serial(domain.Options{
		Detector: domain.DetectorRecursive,
		Model:    "m",
		Datasets: []int{30},
		Depth:    5,
	}))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Bots) != 0 {
		t.Fatalf("Bots = %v, want none", out.Bots)
	}
	if h.gw.count() != 2 {
		t.Fatalf("calls = %d, want 2 (round 0 empties the pool)", h.gw.count())
	}
	want := []domain.RoundStat{{Round: 0, PoolIn: 2, Removed: 2, Kept: 0}}
	if !reflect.DeepEqual(out.Rounds, want) {
		t.Fatalf("Rounds = %+v, want %+v", out.Rounds, want)
	}
}

func TestRun_InverseRecursive(t *testing.T) {
	ctx := context.Background()
	// user 2 is an obvious bot caught in a biased round; user 4 only falls
	// in the final unbiased round
	h := newHarness(t, accounts("1", "2", "3", "4"), nil)
	h.gw.reply = func(c gatewayCall) (string, error) {
		id := uidOf(c.user)
		switch c.system {
		case h.prompts.StrictBotSystem:
			if id == "2" {
				return "BOT", nil
			}
			return "HUMAN", nil
		case h.prompts.System:
			if id == "4" {
				return "BOT", nil
			}
			return "HUMAN", nil
		}
		return "", perr.InvalidArgf("unexpected system prompt")
	}

	out, err := h.svc.Run(ctx, serial(domain.Options{
		Detector: domain.DetectorInverse,
		Model:    "m",
		Datasets: []int{30},
		Depth:    2,
	}))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !reflect.DeepEqual(out.Bots, []string{"2", "4"}) {
		t.Fatalf("Bots = %v, want [2 4]", out.Bots)
	}
	want := []domain.RoundStat{
		{Round: 0, PoolIn: 4, Removed: 1, Kept: 3},
		{Round: 1, PoolIn: 3, Removed: 0, Kept: 3},
		{Round: 2, PoolIn: 3, Removed: 1, Kept: 2},
	}
	if !reflect.DeepEqual(out.Rounds, want) {
		t.Fatalf("Rounds = %+v, want %+v", out.Rounds, want)
	}

	// user 2 left the pool in round 0 and is never asked again
	asked := 0
	for _, c := range h.gw.recorded() {
		if uidOf(c.user) == "2" {
			asked++
		}
	}
	if asked != 1 {
		t.Fatalf("user 2 asked %d times, want 1 (trusted BOT leaves the pool)", asked)
	}
}

func TestRun_RecursiveResumeReplaysCachedRounds(t *testing.T) {
	ctx := context.Background()
	humans := map[string]bool{"1": true, "3": true}
	var calls atomic.Int64
	var failAfter atomic.Int64
	failAfter.Store(4) // round 0 completes, round 1 falls over

	h := newHarness(t, accounts("1", "2", "3", "4"), nil)
	h.gw.reply = func(c gatewayCall) (string, error) {
		if calls.Add(1) > failAfter.Load() {
			return "", perr.Unavailablef("provider down")
		}
		if humans[uidOf(c.user)] {
			return "HUMAN", nil
		}
		return "BOT", nil
	}

	opts := serial(domain.Options{
		Detector: domain.DetectorRecursive,
		Model:    "m",
		Datasets: []int{30},
		Depth:    2,
	})

	out, err := h.svc.Run(ctx, opts)
	if !perr.IsCode(err, perr.ErrorCodeRunAborted) {
		t.Fatalf("first run err = %v, want run aborted", err)
	}
	if len(out.Rounds) != 1 {
		t.Fatalf("completed rounds = %d, want 1 before the abort", len(out.Rounds))
	}

	// recovery: the provider is healthy again
	failAfter.Store(1 << 30)
	opts.Resume = out.Slug
	done, err := h.svc.Run(ctx, opts)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}

	if !reflect.DeepEqual(done.Bots, []string{"2", "4"}) {
		t.Fatalf("Bots = %v, want [2 4]", done.Bots)
	}
	// round 0 was fully cached; only round 1 and the final round hit the
	// provider on resume: 2 + 2 calls after the 5 from the first attempt
	if got := calls.Load(); got != 9 {
		t.Fatalf("total provider calls = %d, want 9", got)
	}

	rec, err := h.runs.Load(ctx, done.Slug)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap := rec.Snapshot(); !snap.Complete() || snap.Done() != 8 {
		t.Fatalf("record = %+v, want 8 keys and complete", snap)
	}
}

func TestRun_RecursivePartitionsUniverse(t *testing.T) {
	ctx := context.Background()
	// drop one human per round, leaving a shrinking pool
	drop := map[string]int{"1": 0, "2": 1, "3": 2}
	h := newHarness(t, accounts("1", "2", "3", "4", "5"), nil)
	seen := map[string]int{}
	h.gw.reply = func(c gatewayCall) (string, error) {
		id := uidOf(c.user)
		if c.system == h.prompts.StrictHumanSystem {
			if r, ok := drop[id]; ok && seen[id] >= r {
				return "HUMAN", nil
			}
			seen[id]++
			return "BOT", nil
		}
		return "BOT", nil
	}

	out, err := h.svc.Run(ctx, serial(domain.Options{
		Detector: domain.DetectorRecursive,
		Model:    "m",
		Datasets: []int{30},
		Depth:    3,
	}))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// removals plus the final pool cover the universe exactly once
	removedTotal := 0
	for _, r := range out.Rounds[:len(out.Rounds)-1] {
		removedTotal += r.Removed
	}
	finalRound := out.Rounds[len(out.Rounds)-1]
	if finalRound.Round != 3 {
		t.Fatalf("final round index = %d, want 3", finalRound.Round)
	}
	if removedTotal+finalRound.PoolIn != 5 {
		t.Fatalf("removed %d + final pool %d != universe 5", removedTotal, finalRound.PoolIn)
	}
	poolSizes := []int{}
	for _, r := range out.Rounds {
		poolSizes = append(poolSizes, r.PoolIn)
	}
	for i := 1; i < len(poolSizes); i++ {
		if poolSizes[i] > poolSizes[i-1] {
			t.Fatalf("pool grew between rounds: %v", poolSizes)
		}
	}
	if !reflect.DeepEqual(out.Bots, []string{"4", "5"}) {
		t.Fatalf("Bots = %v, want [4 5]", out.Bots)
	}
}

func TestRoundKeyShapes(t *testing.T) {
	if got := roundKey(0)("42"); got != "round0:42" {
		t.Fatalf("roundKey(0) = %q", got)
	}
	if got := roundKey(7)("42"); got != "round7:42" {
		t.Fatalf("roundKey(7) = %q", got)
	}
	if got := finalKey("42"); got != "final:42" {
		t.Fatalf("finalKey = %q", got)
	}
	if got := bareKey("42"); got != "42" {
		t.Fatalf("bareKey = %q", got)
	}
	if strings.Contains(bareKey("42"), ":") {
		t.Fatal("bare keys must stay colon-free for artifact bookkeeping")
	}
}
