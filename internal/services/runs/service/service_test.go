package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	perr "bothunt/internal/platform/errors"
	"bothunt/internal/platform/store"
	"bothunt/internal/platform/testkit"
	ptime "bothunt/internal/platform/time"
	"bothunt/internal/services/runs/domain"
)

func newFiles(t *testing.T) *store.Files {
	t.Helper()
	f, err := store.Open(store.Config{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	return f
}

func at(t *testing.T, svc *Service, when time.Time) {
	t.Helper()
	testkit.Swap(t, &svc.now, func() time.Time { return when })
}

func TestCreateLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := New(newFiles(t))
	started := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	at(t, svc, started)

	a, err := svc.Create(ctx, "single-pass", "gpt-4.1-mini", []int{30, 31}, 4)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	slug := a.Slug()
	if !strings.HasPrefix(slug, ptime.Slug(started)+"-") {
		t.Fatalf("slug = %q, want prefix %q", slug, ptime.Slug(started)+"-")
	}
	if got, want := len(slug), len(ptime.SlugLayout)+1+8; got != want {
		t.Fatalf("len(slug) = %d, want %d", got, want)
	}
	if ts, err := ptime.ParseSlug(slug[:len(ptime.SlugLayout)]); err != nil || !ts.Equal(started) {
		t.Fatalf("slug timestamp = %v (%v), want %v", ts, err, started)
	}
	if _, err := os.Stat(a.Path()); err != nil {
		t.Fatalf("record not persisted at create: %v", err)
	}

	b, err := svc.Load(ctx, slug)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rec := b.Snapshot()
	if rec.Detector != "single-pass" || rec.Model != "gpt-4.1-mini" || rec.TotalExpected != 4 {
		t.Fatalf("loaded record = %+v", rec)
	}
	if len(rec.Datasets) != 2 || rec.Datasets[0] != 30 || rec.Datasets[1] != 31 {
		t.Fatalf("Datasets = %v, want [30 31]", rec.Datasets)
	}
	if !rec.StartedAt.Equal(started) {
		t.Fatalf("StartedAt = %v, want %v", rec.StartedAt, started)
	}
	if len(rec.Results) != 0 {
		t.Fatalf("new record has %d results", len(rec.Results))
	}
}

func TestLoad_CorruptIsCorruptCache(t *testing.T) {
	ctx := context.Background()
	f := newFiles(t)
	svc := New(f)

	bad := filepath.Join(f.RunsDir(), "2025-07-01T10-00-00Z-deadbeef.json")
	if err := os.WriteFile(bad, []byte("{{{not json"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := svc.Load(ctx, "2025-07-01T10-00-00Z-deadbeef"); !perr.IsCode(err, perr.ErrorCodeCorruptCache) {
		t.Fatalf("Load corrupt = %v, want corrupt cache", err)
	}
	if _, err := svc.Load(ctx, "2025-07-01T10-00-00Z-00000000"); !perr.IsCode(err, perr.ErrorCodeCorruptCache) {
		t.Fatalf("Load missing = %v, want corrupt cache", err)
	}
}

func TestWriteResult_PersistsFullRecord(t *testing.T) {
	ctx := context.Background()
	svc := New(newFiles(t))
	at(t, svc, time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC))

	a, err := svc.Create(ctx, "single-pass", "gpt-4.1-mini", []int{30}, 2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := a.WriteResult(ctx, "111", true); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}
	if err := a.WriteResult(ctx, "222", false); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}

	b, err := svc.Load(ctx, a.Slug())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rec := b.Snapshot()
	if len(rec.Results) != 2 || rec.Results["111"] != true || rec.Results["222"] != false {
		t.Fatalf("persisted results = %v", rec.Results)
	}
	if !rec.Complete() {
		t.Fatal("record should be complete after two results")
	}
}

func TestWriteResult_LockContentionSkipsFlush(t *testing.T) {
	ctx := context.Background()
	f := newFiles(t)
	svc := New(f)
	at(t, svc, time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC))

	a, err := svc.Create(ctx, "single-pass", "gpt-4.1-mini", []int{30}, 2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	release, ok := f.TryLock(a.Path())
	if !ok {
		t.Fatal("test could not take the lock")
	}

	if err := a.WriteResult(ctx, "111", true); err != nil {
		t.Fatalf("WriteResult under contention: %v", err)
	}
	if bot, ok := a.Lookup("111"); !ok || !bot {
		t.Fatalf("Lookup(111) = %v, %v; in-memory record must win", bot, ok)
	}
	stale, err := svc.Load(ctx, a.Slug())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n := len(stale.Snapshot().Results); n != 0 {
		t.Fatalf("on-disk results = %d, want 0 while lock held", n)
	}

	release()

	// next winning write carries the earlier verdict with it
	if err := a.WriteResult(ctx, "222", false); err != nil {
		t.Fatalf("WriteResult after release: %v", err)
	}
	fresh, err := svc.Load(ctx, a.Slug())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rec := fresh.Snapshot()
	if len(rec.Results) != 2 || !rec.Results["111"] {
		t.Fatalf("recovered results = %v", rec.Results)
	}
}

func TestSetTotalExpected_Persists(t *testing.T) {
	ctx := context.Background()
	svc := New(newFiles(t))
	at(t, svc, time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC))

	a, err := svc.Create(ctx, "recursive", "gpt-4.1-mini", []int{30}, 10)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := a.SetTotalExpected(ctx, 17); err != nil {
		t.Fatalf("SetTotalExpected: %v", err)
	}

	b, err := svc.Load(ctx, a.Slug())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := b.Snapshot().TotalExpected; got != 17 {
		t.Fatalf("TotalExpected = %d, want 17", got)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	ctx := context.Background()
	svc := New(newFiles(t))
	at(t, svc, time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC))

	a, err := svc.Create(ctx, "single-pass", "gpt-4.1-mini", []int{30}, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := a.WriteResult(ctx, "111", true); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}

	snap := a.Snapshot()
	snap.Results["999"] = true
	snap.Datasets[0] = 77

	if _, ok := a.Lookup("999"); ok {
		t.Fatal("mutating a snapshot leaked into the live record")
	}
	if got := a.Snapshot().Datasets[0]; got != 30 {
		t.Fatalf("Datasets[0] = %d, want 30", got)
	}
}

func TestList_NewestFirstSkipsUnparseable(t *testing.T) {
	ctx := context.Background()
	f := newFiles(t)
	svc := New(f)

	times := []time.Time{
		time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 7, 3, 10, 0, 0, 0, time.UTC),
	}
	slugs := make([]string, len(times))
	for i, when := range times {
		at(t, svc, when)
		a, err := svc.Create(ctx, "single-pass", "gpt-4.1-mini", []int{30}, 2)
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
		slugs[i] = a.Slug()
	}

	// newest-named file is garbage and must be skipped, not listed or fatal
	garbage := filepath.Join(f.RunsDir(), "2025-07-04T10-00-00Z-deadbeef.json")
	if err := os.WriteFile(garbage, []byte("not json"), 0o644); err != nil {
		t.Fatalf("seed garbage: %v", err)
	}

	got, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("List returned %d runs, want 3", len(got))
	}
	for i, want := range []string{slugs[2], slugs[1], slugs[0]} {
		if got[i].Slug != want {
			t.Fatalf("List[%d] = %q, want %q", i, got[i].Slug, want)
		}
	}
}

func TestListIncomplete_FiltersFinishedRuns(t *testing.T) {
	ctx := context.Background()
	svc := New(newFiles(t))

	at(t, svc, time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC))
	doneRun, err := svc.Create(ctx, "single-pass", "gpt-4.1-mini", []int{30}, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := doneRun.WriteResult(ctx, "111", true); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}

	at(t, svc, time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC))
	openRun, err := svc.Create(ctx, "single-pass", "gpt-4.1-mini", []int{30}, 2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := openRun.WriteResult(ctx, "111", false); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}

	got, err := svc.ListIncomplete(ctx)
	if err != nil {
		t.Fatalf("ListIncomplete: %v", err)
	}
	if len(got) != 1 || got[0].Slug != openRun.Slug() {
		t.Fatalf("ListIncomplete = %+v, want only %q", got, openRun.Slug())
	}
	if got[0].Done != 1 || got[0].Total != 2 {
		t.Fatalf("summary done/total = %d/%d, want 1/2", got[0].Done, got[0].Total)
	}
}

func TestWriteArtifact_RoundTrips(t *testing.T) {
	ctx := context.Background()
	svc := New(newFiles(t))
	at(t, svc, time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC))

	a, err := svc.Create(ctx, "batched", "gpt-4.1-mini", []int{30, 31}, 3)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	hdr := domain.Header{Datasets: []int{30, 31}, Detector: "batched", Model: "gpt-4.1-mini", BatchSize: 10}
	path, err := a.WriteArtifact(ctx, hdr, []string{"111", "333"})
	if err != nil {
		t.Fatalf("WriteArtifact: %v", err)
	}
	if want := filepath.Join(filepath.Dir(a.Path()), a.Slug()+".txt"); path != want {
		t.Fatalf("artifact path = %q, want %q", path, want)
	}

	run, err := svc.ReadArtifact(ctx, path)
	if err != nil {
		t.Fatalf("ReadArtifact: %v", err)
	}
	if run.Header.Model != "openai/gpt-4.1-mini" {
		t.Fatalf("Model = %q, want provider prefix added", run.Header.Model)
	}
	if len(run.BotIDs) != 2 || run.BotIDs[0] != "111" || run.BotIDs[1] != "333" {
		t.Fatalf("BotIDs = %v, want [111 333]", run.BotIDs)
	}
}

func TestReadArtifact_MissingIsNotFound(t *testing.T) {
	svc := New(newFiles(t))
	if _, err := svc.ReadArtifact(context.Background(), "/nope/run.txt"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestSaveReport_NamesByStem(t *testing.T) {
	ctx := context.Background()
	f := newFiles(t)
	svc := New(f)

	runPath := filepath.Join(f.RunsDir(), "2025-07-01T10-00-00Z-abcd1234.txt")
	out, err := svc.SaveReport(ctx, runPath, "--- Run accuracy ---\n")
	if err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	if want := filepath.Join(f.RunsDir(), "2025-07-01T10-00-00Z-abcd1234.accuracy.txt"); out != want {
		t.Fatalf("report path = %q, want %q", out, want)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if string(data) != "--- Run accuracy ---\n" {
		t.Fatalf("report content = %q", data)
	}
}
