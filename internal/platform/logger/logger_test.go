package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

// sink captures everything the process-wide root logger writes
// Init is once-guarded, so the whole package shares this buffer
var sink bytes.Buffer

// bootLogger installs the JSON root writing to sink. Idempotent, so each
// output test calls it and file ordering stays irrelevant
func bootLogger() {
	Init(Options{
		Level:        "debug",
		Format:       "json",
		Service:      "bothunt-test",
		StaticFields: map[string]string{"build": "deadbeef"},
		Writer:       &sink,
	})
}

// logged runs fn and decodes the last JSON event it wrote
func logged(t *testing.T, fn func()) map[string]any {
	t.Helper()
	bootLogger()
	mark := sink.Len()
	fn()
	tail := bytes.TrimSpace(sink.Bytes()[mark:])
	if len(tail) == 0 {
		t.Fatal("nothing logged")
	}
	lines := bytes.Split(tail, []byte("\n"))
	var ev map[string]any
	if err := json.Unmarshal(lines[len(lines)-1], &ev); err != nil {
		t.Fatalf("log line is not json: %v in %q", err, tail)
	}
	return ev
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"trace", "trace", "trace"},
		{"debug", "debug", "debug"},
		{"info", "info", "info"},
		{"warn", "warn", "warn"},
		{"long form folds to warn", "warning", "warn"},
		{"error", "error", "error"},
		{"fatal", "fatal", "fatal"},
		{"panic", "panic", "panic"},
		{"empty lands on debug", "", "debug"},
		{"junk lands on debug", "   nonsense   ", "debug"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseLevel(tc.in).String(); !strings.EqualFold(got, tc.want) {
				t.Fatalf("parseLevel(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestInit_OnlyFirstCallWins(t *testing.T) {
	bootLogger()

	var second bytes.Buffer
	Init(Options{Level: "error", Format: "json", Writer: &second})

	ev := logged(t, func() { Get().Info().Msg("still the first sink") })
	if ev["message"] != "still the first sink" {
		t.Fatalf("message = %v", ev["message"])
	}
	if second.Len() != 0 {
		t.Fatalf("second Init replaced the root: %s", second.String())
	}
}

func TestRootCarriesStaticFields(t *testing.T) {
	ev := logged(t, func() { Get().Info().Str("k", "v").Msg("fields") })

	if ev["service"] != "bothunt-test" {
		t.Fatalf("service = %v", ev["service"])
	}
	if ev["build"] != "deadbeef" {
		t.Fatalf("build = %v", ev["build"])
	}
	if ev["k"] != "v" || ev["level"] != "info" {
		t.Fatalf("event fields wrong: %v", ev)
	}
	if _, ok := ev["go_version"]; !ok {
		t.Fatalf("go_version missing: %v", ev)
	}
}

func TestNamed_TagsComponent(t *testing.T) {
	ev := logged(t, func() { Named("gateway").Info().Msg("from child") })
	if ev["component"] != "gateway" {
		t.Fatalf("component = %v", ev["component"])
	}

	// the shared root was booted without a component
	ev = logged(t, func() { Get().Info().Msg("from root") })
	if _, ok := ev["component"]; ok {
		t.Fatalf("root should carry no component: %v", ev)
	}

	ev = logged(t, func() { Named("").Info().Msg("anon child") })
	if _, ok := ev["component"]; ok {
		t.Fatalf("Named(\"\") should be the bare root: %v", ev)
	}
}

func TestWithRun_ThreadsThroughContext(t *testing.T) {
	ctx := WithRun(context.Background(), "2026-03-01T10-00-00Z-0badcafe", "recursive")
	ev := logged(t, func() { C(ctx).Info().Msg("round start") })

	if ev["run"] != "2026-03-01T10-00-00Z-0badcafe" {
		t.Fatalf("run = %v", ev["run"])
	}
	if ev["detector"] != "recursive" {
		t.Fatalf("detector = %v", ev["detector"])
	}
}

func TestC_BackgroundStaysBare(t *testing.T) {
	ev := logged(t, func() { C(context.Background()).Info().Msg("no run") })
	if _, ok := ev["run"]; ok {
		t.Fatalf("unexpected run field: %v", ev)
	}
	if _, ok := ev["detector"]; ok {
		t.Fatalf("unexpected detector field: %v", ev)
	}
}

func TestWithRun_EmptyValuesStampNothing(t *testing.T) {
	ctx := WithRun(context.Background(), "", "")
	ev := logged(t, func() { C(ctx).Info().Msg("blank run") })
	if _, ok := ev["run"]; ok {
		t.Fatalf("empty run should not stamp ctx: %v", ev)
	}
}

func TestFromEnv_ReadsLogVars(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("LOG_SERVICE", "bothunt")
	t.Setenv("LOG_COMPONENT", "cli")
	t.Setenv("LOG_CALLER", "yes")
	t.Setenv("LOG_SAMPLE_EVERY", "5")

	got := FromEnv()
	if got.Level != "warn" || got.Format != "json" {
		t.Fatalf("level/format = %q/%q", got.Level, got.Format)
	}
	if got.Service != "bothunt" || got.Component != "cli" {
		t.Fatalf("service/component = %q/%q", got.Service, got.Component)
	}
	if !got.WithCaller || got.SampleEvery != 5 {
		t.Fatalf("caller/sample = %v/%d", got.WithCaller, got.SampleEvery)
	}
}

func TestFromEnv_EmptyEnvFallsBack(t *testing.T) {
	for _, k := range []string{
		"LOG_LEVEL", "LOG_FORMAT", "LOG_SERVICE",
		"LOG_COMPONENT", "LOG_CALLER", "LOG_SAMPLE_EVERY",
	} {
		t.Setenv(k, "")
	}

	got := FromEnv()
	if got.Level != "debug" || got.Format != "console" {
		t.Fatalf("defaults = %q/%q, want debug/console", got.Level, got.Format)
	}
	if got.WithCaller || got.SampleEvery != 0 {
		t.Fatalf("defaults caller/sample = %v/%d", got.WithCaller, got.SampleEvery)
	}
}
