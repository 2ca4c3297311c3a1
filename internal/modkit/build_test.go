package modkit

import (
	"testing"
)

func TestBuild_ZeroOptions(t *testing.T) {
	t.Parallel()

	b := Build()
	if b.Name != "" || b.Ports != nil {
		t.Fatalf("Build() = %+v, want zero Built", b)
	}
}

func TestBuild_FoldsOptionsInOrder(t *testing.T) {
	t.Parallel()

	type cachePorts struct{ Dir string }

	b := Build(
		WithName("runs"),
		WithName("runs-cache"), // later option wins
		WithPorts(cachePorts{Dir: "runs"}),
	)
	if b.Name != "runs-cache" {
		t.Fatalf("Name = %q, want runs-cache", b.Name)
	}
	cp, ok := b.Ports.(cachePorts)
	if !ok || cp.Dir != "runs" {
		t.Fatalf("Ports = %#v, want cachePorts with Dir runs", b.Ports)
	}
}
