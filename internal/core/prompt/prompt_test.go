package prompt

import (
	"strings"
	"testing"
)

func TestUser(t *testing.T) {
	p := Profile{
		UserID:      "111",
		Username:    "gm_alice",
		Name:        "Alice",
		Description: "",
		Location:    "Lagos",
		TweetCount:  420,
		ZScore:      1.5,
		Posts: []Post{
			{CreatedAt: "2026-01-02T03:04:05.000Z", ID: "90001", Lang: "en", Text: "gm frens"},
			{CreatedAt: "2026-01-03T03:04:05.000Z", ID: "90002", Lang: "en", Text: "wagmi"},
		},
	}

	want := "User ID: 111\n" +
		"Username: gm_alice\n" +
		"Name: Alice\n" +
		"Description: (none)\n" +
		"Location: Lagos\n" +
		"Tweet count: 420\n" +
		"Z-score (posting activity deviation from average): 1.5\n" +
		"\n" +
		"Posts:\n" +
		"[2026-01-02T03:04:05.000Z] [id:90001] [lang:en] gm frens\n" +
		"[2026-01-03T03:04:05.000Z] [id:90002] [lang:en] wagmi"

	if got := User(p); got != want {
		t.Fatalf("User() = %q, want %q", got, want)
	}
}

func TestUser_NoPosts(t *testing.T) {
	p := Profile{UserID: "222", Username: "bob", Name: "Bob", TweetCount: 3}
	got := User(p)
	if !strings.HasSuffix(got, "\nPosts:\n(no posts)") {
		t.Fatalf("User() without posts = %q, want (no posts) tail", got)
	}
	if !strings.Contains(got, "Description: (none)\n") {
		t.Fatalf("empty description should render (none): %q", got)
	}
}

func TestFormatZ(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		out  string
	}{
		{name: "fraction", in: 1.5, out: "1.5"},
		{name: "integral keeps point zero", in: 2, out: "2.0"},
		{name: "zero", in: 0, out: "0.0"},
		{name: "negative", in: -0.25, out: "-0.25"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatZ(tc.in); got != tc.out {
				t.Fatalf("formatZ(%v) = %q, want %q", tc.in, got, tc.out)
			}
		})
	}
}

func TestBatch(t *testing.T) {
	ps := []Profile{
		{UserID: "111", Username: "a", Name: "A"},
		{UserID: "222", Username: "b", Name: "B"},
		{UserID: "333", Username: "c", Name: "C"},
	}
	got := Batch(ps)

	if n := strings.Count(got, "\n\n---\n\n"); n != 2 {
		t.Fatalf("Batch() has %d separators, want 2", n)
	}
	// Blocks keep prompt order
	i1 := strings.Index(got, "User ID: 111")
	i2 := strings.Index(got, "User ID: 222")
	i3 := strings.Index(got, "User ID: 333")
	if !(i1 >= 0 && i1 < i2 && i2 < i3) {
		t.Fatalf("Batch() blocks out of order: %d %d %d", i1, i2, i3)
	}
}
