package strings

import "testing"

func TestJoinInts(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   []int
		sep  string
		want string
	}{
		{[]int{30, 31, 32}, ", ", "30, 31, 32"},
		{[]int{7}, ", ", "7"},
		{[]int{1, 2}, "_", "1_2"},
		{nil, ", ", ""},
	}
	for _, c := range cases {
		if got := JoinInts(c.in, c.sep); got != c.want {
			t.Errorf("JoinInts(%v,%q)=%q want %q", c.in, c.sep, got, c.want)
		}
	}
}

func TestParseInts(t *testing.T) {
	t.Parallel()

	got, err := ParseInts(" 30, 31,32 ,")
	if err != nil {
		t.Fatalf("ParseInts: %v", err)
	}
	if len(got) != 3 || got[0] != 30 || got[1] != 31 || got[2] != 32 {
		t.Fatalf("ParseInts = %v", got)
	}

	// blank input yields no ids and no error
	if got, err := ParseInts("  "); err != nil || got != nil {
		t.Fatalf("ParseInts(blank) = %v, %v", got, err)
	}

	// any non-numeric chunk fails the parse
	if _, err := ParseInts("30, x"); err == nil {
		t.Fatalf("ParseInts should fail on non-numeric chunk")
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		s    string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 5, "hello..."},
		{"héllo wörld", 3, "hél..."}, // rune-aware
		{"hello", 0, ""},
	}
	for _, c := range cases {
		if got := Truncate(c.s, c.n); got != c.want {
			t.Errorf("Truncate(%q,%d)=%q want %q", c.s, c.n, got, c.want)
		}
	}
}
