package time

import (
	"testing"
	"time"
)

func TestSlugRoundTrip(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 2, 14, 9, 30, 5, 0, time.UTC)
	slug := Slug(at)
	if slug != "2026-02-14T09-30-05Z" {
		t.Fatalf("Slug = %q", slug)
	}
	back, err := ParseSlug(slug)
	if err != nil {
		t.Fatalf("ParseSlug: %v", err)
	}
	if !back.Equal(at) {
		t.Fatalf("round trip = %v, want %v", back, at)
	}

	// non-UTC inputs normalize to UTC
	est := time.FixedZone("EST", -5*3600)
	slugEst := Slug(time.Date(2026, 2, 14, 4, 30, 5, 0, est))
	if slugEst != slug {
		t.Fatalf("Slug should normalize to UTC: %q vs %q", slugEst, slug)
	}

	// later timestamps sort later as strings
	later := Slug(at.Add(time.Hour))
	if !(slug < later) {
		t.Fatalf("slug ordering broken: %q !< %q", slug, later)
	}
}
