package schedule

import (
	"strings"
	"testing"
	"time"
)

func TestNormalizeNextRunEmpty(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 10, 18, 45, 12, 0, time.Local)

	got, canonical, err := NormalizeNextRun("", "daily", now)
	if err != nil {
		t.Fatalf("NormalizeNextRun error: %v", err)
	}
	if !got.After(now) {
		t.Fatalf("empty next_run should land in the future, got %v", got)
	}
	if got.Hour() != 7 || got.Minute() != 0 || got.Second() != 0 {
		t.Fatalf("empty next_run should anchor to 07:00:00, got %v", got)
	}
	if canonical != got.Format(Canonical) {
		t.Fatalf("canonical mismatch: %q", canonical)
	}
}

func TestNormalizeNextRunNow(t *testing.T) {
	t.Parallel()
	now := time.Now()

	for _, raw := range []string{"now", "Now", "NOW", "  now  "} {
		got, _, err := NormalizeNextRun(raw, "weekly", now)
		if err != nil {
			t.Fatalf("NormalizeNextRun(%q) error: %v", raw, err)
		}
		if !got.Equal(now) {
			t.Fatalf("NormalizeNextRun(%q) = %v, want %v", raw, got, now)
		}
	}
}

func TestNormalizeNextRunDateOnly(t *testing.T) {
	t.Parallel()
	now := time.Now()

	got, canonical, err := NormalizeNextRun("2025-01-01", "monthly", now)
	if err != nil {
		t.Fatalf("NormalizeNextRun error: %v", err)
	}
	want := time.Date(2025, 1, 1, 7, 0, 0, 0, now.Location())
	if !got.Equal(want) {
		t.Fatalf("date-only = %v, want %v", got, want)
	}
	if !strings.HasPrefix(canonical, "2025-01-01T07:00:00") {
		t.Fatalf("canonical = %q", canonical)
	}
}

func TestNormalizeNextRunVariants(t *testing.T) {
	t.Parallel()
	now := time.Now()

	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{name: "no seconds", raw: "2025-06-01T10:30", want: time.Date(2025, 6, 1, 10, 30, 0, 0, now.Location())},
		{name: "space separator", raw: "2025-06-01 10:30:15", want: time.Date(2025, 6, 1, 10, 30, 15, 0, now.Location())},
		{name: "full naive", raw: "2025-06-01T10:30:15", want: time.Date(2025, 6, 1, 10, 30, 15, 0, now.Location())},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := NormalizeNextRun(tt.raw, "daily", now)
			if err != nil {
				t.Fatalf("NormalizeNextRun(%q) error: %v", tt.raw, err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("NormalizeNextRun(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeNextRunIdempotent(t *testing.T) {
	t.Parallel()
	now := time.Now()

	canonicalIn := time.Date(2025, 4, 2, 7, 0, 0, 0, now.Location()).Format(Canonical)
	_, canonicalOut, err := NormalizeNextRun(canonicalIn, "daily", now)
	if err != nil {
		t.Fatalf("NormalizeNextRun error: %v", err)
	}
	if canonicalOut != canonicalIn {
		t.Fatalf("canonical input changed: %q -> %q", canonicalIn, canonicalOut)
	}
}

func TestNormalizeNextRunUnparseable(t *testing.T) {
	t.Parallel()
	if _, _, err := NormalizeNextRun("next tuesday-ish", "daily", time.Now()); err == nil {
		t.Fatal("expected error for unparseable next_run")
	}
}
