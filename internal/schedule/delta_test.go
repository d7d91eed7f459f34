package schedule

import (
	"testing"
	"time"
)

func TestFrequencyDelta(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want Delta
	}{
		{name: "daily", raw: "daily", want: Delta{Days: 1}},
		{name: "weekly", raw: "weekly", want: Delta{Weeks: 1}},
		{name: "monthly", raw: "monthly", want: Delta{Months: 1}},
		{name: "n days", raw: "3 days", want: Delta{Days: 3}},
		{name: "one day singular", raw: "1 day", want: Delta{Days: 1}},
		{name: "n weeks", raw: "2 weeks", want: Delta{Weeks: 2}},
		{name: "n months", raw: "6 months", want: Delta{Months: 6}},
		{name: "mixed case", raw: "  Weekly ", want: Delta{Weeks: 1}},
		{name: "garbage amount", raw: "x days", want: Delta{Days: 1}},
		{name: "negative amount", raw: "-2 days", want: Delta{Days: 1}},
		{name: "unknown", raw: "fortnightly", want: Delta{Days: 1}},
		{name: "empty", raw: "", want: Delta{Days: 1}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := FrequencyDelta(tt.raw); got != tt.want {
				t.Fatalf("FrequencyDelta(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCalculateNextRun(t *testing.T) {
	t.Parallel()
	base := time.Date(2025, 1, 6, 9, 30, 0, 0, time.Local) // a Monday

	if got := CalculateNextRun(base, "weekly"); !got.Equal(base.AddDate(0, 0, 7)) {
		t.Fatalf("weekly advance = %v", got)
	}
	if got := CalculateNextRun(base, "1 day"); !got.Equal(base.AddDate(0, 0, 1)) {
		t.Fatalf("daily advance = %v", got)
	}
	// Cadence alignment: weekly stays on the same weekday.
	if got := CalculateNextRun(base, "weekly"); got.Weekday() != time.Monday {
		t.Fatalf("weekly advance lost weekday anchor: %v", got.Weekday())
	}
	// Month arithmetic preserves day-of-month where valid.
	jan15 := time.Date(2025, 1, 15, 7, 0, 0, 0, time.Local)
	if got := CalculateNextRun(jan15, "monthly"); got.Day() != 15 || got.Month() != time.February {
		t.Fatalf("monthly advance = %v", got)
	}
}

func TestCalculateNextRunMonthEndClamps(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		from time.Time
		freq string
		want time.Time
	}{
		{
			name: "jan 31 clamps to feb 28",
			from: time.Date(2025, 1, 31, 7, 0, 0, 0, time.Local),
			freq: "monthly",
			want: time.Date(2025, 2, 28, 7, 0, 0, 0, time.Local),
		},
		{
			name: "jan 31 leap year clamps to feb 29",
			from: time.Date(2024, 1, 31, 7, 0, 0, 0, time.Local),
			freq: "monthly",
			want: time.Date(2024, 2, 29, 7, 0, 0, 0, time.Local),
		},
		{
			name: "oct 31 clamps to nov 30",
			from: time.Date(2025, 10, 31, 7, 0, 0, 0, time.Local),
			freq: "monthly",
			want: time.Date(2025, 11, 30, 7, 0, 0, 0, time.Local),
		},
		{
			name: "multi-month step crosses year and clamps",
			from: time.Date(2025, 12, 31, 7, 0, 0, 0, time.Local),
			freq: "2 months",
			want: time.Date(2026, 2, 28, 7, 0, 0, 0, time.Local),
		},
		{
			name: "mid-month day untouched",
			from: time.Date(2025, 3, 30, 7, 0, 0, 0, time.Local),
			freq: "monthly",
			want: time.Date(2025, 4, 30, 7, 0, 0, 0, time.Local),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateNextRun(tt.from, tt.freq); !got.Equal(tt.want) {
				t.Fatalf("CalculateNextRun(%v, %q) = %v, want %v", tt.from, tt.freq, got, tt.want)
			}
		})
	}
}
