package schedule

import (
	"strconv"
	"strings"
	"time"
)

// Delta is a calendar-aware recurrence step.
//
// Months are applied first and clamp to the target month's last day
// (Jan 31 + 1 month = Feb 28, not Mar 3), then days and weeks are added.
// A monthly task anchored to the 31st keeps its anchor instead of
// drifting into the next month.
type Delta struct {
	Days   int
	Weeks  int
	Months int
}

// AddTo applies the delta to t.
func (d Delta) AddTo(t time.Time) time.Time {
	out := t
	if d.Months != 0 {
		out = addMonthsClamped(out, d.Months)
	}
	return out.AddDate(0, 0, d.Days+7*d.Weeks)
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, day := t.Date()
	h, min, sec := t.Clock()

	first := time.Date(y, m+time.Month(months), 1, h, min, sec, t.Nanosecond(), t.Location())
	if last := lastDayOfMonth(first); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, h, min, sec, t.Nanosecond(), t.Location())
}

// lastDayOfMonth exploits day-zero normalization: day 0 of the next month
// is the last day of t's month.
func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// FrequencyDelta maps a recurrence rule string to a Delta.
//
// Recognized forms (case-insensitive, surrounding whitespace ignored):
//   - "daily", "weekly", "monthly"
//   - "<N> day(s)", "<N> week(s)", "<N> month(s)"
//
// Anything else falls back to one day. Task authors get a forgiving
// contract: a typo slows a task down to daily instead of wedging it.
func FrequencyDelta(frequency string) Delta {
	freq := strings.ToLower(strings.TrimSpace(frequency))

	switch freq {
	case "daily":
		return Delta{Days: 1}
	case "weekly":
		return Delta{Weeks: 1}
	case "monthly":
		return Delta{Months: 1}
	}

	switch {
	case strings.Contains(freq, "day"):
		return Delta{Days: leadingAmount(freq, 1)}
	case strings.Contains(freq, "week"):
		return Delta{Weeks: leadingAmount(freq, 1)}
	case strings.Contains(freq, "month"):
		return Delta{Months: leadingAmount(freq, 1)}
	}

	return Delta{Days: 1}
}

// CalculateNextRun advances a run time by one recurrence step.
//
// It always advances from the previously scheduled time, never from "now",
// so a weekly task anchored to Monday stays anchored to Monday even when a
// run happens late.
func CalculateNextRun(current time.Time, frequency string) time.Time {
	return FrequencyDelta(frequency).AddTo(current)
}

// leadingAmount parses the "<N>" out of "<N> day(s)" style rules.
func leadingAmount(freq string, def int) int {
	parts := strings.Fields(freq)
	if len(parts) < 2 {
		return def
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil || n <= 0 {
		return def
	}
	return n
}
