package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Canonical is the stored form of next_run: RFC 3339 with the local offset.
const Canonical = time.RFC3339

// Task files have been hand-edited for years, so next_run shows up in a few
// historical shapes. Offset-less layouts are interpreted in local time.
var laxLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

const dateOnlyLayout = "2006-01-02"

// defaultHour is the time-of-day assigned when a task supplies a date with
// no time, or no date at all. Undated tasks get a conventional morning run.
const defaultHour = 7

// NormalizeNextRun resolves a raw next_run value into an absolute timestamp.
//
// Rules, in order:
//   - empty/absent      -> now + FrequencyDelta(frequency), at 07:00:00
//   - "now" (any case)  -> now, i.e. immediately due
//   - date only         -> that date at 07:00:00 local
//   - any parseable date/time -> as written; missing seconds become :00,
//     missing offset becomes the local offset
//   - anything else     -> error (the task is skipped for the pass)
//
// It returns both the parsed time and its canonical string. Callers must
// persist the canonical string when it differs from raw, so sentinels like
// "now" become durable timestamps exactly once.
func NormalizeNextRun(raw, frequency string, now time.Time) (time.Time, string, error) {
	s := strings.TrimSpace(raw)

	if s == "" {
		t := FrequencyDelta(frequency).AddTo(now)
		t = atHour(t, defaultHour)
		return t, t.Format(Canonical), nil
	}

	if strings.EqualFold(s, "now") {
		return now, now.Format(Canonical), nil
	}

	if t, err := time.ParseInLocation(dateOnlyLayout, s, now.Location()); err == nil {
		t = atHour(t, defaultHour)
		return t, t.Format(Canonical), nil
	}

	for _, layout := range laxLayouts {
		t, err := time.ParseInLocation(layout, s, now.Location())
		if err != nil {
			continue
		}
		return t, t.Format(Canonical), nil
	}

	return time.Time{}, "", fmt.Errorf("unparseable next_run %q", raw)
}

func atHour(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
}
