package history

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("history disabled")

// Config configures the run-history store.
//
// Driver values:
//   - "file": append-only JSON Lines file
//   - "sqlite": SQLite database file (optional build tag)
//
// If Driver is empty or "none", history is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Record is one execution attempt of one task.
// Keep it compact and schema-stable.
type Record struct {
	At         time.Time `json:"at"`
	TaskName   string    `json:"task"`
	TaskPath   string    `json:"path"`
	Outcome    string    `json:"outcome"` // succeeded | degraded | failed
	NextRun    string    `json:"next_run,omitempty"`
	ReportPath string    `json:"report_path,omitempty"`
	TookMS     int64     `json:"took_ms"`
	Error      string    `json:"err,omitempty"`
}
