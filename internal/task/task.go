// Package task defines the on-disk task record and its directory store.
//
// A task file is the single source of truth for its task: schedule, work
// instruction, and accumulated memory all live in the same JSON document,
// which stays hand-editable between runs.
package task

import (
	"bytes"
	"encoding/json"
)

// Task is one persistent task record. The file path it was loaded from is
// its durable key; Name is only a human identifier.
type Task struct {
	Name      string `json:"name"`
	Frequency string `json:"frequency"`

	// NextRun is nullable on disk. Accepted forms: canonical RFC 3339,
	// the sentinel "Now", a date-only string, or a date-time without
	// seconds. See schedule.NormalizeNextRun.
	NextRun *string `json:"next_run"`

	// TaskDefinition is the natural-language instruction handed to the
	// executor verbatim.
	TaskDefinition string `json:"task_definition"`

	// Context is the task's persistent memory, replaced wholesale after a
	// successful run that produced a parseable NEW_MEMORY block.
	Context json.RawMessage `json:"context"`

	// Output optionally pins the report to an explicit path. When empty a
	// default path is derived from Name and a timestamp.
	Output string `json:"output,omitempty"`

	// Tools and Model are executor-facing configuration; the scheduler
	// carries them through without interpreting them.
	Tools []string `json:"tools,omitempty"`
	Model string   `json:"model,omitempty"`
}

// RawNextRun returns the stored next_run, mapping null to "".
func (t *Task) RawNextRun() string {
	if t.NextRun == nil {
		return ""
	}
	return *t.NextRun
}

// SetNextRun replaces the stored next_run value.
func (t *Task) SetNextRun(s string) {
	t.NextRun = &s
}

// EnsureContext guarantees Context is a valid JSON document, defaulting to
// an empty object for new tasks.
func (t *Task) EnsureContext() {
	if len(bytes.TrimSpace(t.Context)) == 0 {
		t.Context = json.RawMessage(`{}`)
	}
}
