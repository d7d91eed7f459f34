// Package agent defines the executor boundary: the collaborator that
// performs a task's actual work and returns free-form text.
//
// The scheduler only cares about the discriminated outcome: a returned
// string is a (possibly degraded) success, a non-nil error is a hard
// failure that must not advance the task's schedule or memory.
package agent

import (
	"context"

	"willdo/internal/task"
)

// Executor runs one task and returns the raw response text.
//
// Contract:
//   - (text, nil): the call completed; text is parsed with report.Parse and
//     the task's schedule advances, even when text violates the response
//     protocol.
//   - ("", err): the call itself failed; the task stays due and is retried
//     on the next pass.
type Executor interface {
	Run(ctx context.Context, t task.Task) (string, error)
}

// Func adapts a plain function to the Executor interface.
type Func func(ctx context.Context, t task.Task) (string, error)

func (f Func) Run(ctx context.Context, t task.Task) (string, error) { return f(ctx, t) }
