// Package engine orchestrates one polling pass over the task store and the
// outer poll loop that drives it.
package engine

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"willdo/internal/agent"
	"willdo/internal/eventbus"
	"willdo/internal/history"
	"willdo/internal/report"
	"willdo/internal/schedule"
	"willdo/internal/task"
	"willdo/pkg/logx"
)

// Config holds the engine's pacing knob. The poll interval lives on Loop.
type Config struct {
	// TaskDelay is the pause inserted before every due task after the
	// first one in a pass (load shedding; execution is strictly
	// sequential).
	TaskDelay time.Duration
}

// Engine runs one pass: load every task, normalize its schedule, execute
// the due ones sequentially, and persist schedule + memory only on success.
type Engine struct {
	store  *task.Store
	exec   agent.Executor
	writer *report.Writer
	hist   history.Store // nil when history is disabled
	bus    eventbus.Bus  // nil when nothing listens
	log    logx.Logger

	mu  sync.Mutex
	cfg Config

	// test seams
	now   func() time.Time
	sleep func(d time.Duration)
}

func New(cfg Config, store *task.Store, exec agent.Executor, writer *report.Writer, hist history.Store, bus eventbus.Bus, log logx.Logger) *Engine {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Engine{
		store:  store,
		exec:   exec,
		writer: writer,
		hist:   hist,
		bus:    bus,
		log:    log,
		cfg:    cfg,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// Apply updates pacing at runtime (config hot reload).
func (e *Engine) Apply(cfg Config) {
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()
}

func (e *Engine) taskDelay() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.TaskDelay
}

// RunPass checks every task once and executes all due ones, strictly
// sequentially. Per-task problems are logged and never abort the rest of
// the pass.
func (e *Engine) RunPass(ctx context.Context) {
	e.log.Info("checking for due tasks")
	now := e.now()

	// Shutdown must not sever an in-flight executor call; the loop honors
	// the stop signal only between passes.
	runCtx := context.WithoutCancel(ctx)

	executed := 0
	for _, lt := range e.store.Load() {
		e.processOne(runCtx, lt, now, &executed)
	}
}

// processOne walks a single task through the per-pass state machine:
// Normalized -> (Not-Due | Executing -> Succeeded/Failed).
func (e *Engine) processOne(ctx context.Context, lt task.Loaded, now time.Time, executed *int) {
	t := lt.Task
	log := e.log.With(logx.String("task", t.Name))

	defer func() {
		if r := recover(); r != nil {
			log.Error("unexpected error processing task",
				logx.Any("panic", fmt.Sprint(r)),
				logx.String("stack", string(debug.Stack())))
		}
	}()

	raw := t.RawNextRun()
	nextRun, canonical, err := schedule.NormalizeNextRun(raw, t.Frequency, now)
	if err != nil {
		log.Error("failed to normalize next_run", logx.String("next_run", raw), logx.Err(err))
		return
	}

	// Sentinels ("Now", empty) must become durable timestamps exactly
	// once, even if nothing else in this pass succeeds.
	if canonical != raw {
		log.Info("normalizing next_run",
			logx.String("from", raw), logx.String("to", canonical))
		t.SetNextRun(canonical)
		if err := e.store.Persist(lt.Path, &t); err != nil {
			// Keep going with the in-memory value.
			log.Error("failed to persist normalized task", logx.Err(err))
		}
	}

	if now.Before(nextRun) {
		return
	}

	// Pacing applies between sequential executions, never before the
	// first one.
	if *executed > 0 {
		delay := e.taskDelay()
		log.Info("pausing before next task to reduce load", logx.Duration("delay", delay))
		e.sleep(delay)
	}

	log.Info("task is due, executing", logx.String("next_run", canonical))

	started := e.now()
	text, execErr := e.exec.Run(ctx, t)
	took := e.now().Sub(started)
	*executed++

	if execErr != nil {
		// Hard failure: schedule and context stay put, the task remains
		// due and is retried next pass. Expected operational condition,
		// hence a warning.
		log.Warn("task failed with system error, schedule will not be updated",
			logx.Err(execErr), logx.Duration("took", took))
		e.record(ctx, eventbus.RunEvent{
			TaskName: t.Name,
			TaskPath: lt.Path,
			Outcome:  eventbus.OutcomeFailed,
			Duration: took,
			Detail:   execErr.Error(),
		})
		return
	}

	parsed := report.Parse(text, t.Context)
	outcome := eventbus.OutcomeSucceeded
	if parsed.Violation != "" {
		// Degraded success: the response broke the protocol, but the run
		// still counts and the schedule still advances.
		log.Warn("response format violation", logx.String("violation", parsed.Violation))
		outcome = eventbus.OutcomeDegraded
	}

	reportPath, err := e.writer.Save(t.Name, parsed.Report, t.Output)
	if err != nil {
		log.Error("failed to save report", logx.Err(err))
	} else {
		log.Info("report saved", logx.String("path", reportPath))
	}

	// Schedule and memory advance together: both are written in one
	// Persist below.
	t.Context = parsed.Context
	newNext := schedule.CalculateNextRun(nextRun, t.Frequency).Format(schedule.Canonical)
	t.SetNextRun(newNext)

	if err := e.store.Persist(lt.Path, &t); err != nil {
		log.Error("failed to persist updated task", logx.Err(err))
	}

	log.Info("task completed",
		logx.String("outcome", string(outcome)),
		logx.String("new_next_run", newNext),
		logx.Duration("took", took))

	e.record(ctx, eventbus.RunEvent{
		TaskName:   t.Name,
		TaskPath:   lt.Path,
		Outcome:    outcome,
		ReportPath: reportPath,
		NextRun:    newNext,
		Duration:   took,
		Detail:     parsed.Violation,
	})
}

// record fans the run out to the audit trail and the event bus. Both are
// observational; failures are logged and swallowed.
func (e *Engine) record(ctx context.Context, ev eventbus.RunEvent) {
	ev.Time = e.now()
	if e.hist != nil {
		r := history.Record{
			At:         ev.Time,
			TaskName:   ev.TaskName,
			TaskPath:   ev.TaskPath,
			Outcome:    string(ev.Outcome),
			NextRun:    ev.NextRun,
			ReportPath: ev.ReportPath,
			TookMS:     ev.Duration.Milliseconds(),
			Error:      ev.Detail,
		}
		if err := e.hist.Append(ctx, r); err != nil {
			e.log.Warn("failed to append run history", logx.Err(err))
		}
	}
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}
