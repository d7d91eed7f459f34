package engine

import (
	"context"
	"sync"
	"time"

	"willdo/pkg/logx"
)

// Loop drives the engine: one pass, one sleep, repeat.
//
// Cancellation is deliberately coarse: the stop signal is observed at the
// top of each pass and at the top of each sleep, and nowhere in between. A
// pass always runs to completion, and a sleep that has started runs its
// full interval. Hosts that need faster shutdown should configure a shorter
// check interval; in-flight executor calls are never interrupted.
type Loop struct {
	engine *Engine
	log    logx.Logger

	mu       sync.Mutex
	interval time.Duration

	// test seam
	sleep func(d time.Duration)
}

func NewLoop(engine *Engine, interval time.Duration, log logx.Logger) *Loop {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Loop{
		engine:   engine,
		log:      log,
		interval: interval,
		sleep:    time.Sleep,
	}
}

// SetInterval updates the poll interval at runtime (config hot reload).
// It takes effect at the next sleep.
func (l *Loop) SetInterval(d time.Duration) {
	l.mu.Lock()
	l.interval = d
	l.mu.Unlock()
}

func (l *Loop) Interval() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.interval
}

// Run blocks until ctx is cancelled. It never returns because of a
// per-task error; only the stop signal ends it.
func (l *Loop) Run(ctx context.Context) error {
	l.log.Info("scheduler started", logx.Duration("check_interval", l.Interval()))

	for {
		if ctx.Err() != nil {
			l.log.Info("scheduler stopped")
			return nil
		}

		l.engine.RunPass(ctx)

		if ctx.Err() != nil {
			l.log.Info("scheduler stopped")
			return nil
		}
		l.sleep(l.Interval())
	}
}
