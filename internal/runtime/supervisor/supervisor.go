// Package supervisor runs named goroutines tied to a shared context, with
// panic recovery and a graceful, timeout-aware wait on shutdown.
package supervisor

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"willdo/pkg/logx"
)

type Supervisor struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    logx.Logger
	wg     sync.WaitGroup
}

func New(parent context.Context, log logx.Logger) *Supervisor {
	if log.IsZero() {
		log = logx.Nop()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Supervisor{ctx: ctx, cancel: cancel, log: log}
}

// Context returns the supervisor's lifetime context.
func (s *Supervisor) Context() context.Context { return s.ctx }

// Go starts fn in a goroutine. A panic is logged with its stack and does
// not take the process down; fn's error (if any) is logged as well.
func (s *Supervisor) Go(name string, fn func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("goroutine panicked",
					logx.String("goroutine", name),
					logx.Any("panic", fmt.Sprint(r)),
					logx.String("stack", string(debug.Stack())))
			}
		}()
		if err := fn(s.ctx); err != nil && s.ctx.Err() == nil {
			s.log.Error("goroutine exited with error",
				logx.String("goroutine", name), logx.Err(err))
		}
	}()
}

// Stop cancels the supervisor's context and waits for goroutines to exit,
// giving up when waitCtx expires.
func (s *Supervisor) Stop(waitCtx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-waitCtx.Done():
		return waitCtx.Err()
	}
}
