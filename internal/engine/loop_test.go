package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"willdo/internal/agent"
	"willdo/internal/report"
	"willdo/internal/task"
	"willdo/pkg/logx"
)

func TestLoopStopsBetweenPasses(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	store := task.NewStore(filepath.Join(root, "tasks"), logx.Nop())
	w := report.NewWriter(filepath.Join(root, "results"), root, logx.Nop())
	exec := agent.Func(func(ctx context.Context, tk task.Task) (string, error) { return "", nil })

	eng := New(Config{}, store, exec, w, nil, nil, logx.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	loop := NewLoop(eng, time.Hour, logx.Nop())

	var sleeps int
	loop.sleep = func(d time.Duration) {
		if d != time.Hour {
			t.Errorf("sleep = %v, want configured interval", d)
		}
		sleeps++
		if sleeps == 3 {
			cancel()
		}
	}

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop after cancellation")
	}
	if sleeps != 3 {
		t.Fatalf("loop ran %d sleeps before observing stop, want 3", sleeps)
	}
}

func TestLoopSetInterval(t *testing.T) {
	t.Parallel()
	loop := NewLoop(nil, time.Hour, logx.Nop())
	loop.SetInterval(time.Minute)
	if loop.Interval() != time.Minute {
		t.Fatalf("Interval = %v", loop.Interval())
	}
}
