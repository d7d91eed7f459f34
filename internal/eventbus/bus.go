// Package eventbus decouples the scheduler engine from optional consumers
// (notifier, future listeners) with a small in-memory fanout.
//
// Contract:
//   - Publish MUST be non-blocking.
//   - Slow subscribers drop events (bounded backpressure).
package eventbus

import (
	"sync"
	"sync/atomic"
	"time"
)

// Outcome classifies one task execution.
type Outcome string

const (
	// OutcomeSucceeded: executed, response parsed cleanly, schedule advanced.
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeDegraded: executed and schedule advanced, but the response
	// violated the two-block protocol (context carried over).
	OutcomeDegraded Outcome = "degraded"
	// OutcomeFailed: the executor call itself failed; schedule retained.
	OutcomeFailed Outcome = "failed"
)

// RunEvent describes one completed execution attempt.
type RunEvent struct {
	Time       time.Time
	TaskName   string
	TaskPath   string
	Outcome    Outcome
	ReportPath string
	NextRun    string
	Duration   time.Duration
	Detail     string // violation or error text, if any
}

type Bus interface {
	Publish(e RunEvent)
	Subscribe(buffer int) (ch <-chan RunEvent, unsubscribe func())
}

// New returns a simple in-memory fanout bus. It owns no goroutines.
func New() Bus {
	return &memBus{subs: map[uint64]chan RunEvent{}}
}

type memBus struct {
	mu   sync.RWMutex
	subs map[uint64]chan RunEvent
	seq  atomic.Uint64
}

func (b *memBus) Publish(e RunEvent) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	// Snapshot subscribers so Publish doesn't hold locks while sending.
	b.mu.RLock()
	chs := make([]chan RunEvent, 0, len(b.subs))
	for _, ch := range b.subs {
		chs = append(chs, ch)
	}
	b.mu.RUnlock()

	for _, ch := range chs {
		// Non-blocking delivery. If a subscriber unsubscribes concurrently
		// and the channel closes, recover from the send panic.
		func() {
			defer func() { _ = recover() }()
			select {
			case ch <- e:
			default:
			}
		}()
	}
}

func (b *memBus) Subscribe(buffer int) (<-chan RunEvent, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan RunEvent, buffer)
	id := b.seq.Add(1)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsub
}
