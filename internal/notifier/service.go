// Package notifier pushes per-run summaries to a Telegram chat.
//
// It is strictly optional and strictly observational: it consumes run
// events off the bus and can never influence scheduling. Slow or failing
// delivery drops messages rather than backing up the engine.
package notifier

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"golang.org/x/time/rate"

	"willdo/internal/eventbus"
	rtsup "willdo/internal/runtime/supervisor"
	"willdo/pkg/logx"
)

type Config struct {
	Enabled    bool
	Token      string
	ChatID     int64
	RatePerSec int
}

type Service struct {
	log logx.Logger
	bus eventbus.Bus

	mu      sync.Mutex
	cfg     Config
	limiter *rate.Limiter

	bot *tele.Bot
}

func New(cfg Config, bus eventbus.Bus, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Service{log: log, bus: bus}
	s.applyLocked(cfg)
	return s
}

func (s *Service) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Enabled
}

// Apply updates rate and target at runtime. Token changes require a
// restart; they are logged and ignored.
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bot != nil && cfg.Token != s.cfg.Token {
		s.log.Warn("notifier token change requires restart; keeping old token")
		cfg.Token = s.cfg.Token
	}
	s.applyLocked(cfg)
}

func (s *Service) applyLocked(cfg Config) {
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	s.cfg = cfg
	s.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec)
}

// Start connects the bot and begins consuming run events under sup.
// A disabled notifier starts nothing and returns nil.
func (s *Service) Start(sup *rtsup.Supervisor) error {
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()

	if !cfg.Enabled {
		return nil
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return fmt.Errorf("notifier: token is empty")
	}

	b, err := tele.NewBot(tele.Settings{Token: cfg.Token})
	if err != nil {
		return fmt.Errorf("notifier: %w", err)
	}
	s.mu.Lock()
	s.bot = b
	s.mu.Unlock()

	ch, unsub := s.bus.Subscribe(64)
	sup.Go("notifier", func(ctx context.Context) error {
		defer unsub()
		return s.run(ctx, ch)
	})
	return nil
}

func (s *Service) run(ctx context.Context, ch <-chan eventbus.RunEvent) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			s.deliver(ctx, ev)
		}
	}
}

func (s *Service) deliver(ctx context.Context, ev eventbus.RunEvent) {
	s.mu.Lock()
	limiter := s.limiter
	chatID := s.cfg.ChatID
	bot := s.bot
	s.mu.Unlock()

	if bot == nil || chatID == 0 {
		return
	}
	if err := limiter.Wait(ctx); err != nil {
		return
	}
	if _, err := bot.Send(tele.ChatID(chatID), Format(ev)); err != nil {
		s.log.Warn("failed to send run notification",
			logx.String("task", ev.TaskName), logx.Err(err))
	}
}

// Format renders one run event as a short plain-text message.
func Format(ev eventbus.RunEvent) string {
	var b strings.Builder
	switch ev.Outcome {
	case eventbus.OutcomeSucceeded:
		fmt.Fprintf(&b, "task %q completed in %s", ev.TaskName, roundDur(ev.Duration))
		if ev.NextRun != "" {
			fmt.Fprintf(&b, "\nnext run: %s", ev.NextRun)
		}
	case eventbus.OutcomeDegraded:
		fmt.Fprintf(&b, "task %q completed with a malformed response (%s)", ev.TaskName, ev.Detail)
		if ev.NextRun != "" {
			fmt.Fprintf(&b, "\nnext run: %s", ev.NextRun)
		}
	case eventbus.OutcomeFailed:
		fmt.Fprintf(&b, "task %q failed: %s\nwill retry next pass", ev.TaskName, ev.Detail)
	}
	if ev.ReportPath != "" {
		fmt.Fprintf(&b, "\nreport: %s", ev.ReportPath)
	}
	return b.String()
}

func roundDur(d time.Duration) time.Duration {
	if d > time.Second {
		return d.Round(100 * time.Millisecond)
	}
	return d.Round(time.Millisecond)
}
