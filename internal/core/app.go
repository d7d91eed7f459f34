// Package core wires the daemon together: config, logging, task store,
// executor, engine, and the optional history and notifier services.
package core

import (
	"context"
	"time"

	"willdo/internal/agent"
	"willdo/internal/config"
	"willdo/internal/engine"
	"willdo/internal/eventbus"
	"willdo/internal/history"
	"willdo/internal/notifier"
	"willdo/internal/report"
	rtsup "willdo/internal/runtime/supervisor"
	"willdo/internal/task"
	"willdo/pkg/logx"
)

type App struct {
	cfgm   *config.Manager
	logSvc *logx.Service
	log    logx.Logger

	hist   history.Store
	bus    eventbus.Bus
	notify *notifier.Service
	eng    *engine.Engine
	loop   *engine.Loop

	sup *rtsup.Supervisor
}

// NewApp loads the config and constructs every service. Nothing runs until
// Start().
func NewApp(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(cfg.LogxConfig())
	log = log.With(logx.String("comp", "app"))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	histCfg, err := cfg.HistorySettings()
	if err != nil {
		return nil, err
	}
	hist, err := history.Open(histCfg, log.With(logx.String("comp", "history")))
	if err != nil {
		return nil, err
	}

	agentCfg, err := cfg.AgentSettings()
	if err != nil {
		return nil, err
	}
	exec, err := agent.NewOpenAI(agentCfg, log.With(logx.String("comp", "agent")))
	if err != nil {
		return nil, err
	}

	bus := eventbus.New()

	store := task.NewStore(cfg.TasksDir(), log.With(logx.String("comp", "tasks")))
	writer := report.NewWriter(cfg.ResultsDir(), cfg.RootDir, log.With(logx.String("comp", "report")))

	taskDelay, err := cfg.TaskDelay()
	if err != nil {
		return nil, err
	}
	eng := engine.New(engine.Config{TaskDelay: taskDelay},
		store, exec, writer, hist, bus,
		log.With(logx.String("comp", "scheduler")))

	interval, err := cfg.CheckInterval()
	if err != nil {
		return nil, err
	}
	loop := engine.NewLoop(eng, interval, log.With(logx.String("comp", "scheduler")))

	notify := notifier.New(notifierSettings(cfg), bus,
		log.With(logx.String("comp", "notifier")))

	return &App{
		cfgm:   cfgm,
		logSvc: logSvc,
		log:    log,
		hist:   hist,
		bus:    bus,
		notify: notify,
		eng:    eng,
		loop:   loop,
	}, nil
}

// Start launches the poll loop, the config watcher, and the notifier.
// It returns immediately; the supervisor owns the goroutines.
func (a *App) Start(ctx context.Context) error {
	a.sup = rtsup.New(ctx, a.log)

	if err := a.notify.Start(a.sup); err != nil {
		// The scheduler is the product; a broken notifier should not
		// keep tasks from running.
		a.log.Warn("notifier failed to start", logx.Err(err))
	}

	a.sup.Go("config-watch", a.cfgm.Watch)
	a.sup.Go("config-apply", a.applyLoop)
	a.sup.Go("poll-loop", a.loop.Run)

	a.log.Info("willdo started",
		logx.Duration("check_interval", a.loop.Interval()),
		logx.Bool("notifier", a.notify.Enabled()))
	return nil
}

// applyLoop pushes hot-reloaded config into the running services.
func (a *App) applyLoop(ctx context.Context) error {
	sub := a.cfgm.Subscribe(1)
	defer a.cfgm.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return nil
		case cfg, ok := <-sub:
			if !ok {
				return nil
			}
			a.apply(cfg)
		}
	}
}

func (a *App) apply(cfg *config.Config) {
	a.logSvc.Apply(cfg.LogxConfig())

	if d, err := cfg.TaskDelay(); err == nil {
		a.eng.Apply(engine.Config{TaskDelay: d})
	}
	if iv, err := cfg.CheckInterval(); err == nil {
		a.loop.SetInterval(iv)
	}
	a.notify.Apply(notifierSettings(cfg))

	// Tasks dir, agent endpoint, and history driver are bound at startup.
	a.log.Info("configuration applied",
		logx.Duration("check_interval", a.loop.Interval()))
}

// Stop cancels the supervisor and waits for the current pass to finish.
func (a *App) Stop(ctx context.Context) error {
	var err error
	if a.sup != nil {
		err = a.sup.Stop(ctx)
	}
	if a.hist != nil {
		_ = a.hist.Close()
	}
	_ = a.logSvc.Close()
	return err
}

func notifierSettings(cfg *config.Config) notifier.Config {
	n := cfg.Notifier
	if n == nil {
		return notifier.Config{}
	}
	return notifier.Config{
		Enabled:    n.Enabled,
		Token:      n.Token,
		ChatID:     n.ChatID,
		RatePerSec: n.RatePerSec,
	}
}

// StopTimeout is how long Stop waits for the in-flight pass by default.
const StopTimeout = 30 * time.Second
