package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"willdo/internal/agent"
	"willdo/internal/history"
	"willdo/pkg/logx"
)

// Config is the daemon's single configuration document (JSON or YAML).
//
// All durations are Go duration strings (e.g. "10s", "1h").
// Relative paths resolve against RootDir, which defaults to the directory
// containing the config file.
type Config struct {
	Logging   LoggingConfig   `json:"logging"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Agent     AgentConfig     `json:"agent"`

	History  *HistoryConfig  `json:"history,omitempty"`
	Notifier *NotifierConfig `json:"notifier,omitempty"`

	// RootDir is set by the loader, not the file.
	RootDir string `json:"-"`
}

type LoggingConfig struct {
	Level   string     `json:"level,omitempty"`
	Console *bool      `json:"console,omitempty"`
	File    FileConfig `json:"file,omitempty"`
}

type FileConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

// SchedulerConfig controls the polling pass.
//
// Defaults (when fields are omitted/zero):
//   - tasks_dir: "./tasks"
//   - results_dir: "./task_results"
//   - check_interval: "1h"
//   - task_delay: "10s"
type SchedulerConfig struct {
	TasksDir      string `json:"tasks_dir,omitempty"`
	ResultsDir    string `json:"results_dir,omitempty"`
	CheckInterval string `json:"check_interval,omitempty"`
	TaskDelay     string `json:"task_delay,omitempty"`
}

type AgentConfig struct {
	BaseURL      string `json:"base_url,omitempty"`
	APIKey       string `json:"api_key,omitempty"`
	APIKeyEnv    string `json:"api_key_env,omitempty"`
	DefaultModel string `json:"default_model,omitempty"`

	// RequestTimeout bounds one executor call; unset means 5m.
	RequestTimeout string `json:"request_timeout,omitempty"`
}

type HistoryConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite only
}

type NotifierConfig struct {
	Enabled    bool   `json:"enabled"`
	Token      string `json:"token,omitempty"`
	ChatID     int64  `json:"chat_id,omitempty"`
	RatePerSec int    `json:"rate_per_sec,omitempty"`
}

// ---- resolved views ----

func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.RootDir == "" {
		return path
	}
	return filepath.Join(c.RootDir, path)
}

func (c *Config) LogxConfig() logx.Config {
	console := true
	if c.Logging.Console != nil {
		console = *c.Logging.Console
	}
	return logx.Config{
		Level:   c.Logging.Level,
		Console: console,
		File: logx.FileConfig{
			Enabled: c.Logging.File.Enabled,
			Path:    c.resolve(c.Logging.File.Path),
		},
	}
}

func (c *Config) TasksDir() string {
	dir := c.Scheduler.TasksDir
	if dir == "" {
		dir = "tasks"
	}
	return c.resolve(dir)
}

func (c *Config) ResultsDir() string {
	dir := c.Scheduler.ResultsDir
	if dir == "" {
		dir = "task_results"
	}
	return c.resolve(dir)
}

func (c *Config) CheckInterval() (time.Duration, error) {
	return durationField(c.Scheduler.CheckInterval, "scheduler.check_interval", time.Hour)
}

func (c *Config) TaskDelay() (time.Duration, error) {
	return durationField(c.Scheduler.TaskDelay, "scheduler.task_delay", 10*time.Second)
}

func (c *Config) AgentSettings() (agent.Config, error) {
	timeout, err := durationField(c.Agent.RequestTimeout, "agent.request_timeout", 5*time.Minute)
	if err != nil {
		return agent.Config{}, err
	}
	keyEnv := c.Agent.APIKeyEnv
	if keyEnv == "" && c.Agent.APIKey == "" {
		keyEnv = "WILLDO_API_KEY"
	}
	return agent.Config{
		BaseURL:        c.Agent.BaseURL,
		APIKey:         c.Agent.APIKey,
		APIKeyEnv:      keyEnv,
		DefaultModel:   c.Agent.DefaultModel,
		RequestTimeout: timeout,
	}, nil
}

func (c *Config) HistorySettings() (history.Config, error) {
	if c.History == nil {
		return history.Config{}, nil
	}
	busy, err := durationField(c.History.BusyTimeout, "history.busy_timeout", 0)
	if err != nil {
		return history.Config{}, err
	}
	return history.Config{
		Driver:      c.History.Driver,
		Path:        c.resolve(c.History.Path),
		BusyTimeout: busy,
	}, nil
}

// durationField reads one of the config's Go duration strings. Unset (or
// "0s") means "use the default"; field names the config key for error
// messages.
func durationField(raw, field string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a duration: %w", field, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: %q is negative", field, raw)
	}
	if d == 0 {
		return def, nil
	}
	return d, nil
}

// Validate checks everything that can be checked without I/O.
func (c *Config) Validate() error {
	if _, err := c.CheckInterval(); err != nil {
		return err
	}
	if _, err := c.TaskDelay(); err != nil {
		return err
	}
	if _, err := c.AgentSettings(); err != nil {
		return err
	}
	if _, err := c.HistorySettings(); err != nil {
		return err
	}
	if n := c.Notifier; n != nil && n.Enabled {
		if strings.TrimSpace(n.Token) == "" {
			return fmt.Errorf("notifier.token is required when notifier is enabled")
		}
		if n.ChatID == 0 {
			return fmt.Errorf("notifier.chat_id is required when notifier is enabled")
		}
	}
	return nil
}
