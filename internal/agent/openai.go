package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"willdo/internal/task"
	"willdo/pkg/logx"
)

// Config configures the OpenAI-compatible executor. Any endpoint speaking
// the chat-completions API works (BaseURL override).
type Config struct {
	BaseURL      string
	APIKey       string
	APIKeyEnv    string // read the key from this env var when APIKey is empty
	DefaultModel string

	// RequestTimeout bounds a single executor call. The engine itself
	// enforces no timeout, so this is the only guard against a hung call.
	RequestTimeout time.Duration
}

const defaultModel = "gpt-4o-mini"

// OpenAI executes tasks through a chat-completions endpoint.
type OpenAI struct {
	client *openai.Client
	cfg    Config
	log    logx.Logger
}

func NewOpenAI(cfg Config, log logx.Logger) (*OpenAI, error) {
	if log.IsZero() {
		log = logx.Nop()
	}

	key := strings.TrimSpace(cfg.APIKey)
	if key == "" && cfg.APIKeyEnv != "" {
		key = strings.TrimSpace(os.Getenv(cfg.APIKeyEnv))
	}
	if key == "" {
		return nil, errors.New("agent: no API key configured")
	}

	oc := openai.DefaultConfig(key)
	if strings.TrimSpace(cfg.BaseURL) != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = defaultModel
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(oc),
		cfg:    cfg,
		log:    log,
	}, nil
}

func (o *OpenAI) Run(ctx context.Context, t task.Task) (string, error) {
	if o.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.RequestTimeout)
		defer cancel()
	}

	model := t.Model
	if strings.TrimSpace(model) == "" {
		model = o.cfg.DefaultModel
	}

	o.log.Info("executing task",
		logx.String("task", t.Name),
		logx.String("model", model))

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(t)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("agent: chat completion for task %q: %w", t.Name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("agent: no choices returned for task %q", t.Name)
	}

	return resp.Choices[0].Message.Content, nil
}
