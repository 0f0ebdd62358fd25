// Package capability wraps the language model behind a single
// completion interface so the extraction and remediation domains stay
// testable with fakes.
package capability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"
)

// ErrNoCompletion indicates the model returned an empty choice set.
var ErrNoCompletion = errors.New("capability returned no completion")

// System is the language model completion contract. Implementations
// must honor context cancellation.
type System interface {
	Complete(ctx context.Context, instructions, prompt string) (string, error)
}

type client struct {
	api    *openai.Client
	cfg    *Config
	logger *slog.Logger
}

// New creates a capability backed by an OpenAI-compatible chat
// completion endpoint.
func New(cfg *Config, logger *slog.Logger) System {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &client{
		api:    openai.NewClientWithConfig(apiCfg),
		cfg:    cfg,
		logger: logger.With("system", "capability"),
	}
}

func (c *client) Complete(ctx context.Context, instructions, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instructions},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoCompletion
	}

	c.logger.Debug(
		"completion received",
		"model", resp.Model,
		"finish_reason", resp.Choices[0].FinishReason,
	)
	return resp.Choices[0].Message.Content, nil
}
