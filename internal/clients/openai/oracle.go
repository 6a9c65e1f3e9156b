// Package openai provides a language oracle backed by the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	oa "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"
)

// Config holds OpenAI oracle configuration
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // Optional, for OpenAI-compatible gateways
}

// Oracle answers one system and user prompt pair per call
type Oracle struct {
	cli   oa.Client
	model string
	log   zerolog.Logger
}

// NewOracle creates a new OpenAI oracle. Retries are disabled: a failed
// call is reported to the caller once.
func NewOracle(cfg Config, log zerolog.Logger) *Oracle {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Oracle{
		cli:   oa.NewClient(opts...),
		model: cfg.Model,
		log:   log.With().Str("client", "openai").Logger(),
	}
}

// Complete sends the prompts and returns the first choice's content
func (o *Oracle) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := o.cli.Chat.Completions.New(ctx, oa.ChatCompletionNewParams{
		Model: oa.ChatModel(o.model),
		Messages: []oa.ChatCompletionMessageParamUnion{
			oa.SystemMessage(systemPrompt),
			oa.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	o.log.Debug().
		Str("model", resp.Model).
		Int64("total_tokens", resp.Usage.TotalTokens).
		Msg("Chat completion received")

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
