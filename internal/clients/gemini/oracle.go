// Package gemini provides a language oracle backed by the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// Config holds Gemini oracle configuration
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // Optional, overrides the API endpoint
}

// Oracle answers one system and user prompt pair per call
type Oracle struct {
	client *genai.Client
	model  string
	log    zerolog.Logger
}

// NewOracle creates a new Gemini oracle
func NewOracle(ctx context.Context, cfg Config, log zerolog.Logger) (*Oracle, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}

	return &Oracle{
		client: client,
		model:  cfg.Model,
		log:    log.With().Str("client", "gemini").Logger(),
	}, nil
}

// Complete sends the prompts and returns the response text. JSON output is
// requested through the response MIME type.
func (o *Oracle) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
		ResponseMIMEType:  "application/json",
	}

	resp, err := o.client.Models.GenerateContent(ctx, o.model, genai.Text(userPrompt), config)
	if err != nil {
		return "", fmt.Errorf("generate content failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini returned no candidates")
	}

	o.log.Debug().Str("model", o.model).Msg("Gemini response received")

	return strings.TrimSpace(resp.Text()), nil
}
