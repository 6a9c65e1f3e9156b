package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aristath/perfagent/internal/modules/agent"
	"github.com/google/subcommands"
)

type askCmd struct {
	url     string
	history string
	timeout time.Duration
}

func (*askCmd) Name() string     { return "ask" }
func (*askCmd) Synopsis() string { return "sends one chat turn to a running agent" }
func (*askCmd) Usage() string {
	return `perfctl ask [-url <server>] [-history <file>] <message...>

  Posts the message to /api/chat and prints the reply. With -history, the
  conversation is read from and saved to the given JSON file, and cleared
  whenever the agent reports a completed computation.
  Example: perfctl ask -history chat.json "volatility of Growth Plus in 2023"
`
}

func (c *askCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.url, "url", envOr("PERFAGENT_URL", "http://localhost:8001"), "base URL of the agent server")
	f.StringVar(&c.history, "history", "", "conversation history file")
	f.DurationVar(&c.timeout, "timeout", 120*time.Second, "request timeout")
}

func (c *askCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	message := strings.TrimSpace(strings.Join(f.Args(), " "))
	if message == "" {
		fmt.Fprintln(os.Stderr, "Error: a message is required.")
		return subcommands.ExitUsageError
	}

	history, err := loadHistory(c.history)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading history: %v\n", err)
		return subcommands.ExitFailure
	}

	client := &http.Client{Timeout: c.timeout}
	resp, err := ask(ctx, client, c.url, agent.ChatRequest{Message: message, ConversationHistory: history})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Println(resp.Response)

	if c.history != "" {
		next := nextHistory(history, message, resp)
		if err := saveHistory(c.history, next); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving history: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

// ask posts one chat request to baseURL/api/chat
func ask(ctx context.Context, client *http.Client, baseURL string, req agent.ChatRequest) (*agent.ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("agent returned status %d: %s", httpResp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var resp agent.ChatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &resp, nil
}

// nextHistory appends the finished turn, or starts over after a computation
func nextHistory(history []agent.ChatTurn, message string, resp *agent.ChatResponse) []agent.ChatTurn {
	if resp.ResetHistory {
		return []agent.ChatTurn{}
	}
	next := append([]agent.ChatTurn(nil), history...)
	return append(next,
		agent.ChatTurn{Role: "user", Content: message},
		agent.ChatTurn{Role: "assistant", Content: resp.Response},
	)
}

func loadHistory(path string) ([]agent.ChatTurn, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var history []agent.ChatTurn
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("invalid history file %s: %w", path, err)
	}
	return history, nil
}

func saveHistory(path string, history []agent.ChatTurn) error {
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
