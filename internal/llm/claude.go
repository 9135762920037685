package llm

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultClaudeEndpoint = "https://api.anthropic.com/v1/messages"
	DefaultClaudeModel    = "claude-3-sonnet-20240229"
	claudeAPIVersion      = "2023-06-01"
)

type ClaudeConfig struct {
	APIKey     string
	Endpoint   string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Claude struct {
	key, endpoint, model string
	hc                   *http.Client
}

func NewClaude(cfg ClaudeConfig) *Claude {
	c := &Claude{key: cfg.APIKey, endpoint: cfg.Endpoint, model: cfg.Model, hc: newHTTPClient(cfg.HTTPClient, cfg.Timeout)}
	if c.endpoint == "" {
		c.endpoint = DefaultClaudeEndpoint
	}
	if c.model == "" {
		c.model = DefaultClaudeModel
	}
	return c
}

func (c *Claude) Name() string { return "claude" }

func (c *Claude) Complete(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"model":      c.model,
		"max_tokens": maxTokens,
		"system":     SystemPrompt,
		"messages":   []chatMessage{{Role: "user", Content: prompt}},
	}
	var out struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	headers := map[string]string{
		"x-api-key":         c.key,
		"anthropic-version": claudeAPIVersion,
	}
	if err := postJSON(ctx, c.hc, c.endpoint, headers, body, &out); err != nil {
		return "", err
	}
	if len(out.Content) == 0 {
		return "", ErrEmptyReply
	}
	return strings.TrimSpace(out.Content[0].Text), nil
}
