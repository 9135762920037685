package llm

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-pro:generateContent"

type GeminiConfig struct {
	APIKey string
	// Endpoint overrides the generateContent URL (tests).
	Endpoint   string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Gemini struct {
	key, endpoint string
	hc            *http.Client
}

func NewGemini(cfg GeminiConfig) *Gemini {
	ep := cfg.Endpoint
	if ep == "" {
		ep = DefaultGeminiEndpoint
	}
	return &Gemini{key: cfg.APIKey, endpoint: ep, hc: newHTTPClient(cfg.HTTPClient, cfg.Timeout)}
}

func (g *Gemini) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	// no system role here: the instructions go in front of the prompt
	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []geminiPart{{Text: SystemPrompt + "\n\n" + prompt}}},
		},
		"generationConfig": map[string]any{
			"temperature":     temperature,
			"maxOutputTokens": maxTokens,
		},
	}
	var out struct {
		Candidates []struct {
			Content struct {
				Parts []geminiPart `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := postJSON(ctx, g.hc, g.endpoint+"?key="+url.QueryEscape(g.key), nil, body, &out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyReply
	}
	return strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text), nil
}
