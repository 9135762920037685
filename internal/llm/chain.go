package llm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fjcanyue/smart-survey/internal/metrics"
	"github.com/fjcanyue/smart-survey/internal/observability/logger"
)

// Chain tries each provider in order and returns the first well-formed
// draft. When every provider fails, or there is none, it returns the
// fallback template, so Generate only errors if the template cannot be
// encoded.
type Chain struct {
	providers []Provider
}

func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Config lists the keys; an empty key leaves that provider out.
type Config struct {
	OpenAI  OpenAIConfig
	Gemini  GeminiConfig
	Claude  ClaudeConfig
	Timeout time.Duration
}

// FromConfig builds the chain in priority order OpenAI, Gemini, Claude.
func FromConfig(cfg Config) *Chain {
	var ps []Provider
	if cfg.OpenAI.APIKey != "" {
		if cfg.OpenAI.Timeout == 0 {
			cfg.OpenAI.Timeout = cfg.Timeout
		}
		ps = append(ps, NewOpenAI(cfg.OpenAI))
	}
	if cfg.Gemini.APIKey != "" {
		if cfg.Gemini.Timeout == 0 {
			cfg.Gemini.Timeout = cfg.Timeout
		}
		ps = append(ps, NewGemini(cfg.Gemini))
	}
	if cfg.Claude.APIKey != "" {
		if cfg.Claude.Timeout == 0 {
			cfg.Claude.Timeout = cfg.Timeout
		}
		ps = append(ps, NewClaude(cfg.Claude))
	}
	return NewChain(ps...)
}

// Providers returns the provider names in try order.
func (c *Chain) Providers() []string {
	out := make([]string, len(c.providers))
	for i, p := range c.providers {
		out[i] = p.Name()
	}
	return out
}

func (c *Chain) Generate(ctx context.Context, prompt string) (json.RawMessage, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("llm"), logger.Op("Generate"))

	for _, p := range c.providers {
		if ctx.Err() != nil {
			break
		}
		start := time.Now()
		reply, err := p.Complete(ctx, prompt)
		metrics.LLMLatency.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())

		var draft json.RawMessage
		if err == nil {
			draft, err = ParseDraft(reply)
		}
		if err != nil {
			metrics.LLMRequests.WithLabelValues(p.Name(), "failed").Inc()
			log.Warn("llm provider failed", logger.LLM(p.Name()), logger.Err(err))
			continue
		}
		metrics.LLMRequests.WithLabelValues(p.Name(), "success").Inc()
		log.Info("survey drafted", logger.LLM(p.Name()), logger.DurationMs(time.Since(start)))
		return draft, nil
	}

	if len(c.providers) == 0 {
		log.Warn("no llm provider configured, using template")
	} else {
		log.Warn("all llm providers failed, using template")
	}
	metrics.LLMRequests.WithLabelValues("template", "fallback").Inc()
	return fallbackJSON(prompt)
}
