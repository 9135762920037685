package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single provider call when the caller sets none.
const DefaultTimeout = 60 * time.Second

var (
	// ErrEmptyReply: the provider answered 2xx without usable text.
	ErrEmptyReply = errors.New("llm: empty reply")
	// ErrUpstream: non-2xx answer.
	ErrUpstream = errors.New("llm: upstream error")
)

// Provider turns a prompt into raw model text.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

func newHTTPClient(c *http.Client, timeout time.Duration) *http.Client {
	if c != nil {
		return c
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// postJSON sends body and decodes a 2xx reply into out.
func postJSON(ctx context.Context, hc httpDoer, url string, headers map[string]string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s", ErrUpstream, resp.Status, bytes.TrimSpace(snippet))
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(out); err != nil {
		return fmt.Errorf("llm: decode reply: %w", err)
	}
	return nil
}
