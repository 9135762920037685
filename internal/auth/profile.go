package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fjcanyue/smart-survey/internal/observability/logger"
)

// RawProfile is a provider's user-info response as decoded JSON. Numbers are
// kept as json.Number so numeric ids survive intact.
type RawProfile map[string]any

// EmailOutcome classifies the GitHub emails lookup.
type EmailOutcome int

const (
	// EmailNone: the call worked but no primary+verified address exists.
	EmailNone EmailOutcome = iota
	// EmailFound: Email holds the primary verified address.
	EmailFound
	// EmailDegraded: the call failed; the profile email stands.
	EmailDegraded
)

// EmailLookup is the result of the recoverable emails sub-step.
type EmailLookup struct {
	Outcome EmailOutcome
	Email   string
	Err     error
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// FetchProfile calls the provider's user-info endpoint. For GitHub it then
// looks up /user/emails and, when a primary verified address exists,
// overwrites the profile email with it. Only the first call can fail the fetch.
func (c *OAuthClient) FetchProfile(ctx context.Context, accessToken string) (RawProfile, error) {
	body, err := c.get(ctx, c.endpoints.ProfileURL, accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUpstreamProfile, c.provider, err)
	}
	var raw RawProfile
	if err := decodeJSON(body, &raw); err != nil || raw == nil {
		return nil, fmt.Errorf("%w: %s: decode profile: %v", ErrUpstreamProfile, c.provider, err)
	}

	if c.provider == ProviderGitHub && c.endpoints.EmailsURL != "" {
		lookup := c.lookupPrimaryEmail(ctx, accessToken)
		switch lookup.Outcome {
		case EmailFound:
			raw["email"] = lookup.Email
		case EmailDegraded:
			logger.From(ctx).Warn("github emails lookup failed, keeping profile email",
				logger.Provider(string(c.provider)), logger.Err(lookup.Err))
		}
	}
	return raw, nil
}

func (c *OAuthClient) lookupPrimaryEmail(ctx context.Context, accessToken string) EmailLookup {
	body, err := c.get(ctx, c.endpoints.EmailsURL, accessToken)
	if err != nil {
		return EmailLookup{Outcome: EmailDegraded, Err: err}
	}
	var emails []githubEmail
	if err := decodeJSON(body, &emails); err != nil {
		return EmailLookup{Outcome: EmailDegraded, Err: err}
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return EmailLookup{Outcome: EmailFound, Email: e.Email}
		}
	}
	return EmailLookup{Outcome: EmailNone}
}

func (c *OAuthClient) get(ctx context.Context, url, accessToken string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return body, nil
}

func decodeJSON(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(v)
}
