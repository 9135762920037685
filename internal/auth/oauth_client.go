package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const userAgent = "Smart-Survey-App"

// Credentials are the OAuth app registration for one provider.
type Credentials struct {
	ClientID     string
	ClientSecret string
	// TenantID is only used by Microsoft Entra ID; empty means "common".
	TenantID string
}

func (c Credentials) configured() bool {
	return strings.TrimSpace(c.ClientID) != "" && strings.TrimSpace(c.ClientSecret) != ""
}

// Endpoints are the provider URLs a client talks to.
type Endpoints struct {
	AuthURL    string
	TokenURL   string
	ProfileURL string
	// EmailsURL is GitHub only.
	EmailsURL string
}

// DefaultEndpoints returns the public endpoints of p.
func DefaultEndpoints(p Provider, tenant string) Endpoints {
	switch p {
	case ProviderGitHub:
		return Endpoints{
			AuthURL:    endpoints.GitHub.AuthURL,
			TokenURL:   endpoints.GitHub.TokenURL,
			ProfileURL: "https://api.github.com/user",
			EmailsURL:  "https://api.github.com/user/emails",
		}
	case ProviderGoogle:
		return Endpoints{
			AuthURL:    endpoints.Google.AuthURL,
			TokenURL:   endpoints.Google.TokenURL,
			ProfileURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		}
	case ProviderMicrosoft:
		if tenant == "" {
			tenant = "common"
		}
		ep := endpoints.AzureAD(tenant)
		return Endpoints{
			AuthURL:    ep.AuthURL,
			TokenURL:   ep.TokenURL,
			ProfileURL: "https://graph.microsoft.com/v1.0/me",
		}
	}
	return Endpoints{}
}

// ProviderClient is one provider's authorization code flow.
type ProviderClient interface {
	Provider() Provider
	AuthorizationURL(state string) string
	Exchange(ctx context.Context, code string) (AccessToken, error)
	FetchProfile(ctx context.Context, accessToken string) (RawProfile, error)
}

// ClientResolver hands out the client for a provider.
type ClientResolver interface {
	Client(p Provider) (ProviderClient, error)
}

// ClientOptions tune NewClientSet.
type ClientOptions struct {
	// HTTPClient is used for token and profile calls. Default: 10s timeout.
	HTTPClient *http.Client
	// Endpoints overrides DefaultEndpoints per provider.
	Endpoints map[Provider]Endpoints
}

// ClientSet is the immutable set of configured provider clients.
type ClientSet struct {
	clients map[Provider]*OAuthClient
}

// NewClientSet builds a client for every supported provider that has both a
// client id and a secret. Callbacks land on {appURL}/api/auth/callback/{provider}.
func NewClientSet(creds map[Provider]Credentials, appURL string, opts ClientOptions) *ClientSet {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	base := strings.TrimRight(appURL, "/")

	set := &ClientSet{clients: make(map[Provider]*OAuthClient)}
	for _, p := range SupportedProviders {
		c, ok := creds[p]
		if !ok || !c.configured() {
			continue
		}
		ep := DefaultEndpoints(p, c.TenantID)
		if o, ok := opts.Endpoints[p]; ok {
			ep = o
		}
		set.clients[p] = &OAuthClient{
			provider:   p,
			endpoints:  ep,
			httpClient: hc,
			cfg: &oauth2.Config{
				ClientID:     c.ClientID,
				ClientSecret: c.ClientSecret,
				RedirectURL:  base + "/api/auth/callback/" + string(p),
				Scopes:       p.scopes(),
				Endpoint: oauth2.Endpoint{
					AuthURL:   ep.AuthURL,
					TokenURL:  ep.TokenURL,
					AuthStyle: oauth2.AuthStyleInParams,
				},
			},
		}
	}
	return set
}

// Client returns the client for p, or ErrUnsupportedProvider /
// ErrProviderNotConfigured.
func (s *ClientSet) Client(p Provider) (ProviderClient, error) {
	if !p.Supported() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, p)
	}
	c, ok := s.clients[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotConfigured, p)
	}
	return c, nil
}

// Configured lists the providers with credentials, sorted.
func (s *ClientSet) Configured() []Provider {
	out := make([]Provider, 0, len(s.clients))
	for p := range s.clients {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// OAuthClient wraps oauth2.Config plus the provider's profile endpoints.
type OAuthClient struct {
	provider   Provider
	cfg        *oauth2.Config
	endpoints  Endpoints
	httpClient *http.Client
}

func (c *OAuthClient) Provider() Provider { return c.provider }

// RedirectURL is the callback registered for this client.
func (c *OAuthClient) RedirectURL() string { return c.cfg.RedirectURL }

// AuthorizationURL builds the provider consent URL carrying state.
func (c *OAuthClient) AuthorizationURL(state string) string {
	return c.cfg.AuthCodeURL(state)
}

// Exchange trades the authorization code for an access token.
func (c *OAuthClient) Exchange(ctx context.Context, code string) (AccessToken, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.cfg.Exchange(ctx, code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			return nil, fmt.Errorf("%w: %s: status %d %s", ErrTokenExchange, c.provider, re.Response.StatusCode, re.ErrorCode)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrTokenExchange, c.provider, err)
	}
	return LazyToken(func() string { return tok.AccessToken }), nil
}
