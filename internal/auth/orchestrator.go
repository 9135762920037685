package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fjcanyue/smart-survey/internal/observability/logger"
)

// FlowState is a step of the login state machine.
type FlowState string

const (
	StateAnonymous          FlowState = "anonymous_request"
	StateLoginInitiated     FlowState = "login_initiated"
	StateProviderRedirected FlowState = "provider_redirected"
	StateCallbackReceived   FlowState = "callback_received"
	StateSessionEstablished FlowState = "session_established"
	StateAuthFailed         FlowState = "auth_failed"
)

const (
	dashboardPath  = "/dashboard"
	loginErrorPath = "/login"
)

// Orchestrator drives login -> callback -> session issuance.
type Orchestrator struct {
	clients     ClientResolver
	sessions    *SessionManager
	frontendURL string
}

func NewOrchestrator(clients ClientResolver, sessions *SessionManager, frontendURL string) *Orchestrator {
	return &Orchestrator{
		clients:     clients,
		sessions:    sessions,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// Sessions exposes the session manager used by the orchestrator.
func (o *Orchestrator) Sessions() *SessionManager { return o.sessions }

// LoginResult is the redirect that starts the provider flow.
type LoginResult struct {
	State       FlowState
	RedirectURL string
	StateCookie *http.Cookie
}

// Login validates provider and prepares the redirect to its consent page.
// Errors are ErrUnsupportedProvider or ErrProviderNotConfigured.
func (o *Orchestrator) Login(ctx context.Context, providerName string) (LoginResult, error) {
	p, err := ParseProvider(providerName)
	if err != nil {
		return LoginResult{State: StateAnonymous}, err
	}
	client, err := o.clients.Client(p)
	if err != nil {
		return LoginResult{State: StateAnonymous}, err
	}

	state := GenerateState(p)
	logger.From(ctx).Debug("login initiated", logger.Provider(string(p)))
	return LoginResult{
		State:       StateProviderRedirected,
		RedirectURL: client.AuthorizationURL(state),
		StateCookie: StateCookie(state, o.sessions.Production()),
	}, nil
}

// CallbackRequest is what the provider sent back plus our state cookie.
type CallbackRequest struct {
	Provider    string
	Code        string
	State       string
	StateCookie string
}

// CallbackResult always describes a redirect. On success Cookies holds the
// new session and the cleared state cookie; on failure only the cleared state
// cookie and Err is set.
type CallbackResult struct {
	State       FlowState
	RedirectURL string
	Cookies     []*http.Cookie
	Profile     *UserProfile
	Err         error
}

// Callback completes the flow. State and code are checked before any call to
// the provider.
func (o *Orchestrator) Callback(ctx context.Context, req CallbackRequest) CallbackResult {
	profile, err := o.completeCallback(ctx, req)
	clearState := ClearCookie(StateCookieName, o.sessions.Production())
	if err != nil {
		return CallbackResult{
			State:       StateAuthFailed,
			RedirectURL: o.errorURL(err),
			Cookies:     []*http.Cookie{clearState},
			Err:         err,
		}
	}

	token, err := o.sessions.Issue(*profile)
	if err != nil {
		return CallbackResult{
			State:       StateAuthFailed,
			RedirectURL: o.errorURL(err),
			Cookies:     []*http.Cookie{clearState},
			Err:         fmt.Errorf("issue session: %w", err),
		}
	}

	return CallbackResult{
		State:       StateSessionEstablished,
		RedirectURL: o.frontendURL + dashboardPath,
		Cookies: []*http.Cookie{
			SessionCookie(token, int(o.sessions.TTL().Seconds()), o.sessions.Production()),
			clearState,
		},
		Profile: profile,
	}
}

func (o *Orchestrator) completeCallback(ctx context.Context, req CallbackRequest) (*UserProfile, error) {
	p, err := ParseProvider(req.Provider)
	if err != nil {
		return nil, err
	}
	client, err := o.clients.Client(p)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Code) == "" {
		return nil, ErrMissingCode
	}
	if !StateMatches(p, req.State, req.StateCookie) {
		return nil, ErrStateMismatch
	}

	tok, err := client.Exchange(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	accessToken, err := ResolveAccessToken(tok)
	if err != nil {
		return nil, err
	}

	raw, err := client.FetchProfile(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	profile, err := Normalize(p, raw)
	if err != nil {
		return nil, err
	}
	if profile.ProviderUserID() == "" {
		return nil, fmt.Errorf("%w: %s: profile has no id", ErrUpstreamProfile, p)
	}
	return &profile, nil
}

func (o *Orchestrator) errorURL(err error) string {
	q := url.Values{}
	q.Set("error", "auth_failed")
	q.Set("message", publicMessage(err))
	return o.frontendURL + loginErrorPath + "?" + q.Encode()
}

// Logout returns the cookie that clears the session. With revocation enabled
// the token is also denylisted; a denylist failure is reported but the cookie
// is still cleared.
func (o *Orchestrator) Logout(ctx context.Context, sessionToken string) (*http.Cookie, error) {
	clear := ClearCookie(SessionCookieName, o.sessions.Production())
	if err := o.sessions.Revoke(ctx, sessionToken); err != nil {
		return clear, fmt.Errorf("revoke session: %w", err)
	}
	return clear, nil
}

// CurrentUser returns the caller's profile or nil when unauthenticated.
func (o *Orchestrator) CurrentUser(ctx context.Context, cookieHeader string) *UserProfile {
	return o.sessions.Extract(ctx, cookieHeader)
}

// IsLoginValidationError reports errors that Login surfaces as 400.
func IsLoginValidationError(err error) bool {
	return errors.Is(err, ErrUnsupportedProvider) || errors.Is(err, ErrProviderNotConfigured)
}
