package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	provider  Provider
	exchanges int
	exchErr   error
	token     AccessToken
	raw       RawProfile
	fetchErr  error
}

func (f *fakeClient) Provider() Provider { return f.provider }
func (f *fakeClient) AuthorizationURL(state string) string {
	return "https://provider.example/authorize?state=" + url.QueryEscape(state)
}
func (f *fakeClient) Exchange(context.Context, string) (AccessToken, error) {
	f.exchanges++
	return f.token, f.exchErr
}
func (f *fakeClient) FetchProfile(context.Context, string) (RawProfile, error) {
	return f.raw, f.fetchErr
}

type fakeResolver map[Provider]*fakeClient

func (r fakeResolver) Client(p Provider) (ProviderClient, error) {
	if !p.Supported() {
		return nil, ErrUnsupportedProvider
	}
	c, ok := r[p]
	if !ok {
		return nil, ErrProviderNotConfigured
	}
	return c, nil
}

func newTestOrchestrator(c *fakeClient) *Orchestrator {
	return NewOrchestrator(
		fakeResolver{c.provider: c},
		NewSessionManager(string(testSecret), true),
		"https://app.example/",
	)
}

func cookieByName(cs []*http.Cookie, name string) *http.Cookie {
	for _, c := range cs {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLogin_RedirectsWithStateCookie(t *testing.T) {
	o := newTestOrchestrator(&fakeClient{provider: ProviderGitHub})
	res, err := o.Login(context.Background(), "github")
	require.NoError(t, err)
	assert.Equal(t, StateProviderRedirected, res.State)
	require.NotNil(t, res.StateCookie)
	assert.True(t, strings.HasPrefix(res.StateCookie.Value, "github."))
	assert.Contains(t, res.RedirectURL, url.QueryEscape(res.StateCookie.Value))
	assert.True(t, res.StateCookie.Secure)
}

func TestLogin_Errors(t *testing.T) {
	o := newTestOrchestrator(&fakeClient{provider: ProviderGitHub})
	_, err := o.Login(context.Background(), "myspace")
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
	_, err = o.Login(context.Background(), "google")
	assert.ErrorIs(t, err, ErrProviderNotConfigured)
	_, err = o.Login(context.Background(), "twitter")
	assert.True(t, IsLoginValidationError(err))
}

func TestCallback_Success(t *testing.T) {
	fc := &fakeClient{
		provider: ProviderGitHub,
		token:    PlainToken("at"),
		raw:      RawProfile{"id": "9", "login": "octo", "email": "o@example.com"},
	}
	o := newTestOrchestrator(fc)
	st := GenerateState(ProviderGitHub)

	res := o.Callback(context.Background(), CallbackRequest{Provider: "github", Code: "c", State: st, StateCookie: st})
	require.NoError(t, res.Err)
	assert.Equal(t, StateSessionEstablished, res.State)
	assert.Equal(t, "https://app.example/dashboard", res.RedirectURL)

	sess := cookieByName(res.Cookies, SessionCookieName)
	require.NotNil(t, sess)
	assert.Equal(t, int(DefaultSessionTTL.Seconds()), sess.MaxAge)
	clear := cookieByName(res.Cookies, StateCookieName)
	require.NotNil(t, clear)
	assert.Equal(t, -1, clear.MaxAge)

	u := o.CurrentUser(context.Background(), "session="+sess.Value)
	require.NotNil(t, u)
	assert.Equal(t, "github:9", u.UserID)
}

func TestCallback_StateMismatchNeverExchanges(t *testing.T) {
	fc := &fakeClient{provider: ProviderGitHub, token: PlainToken("at")}
	o := newTestOrchestrator(fc)
	st := GenerateState(ProviderGitHub)

	cases := []CallbackRequest{
		{Provider: "github", Code: "c", State: st, StateCookie: ""},
		{Provider: "github", Code: "c", State: st, StateCookie: GenerateState(ProviderGitHub)},
		{Provider: "github", Code: "c", State: "", StateCookie: st},
	}
	for _, req := range cases {
		res := o.Callback(context.Background(), req)
		assert.ErrorIs(t, res.Err, ErrStateMismatch)
		assert.Equal(t, StateAuthFailed, res.State)
		assert.Nil(t, cookieByName(res.Cookies, SessionCookieName))
	}
	assert.Equal(t, 0, fc.exchanges)
}

func TestCallback_MissingCode(t *testing.T) {
	fc := &fakeClient{provider: ProviderGitHub}
	o := newTestOrchestrator(fc)
	st := GenerateState(ProviderGitHub)
	res := o.Callback(context.Background(), CallbackRequest{Provider: "github", State: st, StateCookie: st})
	assert.ErrorIs(t, res.Err, ErrMissingCode)
	assert.Equal(t, 0, fc.exchanges)

	u, err := url.Parse(res.RedirectURL)
	require.NoError(t, err)
	assert.Equal(t, "/login", u.Path)
	assert.Equal(t, "auth_failed", u.Query().Get("error"))
	assert.Equal(t, ErrMissingCode.Error(), u.Query().Get("message"))
}

func TestCallback_UpstreamFailuresHideDetails(t *testing.T) {
	fc := &fakeClient{
		provider: ProviderGitHub,
		exchErr:  errors.Join(ErrTokenExchange, errors.New("client_secret=leaked")),
	}
	o := newTestOrchestrator(fc)
	st := GenerateState(ProviderGitHub)
	res := o.Callback(context.Background(), CallbackRequest{Provider: "github", Code: "c", State: st, StateCookie: st})
	assert.ErrorIs(t, res.Err, ErrTokenExchange)
	assert.NotContains(t, res.RedirectURL, "leaked")
	assert.Equal(t, 1, fc.exchanges)
}

func TestCallback_EmptyAccessTokenFails(t *testing.T) {
	fc := &fakeClient{provider: ProviderGitHub, token: LazyToken(func() string { return "" })}
	o := newTestOrchestrator(fc)
	st := GenerateState(ProviderGitHub)
	res := o.Callback(context.Background(), CallbackRequest{Provider: "github", Code: "c", State: st, StateCookie: st})
	assert.ErrorIs(t, res.Err, ErrTokenExchange)
}

func TestCallback_ProfileWithoutIDFails(t *testing.T) {
	fc := &fakeClient{provider: ProviderGitHub, token: PlainToken("at"), raw: RawProfile{"login": "x"}}
	o := newTestOrchestrator(fc)
	st := GenerateState(ProviderGitHub)
	res := o.Callback(context.Background(), CallbackRequest{Provider: "github", Code: "c", State: st, StateCookie: st})
	assert.ErrorIs(t, res.Err, ErrUpstreamProfile)
}

func TestLogout_ClearsCookie(t *testing.T) {
	o := newTestOrchestrator(&fakeClient{provider: ProviderGitHub})
	c, err := o.Logout(context.Background(), "whatever")
	require.NoError(t, err)
	assert.Equal(t, SessionCookieName, c.Name)
	assert.Contains(t, c.String(), "Max-Age=0")
}
