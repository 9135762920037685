package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjcanyue/smart-survey/internal/cache"
)

var testSecret = []byte("test-secret-that-is-long-enough-123456")

func alice() UserProfile {
	avatar := "https://avatars.example/alice.png"
	return UserProfile{
		UserID:   GenerateUserID("github", "42"),
		Provider: "github",
		Email:    "alice@example.com",
		Name:     "Alice",
		Avatar:   &avatar,
	}
}

func TestGenerateUserID_Deterministic(t *testing.T) {
	assert.Equal(t, "github:42", GenerateUserID("github", "42"))
	assert.Equal(t, GenerateUserID("google", "abc"), GenerateUserID("google", "abc"))
	assert.NotEqual(t, GenerateUserID("google", "1"), GenerateUserID("github", "1"))
}

func TestSession_RoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tok, err := IssueSession(alice(), testSecret, now, DefaultSessionTTL)
	require.NoError(t, err)

	got := VerifySession(tok, testSecret, now.Add(time.Hour))
	require.NotNil(t, got)
	assert.Equal(t, alice(), *got)
}

func TestSession_ExpiresAfterSevenDays(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tok, err := IssueSession(alice(), testSecret, now, DefaultSessionTTL)
	require.NoError(t, err)

	assert.NotNil(t, VerifySession(tok, testSecret, now.Add(DefaultSessionTTL-time.Second)))
	assert.Nil(t, VerifySession(tok, testSecret, now.Add(DefaultSessionTTL+time.Second)))
}

func TestSession_RejectsTampering(t *testing.T) {
	now := time.Now()
	tok, err := IssueSession(alice(), testSecret, now, time.Hour)
	require.NoError(t, err)

	assert.Nil(t, VerifySession(tok, []byte("another-secret-entirely-000000000"), now))
	assert.Nil(t, VerifySession("not.a.jwt", testSecret, now))
	assert.Nil(t, VerifySession("", testSecret, now))

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	assert.Nil(t, VerifySession(parts[0]+"."+parts[1]+".AAAA", testSecret, now))
}

func TestSessionManager_Extract(t *testing.T) {
	m := NewSessionManager(string(testSecret), false)
	tok, err := m.Issue(alice())
	require.NoError(t, err)

	got := m.Extract(context.Background(), "theme=dark; session="+tok+"; other=1")
	require.NotNil(t, got)
	assert.Equal(t, "github:42", got.UserID)

	assert.Nil(t, m.Extract(context.Background(), ""))
	assert.Nil(t, m.Extract(context.Background(), "theme=dark"))
}

func TestSessionManager_RevokeWithDenylist(t *testing.T) {
	ctx := context.Background()
	dl := CacheDenylist{Cache: cache.NewMemory("test:", 0)}
	m := NewSessionManager(string(testSecret), false, WithDenylist(dl))

	tok, err := m.Issue(alice())
	require.NoError(t, err)
	require.NotNil(t, m.Verify(ctx, tok))

	require.NoError(t, m.Revoke(ctx, tok))
	assert.Nil(t, m.Verify(ctx, tok))

	// other sessions of the same user stay valid
	other, err := m.Issue(alice())
	require.NoError(t, err)
	assert.NotNil(t, m.Verify(ctx, other))
}

func TestSessionManager_RevokeWithoutDenylistIsNoop(t *testing.T) {
	m := NewSessionManager(string(testSecret), false)
	tok, err := m.Issue(alice())
	require.NoError(t, err)
	require.NoError(t, m.Revoke(context.Background(), tok))
	assert.NotNil(t, m.Verify(context.Background(), tok))
}

func TestCookies_ProductionAttributes(t *testing.T) {
	c := SessionCookie("tok", 604800, true)
	s := c.String()
	assert.Contains(t, s, "session=tok")
	assert.Contains(t, s, "HttpOnly")
	assert.Contains(t, s, "Secure")
	assert.Contains(t, s, "SameSite=None")
	assert.Contains(t, s, "Path=/")
	assert.Contains(t, s, "Max-Age=604800")
}

func TestCookies_DevelopmentAttributes(t *testing.T) {
	s := SessionCookie("tok", 604800, false).String()
	assert.Contains(t, s, "HttpOnly")
	assert.Contains(t, s, "SameSite=Lax")
	assert.NotContains(t, s, "Secure")
}

func TestCookieString_MatchesSetCookieHeader(t *testing.T) {
	c := SessionCookie("tok", 604800, true)
	assert.Equal(t, c.String(), CookieString(c))

	rec := httptest.NewRecorder()
	http.SetCookie(rec, c)
	assert.Equal(t, rec.Header().Get("Set-Cookie"), CookieString(c))

	s := CookieString(ClearCookie(StateCookieName, false))
	assert.True(t, strings.HasPrefix(s, "oauth_state=;"), s)
	assert.Contains(t, s, "Max-Age=0")
	assert.Contains(t, s, "SameSite=Lax")
}

func TestCookies_Clear(t *testing.T) {
	c := ClearCookie(SessionCookieName, true)
	assert.Equal(t, "", c.Value)
	assert.Contains(t, c.String(), "Max-Age=0")

	st := StateCookie("github.x", false)
	assert.Equal(t, StateCookieName, st.Name)
	assert.Equal(t, 600, st.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, st.SameSite)
}

func TestParseCookies(t *testing.T) {
	got := ParseCookies("session=abc; oauth_state=xyz=123")
	assert.Equal(t, map[string]string{"session": "abc", "oauth_state": "xyz=123"}, got)

	got = ParseCookies(" a=1 ;b; =c; d= ")
	assert.Equal(t, map[string]string{"a": "1", "d": ""}, got)
}

func TestStateMatches(t *testing.T) {
	st := GenerateState(ProviderGitHub)
	assert.True(t, strings.HasPrefix(st, "github."))
	assert.NotEqual(t, st, GenerateState(ProviderGitHub))

	assert.True(t, StateMatches(ProviderGitHub, st, st))
	assert.False(t, StateMatches(ProviderGitHub, st, ""))
	assert.False(t, StateMatches(ProviderGitHub, "", st))
	assert.False(t, StateMatches(ProviderGitHub, st, st+"x"))
	assert.False(t, StateMatches(ProviderGoogle, st, st))
}

func TestResolveAccessToken(t *testing.T) {
	v, err := ResolveAccessToken(PlainToken("abc"))
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	v, err = ResolveAccessToken(LazyToken(func() string { return "lazy" }))
	require.NoError(t, err)
	assert.Equal(t, "lazy", v)

	_, err = ResolveAccessToken(PlainToken(""))
	assert.ErrorIs(t, err, ErrTokenExchange)
	_, err = ResolveAccessToken(nil)
	assert.ErrorIs(t, err, ErrTokenExchange)
}
