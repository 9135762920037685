package auth

import (
	"net/http"
	"strings"
)

// SessionCookie builds the session cookie. Always HttpOnly and Path=/.
// Production adds Secure and SameSite=None (frontend and API live on
// different origins); development uses SameSite=Lax without Secure, since
// browsers reject SameSite=None on non-Secure cookies.
func SessionCookie(token string, maxAgeSeconds int, production bool) *http.Cookie {
	return authCookie(SessionCookieName, token, maxAgeSeconds, production)
}

// CookieString is the Set-Cookie header form of c.
func CookieString(c *http.Cookie) string {
	return c.String()
}

// ClearCookie expires the named cookie with the same attribute rules.
// It serializes as Max-Age=0.
func ClearCookie(name string, production bool) *http.Cookie {
	return authCookie(name, "", -1, production)
}

// StateCookie carries the CSRF state for StateTTL.
func StateCookie(state string, production bool) *http.Cookie {
	return authCookie(StateCookieName, state, int(StateTTL.Seconds()), production)
}

func authCookie(name, value string, maxAge int, production bool) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   maxAge,
		SameSite: http.SameSiteLaxMode,
	}
	if production {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

// ParseCookies splits a Cookie header into name/value pairs. Values keep any
// "=" after the first one; entries without "=" or without a name are dropped.
func ParseCookies(header string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(header, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || name == "" {
			continue
		}
		out[name] = value
	}
	return out
}
