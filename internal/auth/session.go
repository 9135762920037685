package auth

import (
	"context"
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fjcanyue/smart-survey/internal/observability/logger"
)

const (
	SessionCookieName = "session"
	StateCookieName   = "oauth_state"

	DefaultSessionTTL = 7 * 24 * time.Hour
	StateTTL          = 600 * time.Second
)

// SessionClaims is the signed session payload.
type SessionClaims struct {
	UserID   string  `json:"userId"`
	Provider string  `json:"provider"`
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Avatar   *string `json:"avatar"`
	jwtv5.RegisteredClaims
}

func (c *SessionClaims) profile() *UserProfile {
	return &UserProfile{
		UserID:   c.UserID,
		Provider: c.Provider,
		Email:    c.Email,
		Name:     c.Name,
		Avatar:   c.Avatar,
	}
}

// IssueSession signs an HS256 session for profile, valid from now for ttl.
func IssueSession(profile UserProfile, secret []byte, now time.Time, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("session: empty signing secret")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	claims := SessionClaims{
		UserID:   profile.UserID,
		Provider: profile.Provider,
		Email:    profile.Email,
		Name:     profile.Name,
		Avatar:   profile.Avatar,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(secret)
}

// parseSession checks signature (HS256 only) and expiry at now.
func parseSession(token string, secret []byte, now time.Time) (*SessionClaims, error) {
	if token == "" || len(secret) == 0 {
		return nil, ErrInvalidSession
	}
	claims := &SessionClaims{}
	_, err := jwtv5.ParseWithClaims(token, claims,
		func(*jwtv5.Token) (any, error) { return secret, nil },
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}
	if claims.UserID == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// VerifySession returns the profile in token, or nil if the token is
// malformed, signed with another secret, or expired.
func VerifySession(token string, secret []byte, now time.Time) *UserProfile {
	claims, err := parseSession(token, secret, now)
	if err != nil {
		return nil
	}
	return claims.profile()
}

// Denylist stores revoked session ids (jti).
type Denylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// SessionManager issues and verifies sessions and builds the auth cookies.
type SessionManager struct {
	secret     []byte
	ttl        time.Duration
	production bool
	now        func() time.Time
	denylist   Denylist
}

type SessionOption func(*SessionManager)

// WithSessionTTL overrides the 7 day lifetime.
func WithSessionTTL(d time.Duration) SessionOption {
	return func(m *SessionManager) {
		if d > 0 {
			m.ttl = d
		}
	}
}

// WithDenylist enables revocation on logout.
func WithDenylist(d Denylist) SessionOption {
	return func(m *SessionManager) { m.denylist = d }
}

// WithClock replaces time.Now (tests).
func WithClock(now func() time.Time) SessionOption {
	return func(m *SessionManager) { m.now = now }
}

func NewSessionManager(secret string, production bool, opts ...SessionOption) *SessionManager {
	m := &SessionManager{
		secret:     []byte(secret),
		ttl:        DefaultSessionTTL,
		production: production,
		now:        time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// TTL is the session lifetime, also used as the cookie Max-Age.
func (m *SessionManager) TTL() time.Duration { return m.ttl }

// Production reports whether cookies carry Secure and SameSite=None.
func (m *SessionManager) Production() bool { return m.production }

// Issue signs a session for profile.
func (m *SessionManager) Issue(profile UserProfile) (string, error) {
	return IssueSession(profile, m.secret, m.now(), m.ttl)
}

// Verify returns the session's profile or nil. Nil covers every failure,
// including a revoked session; callers treat it as "not logged in".
func (m *SessionManager) Verify(ctx context.Context, token string) *UserProfile {
	claims, err := parseSession(token, m.secret, m.now())
	if err != nil {
		if token != "" {
			logger.From(ctx).Debug("session rejected", logger.Err(err))
		}
		return nil
	}
	if m.denylist != nil && claims.ID != "" {
		revoked, err := m.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			// fail closed
			logger.From(ctx).Warn("session denylist unavailable", logger.Err(err))
			return nil
		}
		if revoked {
			return nil
		}
	}
	return claims.profile()
}

// Extract reads the session cookie out of a raw Cookie header and verifies it.
func (m *SessionManager) Extract(ctx context.Context, cookieHeader string) *UserProfile {
	if cookieHeader == "" {
		return nil
	}
	token, ok := ParseCookies(cookieHeader)[SessionCookieName]
	if !ok || token == "" {
		return nil
	}
	return m.Verify(ctx, token)
}

// Revoke denylists token until its natural expiry. Without a denylist it is
// a no-op: logout then only clears the cookie.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	if m.denylist == nil || token == "" {
		return nil
	}
	claims, err := parseSession(token, m.secret, m.now())
	if err != nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	return m.denylist.Revoke(ctx, claims.ID, ttl)
}
