// Package auth implements social login for Smart Survey: OAuth authorization
// code flows against GitHub, Google and Microsoft, normalization of provider
// profiles, and the stateless HS256 session carried in the "session" cookie.
//
// The pieces are layered leaves-first:
//
//	ClientSet / OAuthClient   authorize URL, code exchange, profile fetch
//	Normalize                 raw provider profile -> UserProfile
//	SessionManager            session JWT, cookies, CSRF state
//	Orchestrator              login -> callback -> session state machine
//
// Nothing in this package keeps per-request mutable state; a ClientSet and a
// SessionManager are built once per process and shared.
package auth
