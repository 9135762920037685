package auth

import "errors"

var (
	ErrUnsupportedProvider   = errors.New("unsupported provider")
	ErrProviderNotConfigured = errors.New("provider not configured")
	ErrMissingCode           = errors.New("missing authorization code")
	ErrStateMismatch         = errors.New("state mismatch")
	ErrTokenExchange         = errors.New("token exchange failed")
	ErrUpstreamProfile       = errors.New("failed to fetch user profile")

	// ErrInvalidSession is only used for logging; Verify reports failures as nil.
	ErrInvalidSession = errors.New("invalid session")
)

// publicMessage is the text placed in the frontend error redirect. Internal
// details (upstream bodies, wrapped causes) never reach the browser.
func publicMessage(err error) string {
	for _, known := range []error{
		ErrUnsupportedProvider,
		ErrProviderNotConfigured,
		ErrMissingCode,
		ErrStateMismatch,
		ErrTokenExchange,
		ErrUpstreamProfile,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "authentication failed"
}
