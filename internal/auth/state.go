package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/google/uuid"
)

// GenerateState returns a fresh random CSRF state bound to provider:
// "{provider}.{uuid v4}".
func GenerateState(p Provider) string {
	return string(p) + "." + uuid.NewString()
}

// StateMatches requires a non-empty cookie that equals the query state byte
// for byte and was issued for provider p.
func StateMatches(p Provider, queryState, cookieState string) bool {
	if cookieState == "" || queryState == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(queryState), []byte(cookieState)) != 1 {
		return false
	}
	return strings.HasPrefix(cookieState, string(p)+".")
}
