package auth

import (
	"fmt"
	"strings"
)

// AccessToken is what a code exchange yields: either the token itself or an
// accessor that produces it. Use ResolveAccessToken to get the string.
type AccessToken interface {
	isAccessToken()
}

// PlainToken is an access token already in hand.
type PlainToken string

// LazyToken produces the access token on demand.
type LazyToken func() string

func (PlainToken) isAccessToken() {}
func (LazyToken) isAccessToken()  {}

// ResolveAccessToken normalizes both AccessToken forms into a plain string.
// An empty result is a failed exchange.
func ResolveAccessToken(t AccessToken) (string, error) {
	var v string
	switch tok := t.(type) {
	case PlainToken:
		v = string(tok)
	case LazyToken:
		if tok != nil {
			v = tok()
		}
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("%w: access token not found in response", ErrTokenExchange)
	}
	return v, nil
}
