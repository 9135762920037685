package auth

import (
	"fmt"
	"strings"
)

// Provider identifies a social login provider.
type Provider string

const (
	ProviderGitHub    Provider = "github"
	ProviderGoogle    Provider = "google"
	ProviderMicrosoft Provider = "microsoft"
	// ProviderTwitter is declared so that it parses, but has no flow yet.
	ProviderTwitter Provider = "twitter"
)

// SupportedProviders have a working authorization code flow.
var SupportedProviders = []Provider{ProviderGitHub, ProviderGoogle, ProviderMicrosoft}

// ParseProvider accepts any declared provider name, case-insensitively.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case ProviderGitHub, ProviderGoogle, ProviderMicrosoft, ProviderTwitter:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, s)
}

// Supported reports whether p has an implemented flow.
func (p Provider) Supported() bool {
	for _, sp := range SupportedProviders {
		if p == sp {
			return true
		}
	}
	return false
}

func (p Provider) String() string { return string(p) }

// scopes are fixed per provider.
func (p Provider) scopes() []string {
	switch p {
	case ProviderGitHub:
		return []string{"user:email"}
	case ProviderGoogle, ProviderMicrosoft:
		return []string{"openid", "profile", "email"}
	}
	return nil
}

// GenerateUserID derives the stable user id "{provider}:{providerUserID}".
func GenerateUserID(provider, providerUserID string) string {
	return strings.ToLower(provider) + ":" + providerUserID
}
