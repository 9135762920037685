package auth

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// UserProfile is the canonical user record embedded in the session.
type UserProfile struct {
	UserID   string  `json:"userId"`
	Provider string  `json:"provider"`
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Avatar   *string `json:"avatar"`
}

// Normalize maps a provider's raw profile onto UserProfile. It is pure and
// total over the supported providers.
func Normalize(p Provider, raw RawProfile) (UserProfile, error) {
	var id, email, name string
	var avatar *string

	switch p {
	case ProviderGitHub:
		id = str(raw["id"])
		email = str(raw["email"])
		name = firstNonEmpty(str(raw["name"]), str(raw["login"]))
		avatar = strPtr(raw["avatar_url"])
	case ProviderGoogle:
		id = str(raw["id"])
		email = str(raw["email"])
		name = str(raw["name"])
		avatar = strPtr(raw["picture"])
	case ProviderMicrosoft:
		// Graph /me has no avatar URL.
		id = str(raw["id"])
		email = firstNonEmpty(str(raw["userPrincipalName"]), str(raw["mail"]))
		name = str(raw["displayName"])
	default:
		return UserProfile{}, fmt.Errorf("%w: %s", ErrUnsupportedProvider, p)
	}

	return UserProfile{
		UserID:   GenerateUserID(string(p), id),
		Provider: string(p),
		Email:    email,
		Name:     name,
		Avatar:   avatar,
	}, nil
}

// ProviderUserID is the part of UserID after the provider prefix.
func (u UserProfile) ProviderUserID() string {
	n := len(u.Provider) + 1
	if len(u.UserID) < n {
		return ""
	}
	return u.UserID[n:]
}

func str(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func strPtr(v any) *string {
	s := str(v)
	if s == "" {
		return nil
	}
	return &s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
