package auth

import (
	"context"
	"time"

	"github.com/fjcanyue/smart-survey/internal/cache"
)

// CacheDenylist keeps revoked session ids in a cache.Client.
type CacheDenylist struct {
	Cache cache.Client
}

func denyKey(jti string) string { return "session:revoked:" + jti }

func (d CacheDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return d.Cache.Set(ctx, denyKey(jti), "1", ttl)
}

func (d CacheDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return d.Cache.Exists(ctx, denyKey(jti))
}
