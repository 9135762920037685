package middlewares

import (
	"net/http"
	"strconv"

	httperrors "github.com/fjcanyue/smart-survey/internal/http/errors"
	"github.com/fjcanyue/smart-survey/internal/observability/logger"
	"github.com/fjcanyue/smart-survey/internal/rate"
)

// RateKeyFunc define la clave de rate limiting.
type RateKeyFunc func(r *http.Request) string

// IPRateKey agrupa por IP y path.
func IPRateKey(r *http.Request) string { return clientIP(r) + "|" + r.URL.Path }

// WithRateLimit limita con l. Sin limiter no hace nada; si el limiter falla
// el request pasa.
func WithRateLimit(l rate.Limiter, key RateKeyFunc) Middleware {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if key == nil {
		key = IPRateKey
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := l.Allow(r.Context(), key(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limit check failed", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if !res.Allowed {
				secs := int(res.RetryAfter.Seconds())
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				httperrors.WriteError(w, httperrors.ErrRateLimitExceeded)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
