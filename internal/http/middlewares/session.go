package middlewares

import (
	"net/http"

	"github.com/fjcanyue/smart-survey/internal/auth"
	httperrors "github.com/fjcanyue/smart-survey/internal/http/errors"
	"github.com/fjcanyue/smart-survey/internal/observability/logger"
)

// WithSession resuelve la cookie de sesión y deja el perfil en el contexto.
// Sin sesión válida el request sigue como anónimo.
func WithSession(sessions *auth.SessionManager) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := sessions.Extract(r.Context(), r.Header.Get("Cookie"))
			if u == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithUser(r.Context(), u)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(u.UserID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser responde 401 si WithSession no dejó usuario.
func RequireUser() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetUser(r.Context()) == nil {
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
