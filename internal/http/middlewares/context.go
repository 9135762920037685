package middlewares

import (
	"context"

	"github.com/fjcanyue/smart-survey/internal/auth"
)

type ctxKey string

const (
	ctxRequestIDKey ctxKey = "request_id"
	ctxUserKey      ctxKey = "user"
	ctxClientIPKey  ctxKey = "client_ip"
)

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetRequestID devuelve "" si WithRequestID no corrió.
func GetRequestID(ctx context.Context) string {
	if s, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return s
	}
	return ""
}

// WithUser inyecta el perfil de la sesión.
func WithUser(ctx context.Context, u *auth.UserProfile) context.Context {
	return context.WithValue(ctx, ctxUserKey, u)
}

// GetUser devuelve el usuario de la sesión o nil si es anónimo.
func GetUser(ctx context.Context) *auth.UserProfile {
	if u, ok := ctx.Value(ctxUserKey).(*auth.UserProfile); ok {
		return u
	}
	return nil
}
