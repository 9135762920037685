// Package errreport envía panics y errores 5xx a Sentry. Sin DSN todo es no-op.
package errreport

import (
	"context"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
)

type Config struct {
	DSN         string
	Environment string
	Release     string
	// TracesSampleRate 0 desactiva tracing.
	TracesSampleRate float64
}

var enabled bool

// Init configura el cliente global. Devuelve una función flush para el shutdown.
func Init(cfg Config) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		EnableTracing:    cfg.TracesSampleRate > 0,
		TracesSampleRate: cfg.TracesSampleRate,
	})
	if err != nil {
		return func() {}, err
	}
	enabled = true
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// Enabled indica si Init configuró un DSN.
func Enabled() bool { return enabled }

// Middleware agrega un hub por request y reporta panics (re-panic para que el
// recover propio responda 500).
func Middleware(next http.Handler) http.Handler {
	if !enabled {
		return next
	}
	return sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle(next)
}

// CaptureError reporta err usando el hub del request si existe.
func CaptureError(ctx context.Context, err error, tags map[string]string) {
	if !enabled || err == nil {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		hub.CaptureException(err)
	})
}

// CapturePanic reporta un valor recuperado.
func CapturePanic(ctx context.Context, v any) {
	if !enabled {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	hub.Recover(v)
}
