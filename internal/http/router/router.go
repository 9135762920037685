// Package router arma el árbol de rutas chi del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fjcanyue/smart-survey/internal/auth"
	authctl "github.com/fjcanyue/smart-survey/internal/http/controllers/auth"
	resultsctl "github.com/fjcanyue/smart-survey/internal/http/controllers/results"
	surveysctl "github.com/fjcanyue/smart-survey/internal/http/controllers/surveys"
	systemctl "github.com/fjcanyue/smart-survey/internal/http/controllers/system"
	httperrors "github.com/fjcanyue/smart-survey/internal/http/errors"
	mw "github.com/fjcanyue/smart-survey/internal/http/middlewares"
	"github.com/fjcanyue/smart-survey/internal/observability/errreport"
	"github.com/fjcanyue/smart-survey/internal/rate"
)

// Deps son las dependencias del router. Los limiters y Metrics son opcionales.
type Deps struct {
	Auth     *authctl.Controller
	Surveys  *surveysctl.Controller
	Results  *resultsctl.Controller
	System   *systemctl.Controller
	Sessions *auth.SessionManager

	CORSOrigins     []string
	// TrustProxy habilita X-Forwarded-For/X-Real-IP para la IP del cliente.
	TrustProxy      bool
	LoginLimiter    rate.Limiter
	GenerateLimiter rate.Limiter
	// Metrics es el handler de /metrics; nil lo deshabilita.
	Metrics         http.Handler
}

// New devuelve el handler raíz.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	// orden: el primero es el más externo
	r.Use(
		mw.WithRequestID(),
		mw.WithClientIP(d.TrustProxy),
		mw.WithLogging(),
		mw.WithRecover(),
		errreport.Middleware,
		mw.WithCORS(d.CORSOrigins),
		mw.WithSecurityHeaders(),
		mw.WithMetrics(),
		mw.WithSession(d.Sessions),
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	r.Get("/healthz", d.System.Healthz)
	r.Get("/readyz", d.System.Readyz)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/test", d.System.Test)
		r.Get("/themes", d.System.Themes)

		r.Route("/auth", func(r chi.Router) {
			r.With(mw.WithRateLimit(d.LoginLimiter, nil)).Get("/login/{provider}", d.Auth.Login)
			r.Get("/callback/{provider}", d.Auth.Callback)
			r.Post("/logout", d.Auth.Logout)
			r.Get("/me", d.Auth.Me)
		})

		r.Route("/surveys", func(r chi.Router) {
			r.With(mw.WithRateLimit(d.GenerateLimiter, nil)).Post("/generate", d.Surveys.Generate)
			r.Get("/{id}", d.Surveys.Get)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireUser())
				r.Get("/my", d.Surveys.Mine)
				r.Post("/", d.Surveys.Save)
				r.Delete("/{id}", d.Surveys.Delete)
			})
		})

		r.Route("/results/{surveyId}", func(r chi.Router) {
			r.Post("/", d.Results.Submit)
			r.Get("/", d.Results.List)
			r.Get("/stats", d.Results.Stats)
		})
	})

	return r
}
