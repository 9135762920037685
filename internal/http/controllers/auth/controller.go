// Package auth contiene los controllers del login social.
package auth

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fjcanyue/smart-survey/internal/audit"
	"github.com/fjcanyue/smart-survey/internal/auth"
	"github.com/fjcanyue/smart-survey/internal/http/dto"
	httperrors "github.com/fjcanyue/smart-survey/internal/http/errors"
	"github.com/fjcanyue/smart-survey/internal/http/helpers"
	mw "github.com/fjcanyue/smart-survey/internal/http/middlewares"
	"github.com/fjcanyue/smart-survey/internal/metrics"
	"github.com/fjcanyue/smart-survey/internal/observability/logger"
)

// Controller maneja /api/auth/*.
type Controller struct {
	orch *auth.Orchestrator
}

func NewController(orch *auth.Orchestrator) *Controller {
	return &Controller{orch: orch}
}

// Login maneja GET /api/auth/login/{provider}.
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("auth.Login"), logger.Provider(provider))

	res, err := c.orch.Login(r.Context(), provider)
	if err != nil {
		log.Info("login rejected", logger.Err(err))
		switch {
		case errors.Is(err, auth.ErrUnsupportedProvider):
			httperrors.WriteError(w, httperrors.ErrUnsupportedProvider)
		case errors.Is(err, auth.ErrProviderNotConfigured):
			httperrors.WriteError(w, httperrors.ErrProviderNotConfigured)
		default:
			helpers.WriteError(w, r, err)
		}
		return
	}
	http.SetCookie(w, res.StateCookie)
	http.Redirect(w, r, res.RedirectURL, http.StatusFound)
}

// Callback maneja GET /api/auth/callback/{provider}. Siempre redirige al
// frontend, con sesión o con el error en la query.
func (c *Controller) Callback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("auth.Callback"), logger.Provider(provider))

	req := auth.CallbackRequest{
		Provider: provider,
		Code:     r.URL.Query().Get("code"),
		State:    r.URL.Query().Get("state"),
	}
	if ck, err := r.Cookie(auth.StateCookieName); err == nil {
		req.StateCookie = ck.Value
	}

	res := c.orch.Callback(r.Context(), req)
	for _, ck := range res.Cookies {
		http.SetCookie(w, ck)
	}
	if res.Err != nil {
		metrics.AuthLogins.WithLabelValues(provider, "failed").Inc()
		log.Warn("oauth callback failed", logger.Err(res.Err))
		audit.Log(r.Context(), audit.EventLoginFailed, logger.Provider(provider), logger.Err(res.Err))
	} else {
		metrics.AuthLogins.WithLabelValues(provider, "success").Inc()
		log.Info("session established", logger.UserID(res.Profile.UserID))
		audit.Log(r.Context(), audit.EventLogin, logger.Provider(provider),
			logger.UserID(res.Profile.UserID), audit.Email(res.Profile.Email))
	}
	http.Redirect(w, r, res.RedirectURL, http.StatusFound)
}

// Logout maneja POST /api/auth/logout.
func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	var token string
	if ck, err := r.Cookie(auth.SessionCookieName); err == nil {
		token = ck.Value
	}
	clear, err := c.orch.Logout(r.Context(), token)
	if err != nil {
		logger.From(r.Context()).Warn("session revocation failed", logger.Op("auth.Logout"), logger.Err(err))
	}
	if u := mw.GetUser(r.Context()); u != nil {
		audit.Log(r.Context(), audit.EventLogout, logger.UserID(u.UserID))
	}
	http.SetCookie(w, clear)
	helpers.WriteJSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}

// Me maneja GET /api/auth/me.
func (c *Controller) Me(w http.ResponseWriter, r *http.Request) {
	u := mw.GetUser(r.Context())
	if u == nil {
		helpers.WriteJSON(w, http.StatusUnauthorized, dto.MeResponse{Authenticated: false})
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MeResponse{Authenticated: true, User: u})
}
