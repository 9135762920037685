// Package system contiene health checks, el listado de temas y /api/test.
package system

import (
	"context"
	"net/http"
	"time"

	"github.com/fjcanyue/smart-survey/internal/http/dto"
	"github.com/fjcanyue/smart-survey/internal/http/helpers"
	"github.com/fjcanyue/smart-survey/internal/observability/logger"
	"github.com/fjcanyue/smart-survey/internal/survey"
)

// Pinger es cualquier dependencia con chequeo de conectividad.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Controller struct {
	// checks se evalúan en /readyz; el nombre va en la respuesta.
	checks map[string]Pinger
}

func NewController(checks map[string]Pinger) *Controller {
	return &Controller{checks: checks}
}

// Healthz: liveness, no toca dependencias.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// Readyz: readiness, pinguea store y caché.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := dto.HealthResponse{Status: "ok", Checks: make(map[string]string, len(c.checks))}
	status := http.StatusOK
	for name, p := range c.checks {
		if err := p.Ping(ctx); err != nil {
			logger.From(ctx).Warn("readiness check failed", logger.Component(name), logger.Err(err))
			resp.Checks[name] = "fail"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	helpers.WriteJSON(w, status, resp)
}

// Themes maneja GET /api/themes.
func (c *Controller) Themes(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, survey.Themes())
}

// Test maneja GET /api/test.
func (c *Controller) Test(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "API is working"})
}
