// Package results contiene los controllers de /api/results.
package results

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fjcanyue/smart-survey/internal/http/dto"
	httperrors "github.com/fjcanyue/smart-survey/internal/http/errors"
	"github.com/fjcanyue/smart-survey/internal/http/helpers"
	"github.com/fjcanyue/smart-survey/internal/results"
	"github.com/fjcanyue/smart-survey/internal/survey"
)

type Controller struct {
	svc *results.Service
}

func NewController(svc *results.Service) *Controller {
	return &Controller{svc: svc}
}

// Submit maneja POST /api/results/{surveyId} con body {data:{...}}.
func (c *Controller) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	id, err := c.svc.Submit(r.Context(), chi.URLParam(r, "surveyId"), req.Data)
	if err != nil {
		c.fail(w, r, err, httperrors.ErrSubmitFailed)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.SubmitResponse{Success: true, ResultID: id})
}

// List maneja GET /api/results/{surveyId}?limit&offset.
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	limit := helpers.QueryInt(r, "limit", results.DefaultListLimit)
	offset := helpers.QueryInt(r, "offset", 0)
	page, err := c.svc.List(r.Context(), chi.URLParam(r, "surveyId"), limit, offset)
	if err != nil {
		c.fail(w, r, err, httperrors.ErrResultsFailed)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.NewResultsResponse(page))
}

// Stats maneja GET /api/results/{surveyId}/stats.
func (c *Controller) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := c.svc.Stats(r.Context(), chi.URLParam(r, "surveyId"))
	if err != nil {
		c.fail(w, r, err, httperrors.ErrResultsFailed)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.NewStatsResponse(st))
}

func (c *Controller) fail(w http.ResponseWriter, r *http.Request, err error, fallback *httperrors.AppError) {
	switch {
	case errors.Is(err, results.ErrInvalidAnswers):
		httperrors.WriteError(w, httperrors.ErrInvalidAnswers)
	case errors.Is(err, survey.ErrNotFound):
		httperrors.WriteError(w, httperrors.ErrSurveyNotFound)
	default:
		helpers.WriteError(w, r, fallback.WithDetail(err.Error()).WithCause(err))
	}
}
