// Package surveys contiene los controllers de /api/surveys.
package surveys

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fjcanyue/smart-survey/internal/audit"
	"github.com/fjcanyue/smart-survey/internal/http/dto"
	httperrors "github.com/fjcanyue/smart-survey/internal/http/errors"
	"github.com/fjcanyue/smart-survey/internal/http/helpers"
	mw "github.com/fjcanyue/smart-survey/internal/http/middlewares"
	"github.com/fjcanyue/smart-survey/internal/observability/logger"
	"github.com/fjcanyue/smart-survey/internal/survey"
)

type Controller struct {
	svc *survey.Service
}

func NewController(svc *survey.Service) *Controller {
	return &Controller{svc: svc}
}

// Generate maneja POST /api/surveys/generate. La sesión es opcional.
func (c *Controller) Generate(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	out, err := c.svc.Generate(r.Context(), mw.GetUser(r.Context()), req.Prompt)
	if err != nil {
		switch {
		case errors.Is(err, survey.ErrEmptyPrompt):
			httperrors.WriteError(w, httperrors.ErrMissingPrompt)
		case errors.Is(err, survey.ErrInvalidDraft):
			helpers.WriteError(w, r, httperrors.ErrInvalidDraft.WithReason(survey.Reason(err)).WithCause(err))
		default:
			helpers.WriteError(w, r, httperrors.ErrGenerateFailed.WithDetail(err.Error()).WithCause(err))
		}
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.GenerateResponse{ID: out.ID, JSON: out.JSON})
}

// Save maneja POST /api/surveys.
func (c *Controller) Save(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveSurveyRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	u := mw.GetUser(r.Context())
	in := survey.SaveInput{ID: req.ID, JSON: req.JSON, ThemeType: req.ThemeType}
	outcome, err := c.svc.Save(r.Context(), u, in)
	if err != nil {
		c.fail(w, r, err, httperrors.ErrSaveFailed)
		return
	}
	if outcome == survey.OutcomeClaimed {
		audit.Log(r.Context(), audit.EventSurveyClaimed, logger.SurveyID(in.ID), logger.UserID(u.UserID))
	}
	helpers.WriteJSON(w, http.StatusOK, dto.SaveSurveyResponse{Success: true, ID: strings.TrimSpace(req.ID)})
}

// Get maneja GET /api/surveys/{id}.
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	s, err := c.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		c.fail(w, r, err, httperrors.ErrLoadFailed)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.NewSurveyResponse(s))
}

// Delete maneja DELETE /api/surveys/{id}.
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	u := mw.GetUser(r.Context())
	id := chi.URLParam(r, "id")
	if err := c.svc.Delete(r.Context(), u, id); err != nil {
		c.fail(w, r, err, httperrors.ErrInternalServerError)
		return
	}
	audit.Log(r.Context(), audit.EventSurveyDeleted, logger.SurveyID(id), logger.UserID(u.UserID))
	helpers.WriteJSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}

// Mine maneja GET /api/surveys/my?limit&offset.
func (c *Controller) Mine(w http.ResponseWriter, r *http.Request) {
	u := mw.GetUser(r.Context())
	limit := helpers.QueryInt(r, "limit", survey.DefaultListLimit)
	offset := helpers.QueryInt(r, "offset", 0)

	page, err := c.svc.ListMine(r.Context(), u, limit, offset)
	if err != nil {
		c.fail(w, r, err, httperrors.ErrLoadFailed)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MySurveysResponse{
		Surveys: dto.NewSurveySummaries(page.Surveys),
		Total:   page.Total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		User:    u,
	})
}

// fail traduce los sentinels del servicio; lo demás cae en fallback (5xx).
func (c *Controller) fail(w http.ResponseWriter, r *http.Request, err error, fallback *httperrors.AppError) {
	switch {
	case errors.Is(err, survey.ErrUnauthenticated):
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
	case errors.Is(err, survey.ErrForbidden):
		logger.From(r.Context()).Info("survey access denied", logger.Layer("controller"))
		httperrors.WriteError(w, httperrors.ErrForbidden)
	case errors.Is(err, survey.ErrNotFound):
		httperrors.WriteError(w, httperrors.ErrSurveyNotFound)
	case errors.Is(err, survey.ErrMissingFields):
		httperrors.WriteError(w, httperrors.ErrMissingSurveyFields)
	case errors.Is(err, survey.ErrInvalidDefinition):
		httperrors.WriteError(w, httperrors.ErrInvalidSurvey.WithReason(survey.Reason(err)))
	default:
		helpers.WriteError(w, r, fallback.WithDetail(err.Error()).WithCause(err))
	}
}
