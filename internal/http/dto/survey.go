package dto

import (
	"encoding/json"
	"time"

	"github.com/fjcanyue/smart-survey/internal/auth"
	"github.com/fjcanyue/smart-survey/internal/store/core"
)

type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

type GenerateResponse struct {
	ID   string          `json:"id"`
	JSON json.RawMessage `json:"json"`
}

type SaveSurveyRequest struct {
	ID        string          `json:"id"`
	JSON      json.RawMessage `json:"json"`
	ThemeType string          `json:"themeType"`
}

type SaveSurveyResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

type SurveyResponse struct {
	ID        string          `json:"id"`
	JSON      json.RawMessage `json:"json"`
	Title     string          `json:"title"`
	ThemeType string          `json:"themeType"`
	CreatedAt time.Time       `json:"createdAt"`
	OwnerID   *string         `json:"ownerId"`
}

// SurveySummary es un elemento de /api/surveys/my; no incluye el json.
type SurveySummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ThemeType string    `json:"themeType"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type MySurveysResponse struct {
	Surveys []SurveySummary   `json:"surveys"`
	Total   int               `json:"total"`
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
	User    *auth.UserProfile `json:"user"`
}

func NewSurveyResponse(s *core.Survey) SurveyResponse {
	return SurveyResponse{
		ID:        s.ID,
		JSON:      s.JSON,
		Title:     s.Title,
		ThemeType: s.ThemeType,
		CreatedAt: s.CreatedAt,
		OwnerID:   s.OwnerID,
	}
}

func NewSurveySummaries(list []core.Survey) []SurveySummary {
	out := make([]SurveySummary, len(list))
	for i, s := range list {
		out[i] = SurveySummary{
			ID:        s.ID,
			Title:     s.Title,
			ThemeType: s.ThemeType,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		}
	}
	return out
}
