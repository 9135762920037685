package dto

import (
	"encoding/json"
	"time"

	"github.com/fjcanyue/smart-survey/internal/results"
	"github.com/fjcanyue/smart-survey/internal/store/core"
)

type SubmitRequest struct {
	Data json.RawMessage `json:"data"`
}

type SubmitResponse struct {
	Success  bool   `json:"success"`
	ResultID string `json:"resultId"`
}

type ResultItem struct {
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"createdAt"`
}

type ResultsResponse struct {
	Results     []ResultItem `json:"results"`
	SurveyTitle string       `json:"surveyTitle"`
	Total       int          `json:"total"`
	Limit       int          `json:"limit"`
	Offset      int          `json:"offset"`
}

type QuestionStat struct {
	Name   string                `json:"name"`
	Title  string                `json:"title"`
	Type   string                `json:"type"`
	Labels []string              `json:"labels"`
	Counts []int                 `json:"counts"`
	Data   results.OrderedCounts `json:"data"`
}

type StatsResponse struct {
	SurveyID         string         `json:"surveyId"`
	SurveyTitle      string         `json:"surveyTitle"`
	Total            int            `json:"total"`
	LatestSubmission *time.Time     `json:"latestSubmission"`
	Questions        []QuestionStat `json:"questions"`
}

func NewResultsResponse(p results.Page) ResultsResponse {
	items := make([]ResultItem, len(p.Results))
	for i, r := range p.Results {
		items[i] = newResultItem(r)
	}
	return ResultsResponse{
		Results:     items,
		SurveyTitle: p.SurveyTitle,
		Total:       p.Total,
		Limit:       p.Limit,
		Offset:      p.Offset,
	}
}

func newResultItem(r core.Result) ResultItem {
	return ResultItem{ID: r.ID, Data: r.Data, CreatedAt: r.CreatedAt}
}

func NewStatsResponse(s *results.Stats) StatsResponse {
	qs := make([]QuestionStat, len(s.Questions))
	for i, q := range s.Questions {
		qs[i] = QuestionStat{
			Name:   q.Name,
			Title:  q.Title,
			Type:   q.Type,
			Labels: q.Labels(),
			Counts: q.Counts(),
			Data:   q.Data(),
		}
	}
	return StatsResponse{
		SurveyID:         s.SurveyID,
		SurveyTitle:      s.SurveyTitle,
		Total:            s.Total,
		LatestSubmission: s.LatestSubmission,
		Questions:        qs,
	}
}
