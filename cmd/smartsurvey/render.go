package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fjcanyue/smart-survey/internal/results"
	"github.com/fjcanyue/smart-survey/internal/survey"
)

type resultItem struct {
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"createdAt"`
}

type resultsPage struct {
	Results     []resultItem `json:"results"`
	SurveyTitle string       `json:"surveyTitle"`
	Total       int          `json:"total"`
	Limit       int          `json:"limit"`
	Offset      int          `json:"offset"`
}

type statsPage struct {
	SurveyTitle      string     `json:"surveyTitle"`
	Total            int        `json:"total"`
	LatestSubmission *time.Time `json:"latestSubmission"`
	Questions        []struct {
		Title  string   `json:"title"`
		Type   string   `json:"type"`
		Labels []string `json:"labels"`
		Counts []int    `json:"counts"`
	} `json:"questions"`
}

// renderResults imprime cada respuesta con los textos de las opciones en
// lugar de sus valores, en el orden de las preguntas.
func renderResults(w io.Writer, def *survey.Definition, page resultsPage) {
	idx := results.BuildQuestionIndex(def)
	var order []string
	for _, el := range def.Elements() {
		if _, ok := idx[el.Name]; ok {
			order = append(order, el.Name)
		}
	}

	fmt.Fprintf(w, "%s: %d 份答卷 (显示 %d-%d)\n", page.SurveyTitle, page.Total,
		min(page.Offset+1, page.Total), page.Offset+len(page.Results))
	for i, r := range page.Results {
		var answers map[string]any
		_ = survey.DecodeJSON(r.Data, &answers)

		fmt.Fprintf(w, "\n#%d  %s  %s\n", page.Offset+i+1, r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		for _, name := range order {
			info := idx[name]
			fmt.Fprintf(w, "  %s: %s\n", info.Title, results.FormatAnswer(answers[name], &info))
		}
	}
}

func renderStats(w io.Writer, st statsPage) {
	fmt.Fprintf(w, "%s: %d 份答卷\n", st.SurveyTitle, st.Total)
	if st.LatestSubmission != nil {
		fmt.Fprintf(w, "最近提交: %s\n", st.LatestSubmission.Local().Format("2006-01-02 15:04:05"))
	}
	for _, q := range st.Questions {
		fmt.Fprintf(w, "\n%s (%s)\n", q.Title, q.Type)
		total := 0
		for _, c := range q.Counts {
			total += c
		}
		for i, label := range q.Labels {
			n := 0
			if i < len(q.Counts) {
				n = q.Counts[i]
			}
			pct := 0.0
			if total > 0 {
				pct = float64(n) * 100 / float64(total)
			}
			fmt.Fprintf(w, "  %-20s %4d %5.1f%% %s\n", label, n, pct, strings.Repeat("#", int(pct/5)))
		}
	}
}
