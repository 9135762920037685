// Package results stores survey submissions and turns them into per-question
// distributions and readable answers.
package results

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/fjcanyue/smart-survey/internal/survey"
)

// Question types that get a distribution.
const (
	TypeDropdown   = "dropdown"
	TypeRadiogroup = "radiogroup"
	TypeCheckbox   = "checkbox"
	TypeRating     = "rating"
	TypeBoolean    = "boolean"
)

const (
	defaultRateMin = 1
	defaultRateMax = 5
)

// QuestionInfo is what formatting and aggregation need to know about a
// question.
type QuestionInfo struct {
	Title              string
	Type               string
	Choices            []survey.Choice
	RateMin            *float64
	RateMax            *float64
	MinRateDescription string
	MaxRateDescription string
}

// BuildQuestionIndex maps question name to its info across all pages. A later
// duplicate name overwrites an earlier one.
func BuildQuestionIndex(def *survey.Definition) map[string]QuestionInfo {
	idx := make(map[string]QuestionInfo)
	for _, el := range def.Elements() {
		if el.Name == "" || el.Title == "" {
			continue
		}
		idx[el.Name] = QuestionInfo{
			Title:              el.Title,
			Type:               el.Type,
			Choices:            el.Choices,
			RateMin:            numPtr(el.RateMin),
			RateMax:            numPtr(el.RateMax),
			MinRateDescription: el.MinRateDescription,
			MaxRateDescription: el.MaxRateDescription,
		}
	}
	return idx
}

// Bucket is one label of a distribution.
type Bucket struct {
	Label string
	Count int
}

// QuestionStat is the distribution of one question. Buckets keep their
// declaration order.
type QuestionStat struct {
	Name    string
	Title   string
	Type    string
	Buckets []Bucket
}

// Labels and Counts are the chart series.
func (q QuestionStat) Labels() []string {
	out := make([]string, len(q.Buckets))
	for i, b := range q.Buckets {
		out[i] = b.Label
	}
	return out
}

func (q QuestionStat) Counts() []int {
	out := make([]int, len(q.Buckets))
	for i, b := range q.Buckets {
		out[i] = b.Count
	}
	return out
}

// Data is the label→count object, encoded in bucket order.
func (q QuestionStat) Data() OrderedCounts { return OrderedCounts(q.Buckets) }

// OrderedCounts encodes as a JSON object whose keys keep bucket order.
type OrderedCounts []Bucket

func (o OrderedCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, b := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(b.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(b.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Answers is one submission decoded with json.Number values.
type Answers map[string]any

// DecodeAnswers decodes a stored result payload. Non-object payloads yield
// an empty map.
func DecodeAnswers(raw []byte) Answers {
	var m map[string]any
	if err := survey.DecodeJSON(raw, &m); err != nil || m == nil {
		return Answers{}
	}
	return m
}

// ComputeDistribution counts answers per bucket for dropdown, radiogroup,
// checkbox and rating questions. Questions that end up without buckets are
// left out. Unmatched or out of range answers are skipped.
func ComputeDistribution(def *survey.Definition, answers []Answers) []QuestionStat {
	stats := []QuestionStat{}
	for _, el := range def.Elements() {
		var st *QuestionStat
		switch el.Type {
		case TypeRating:
			st = ratingStat(el, answers)
		case TypeDropdown, TypeRadiogroup, TypeCheckbox:
			st = choiceStat(el, answers)
		}
		if st != nil && len(st.Buckets) > 0 {
			stats = append(stats, *st)
		}
	}
	return stats
}

func ratingStat(el survey.Element, answers []Answers) *QuestionStat {
	lo, hi := ratingBounds(el)
	st := &QuestionStat{Name: el.Name, Title: el.Title, Type: el.Type}
	if hi < lo || hi-lo > 1000 {
		return st
	}
	for v := lo; v <= hi; v++ {
		st.Buckets = append(st.Buckets, Bucket{Label: strconv.Itoa(v)})
	}
	for _, a := range answers {
		f, ok := survey.AsNumber(a[el.Name])
		if !ok {
			// SurveyJS may store the rating as its string value
			s, isStr := a[el.Name].(string)
			if !isStr {
				continue
			}
			if f, ok = parseFloat(s); !ok {
				continue
			}
		}
		if f != math.Trunc(f) || f < float64(lo) || f > float64(hi) {
			continue
		}
		st.Buckets[int(f)-lo].Count++
	}
	return st
}

func choiceStat(el survey.Element, answers []Answers) *QuestionStat {
	st := &QuestionStat{Name: el.Name, Title: el.Title, Type: el.Type}
	// choices with the same text share one bucket
	pos := make(map[string]int)
	for _, c := range el.Choices {
		if _, dup := pos[c.Text]; dup {
			continue
		}
		pos[c.Text] = len(st.Buckets)
		st.Buckets = append(st.Buckets, Bucket{Label: c.Text})
	}
	if len(st.Buckets) == 0 {
		return st
	}

	count := func(v any) {
		if c, ok := survey.FindChoice(el.Choices, v); ok {
			st.Buckets[pos[c.Text]].Count++
		}
	}
	for _, a := range answers {
		v, ok := a[el.Name]
		if !ok || v == nil {
			continue
		}
		if el.Type == TypeCheckbox {
			if arr, ok := v.([]any); ok {
				for _, item := range arr {
					count(item)
				}
				continue
			}
		}
		count(v)
	}
	return st
}

func ratingBounds(el survey.Element) (int, int) {
	lo, hi := defaultRateMin, defaultRateMax
	if f := numPtr(el.RateMin); f != nil && *f == math.Trunc(*f) {
		lo = int(*f)
	}
	if f := numPtr(el.RateMax); f != nil && *f == math.Trunc(*f) {
		hi = int(*f)
	}
	return lo, hi
}

func numPtr(n json.Number) *float64 {
	if n == "" {
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil
	}
	return &f
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}
