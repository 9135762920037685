package results

import (
	"strconv"
	"strings"

	"github.com/fjcanyue/smart-survey/internal/survey"
)

// Unanswered is shown for a missing or null answer.
const Unanswered = "未填写"

const (
	boolYes = "是"
	boolNo  = "否"
)

// FormatAnswer renders one answer for display. It never fails: unknown
// questions and unmatched values fall back to the raw value.
func FormatAnswer(value any, info *QuestionInfo) string {
	if value == nil {
		return Unanswered
	}
	if info == nil {
		return plain(value)
	}

	switch info.Type {
	case TypeRating:
		return formatRating(value, info)
	case TypeDropdown, TypeRadiogroup:
		if c, ok := survey.FindChoice(info.Choices, value); ok {
			return c.Text
		}
		return plain(value)
	case TypeCheckbox:
		arr, ok := value.([]any)
		if !ok {
			return plain(value)
		}
		parts := make([]string, 0, len(arr))
		for _, v := range arr {
			if c, ok := survey.FindChoice(info.Choices, v); ok {
				parts = append(parts, c.Text)
			} else {
				parts = append(parts, plain(v))
			}
		}
		return strings.Join(parts, ", ")
	case TypeBoolean:
		if truthy(value) {
			return boolYes
		}
		return boolNo
	}
	return plain(value)
}

func formatRating(value any, info *QuestionInfo) string {
	var b strings.Builder
	b.WriteString(plain(value))
	if info.RateMin != nil && info.RateMax != nil {
		b.WriteString(" (" + formatFloat(*info.RateMin) + "-" + formatFloat(*info.RateMax) + ")")
	}
	v, ok := survey.AsNumber(value)
	switch {
	case !ok:
	case info.RateMin != nil && v == *info.RateMin && info.MinRateDescription != "":
		b.WriteString(" - " + info.MinRateDescription)
	case info.RateMax != nil && v == *info.RateMax && info.MaxRateDescription != "":
		b.WriteString(" - " + info.MaxRateDescription)
	}
	return b.String()
}

// plain is the display form of a raw value; arrays are comma separated.
func plain(v any) string {
	if arr, ok := v.([]any); ok {
		parts := make([]string, len(arr))
		for i, x := range arr {
			parts[i] = plain(x)
		}
		return strings.Join(parts, ",")
	}
	return survey.Stringify(v)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	if f, ok := survey.AsNumber(v); ok {
		return f != 0
	}
	return true
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
