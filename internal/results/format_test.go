package results

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fjcanyue/smart-survey/internal/survey"
)

func f(v float64) *float64 { return &v }

func TestFormatAnswer(t *testing.T) {
	rating := &QuestionInfo{
		Type: TypeRating, RateMin: f(1), RateMax: f(10),
		MinRateDescription: "绝对不会", MaxRateDescription: "肯定会推荐",
	}
	choices := []survey.Choice{{Value: "a", Text: "Apple"}, {Value: "b", Text: "Banana"}}

	tests := []struct {
		name  string
		value any
		info  *QuestionInfo
		want  string
	}{
		{"nil is unanswered", nil, rating, Unanswered},
		{"no info", "hello", nil, "hello"},
		{"no info array", []any{"x", "y"}, nil, "x,y"},
		{"rating middle", 7.0, rating, "7 (1-10)"},
		{"rating at max", 10.0, rating, "10 (1-10) - 肯定会推荐"},
		{"rating at min", 1.0, rating, "1 (1-10) - 绝对不会"},
		{"rating without bounds", 3.0, &QuestionInfo{Type: TypeRating}, "3"},
		{"radiogroup match", "b", &QuestionInfo{Type: TypeRadiogroup, Choices: choices}, "Banana"},
		{"dropdown no match", "z", &QuestionInfo{Type: TypeDropdown, Choices: choices}, "z"},
		{"checkbox", []any{"a", "z"}, &QuestionInfo{Type: TypeCheckbox, Choices: choices}, "Apple, z"},
		{"boolean true", true, &QuestionInfo{Type: TypeBoolean}, "是"},
		{"boolean false", false, &QuestionInfo{Type: TypeBoolean}, "否"},
		{"text", "free text", &QuestionInfo{Type: "text"}, "free text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAnswer(tt.value, tt.info))
		})
	}
}
