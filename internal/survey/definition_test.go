package survey

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDefinition(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		reason string
	}{
		{"valid", `{"pages":[{"elements":[{"type":"text","name":"q1","title":"Q1"}]}]}`, ""},
		{"not an object", `[1,2]`, "问卷数据不是有效的对象"},
		{"no pages", `{"title":"x"}`, reasonNoPages},
		{"pages not array", `{"pages":{}}`, reasonNoPages},
		{"empty pages", `{"pages":[]}`, reasonEmptyPages},
		{"no elements", `{"pages":[{"name":"p1"}]}`, reasonNoElements},
		{"empty elements", `{"pages":[{"elements":[]}]}`, reasonEmptyElements},
		{"missing title", `{"pages":[{"elements":[{"type":"text","name":"q1"}]}]}`, reasonElementFields},
		{"blank name", `{"pages":[{"elements":[{"type":"text","name":"","title":"Q"}]}]}`, reasonElementFields},
		{"second page bad", `{"pages":[{"elements":[{"type":"text","name":"q","title":"Q"}]},{"elements":[]}]}`, reasonEmptyElements},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDefinition([]byte(tt.raw))
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidDefinition)
			assert.Equal(t, tt.reason, Reason(err))
		})
	}
}

func TestParseDefinition_Choices(t *testing.T) {
	raw := `{"title":"T","pages":[{"name":"p1","elements":[
		{"type":"radiogroup","name":"color","title":"Color","choices":["red",{"value":"g","text":"Green"},{"value":3},{"text":"no value"}]},
		{"type":"rating","name":"r","title":"R","rateMin":1,"rateMax":10,"minRateDescription":"bad"}
	]}]}`
	def, err := ParseDefinition([]byte(raw))
	require.NoError(t, err)
	els := def.Elements()
	require.Len(t, els, 2)

	ch := els[0].Choices
	require.Len(t, ch, 3)
	assert.Equal(t, Choice{Value: "red", Text: "red"}, ch[0])
	assert.Equal(t, "Green", ch[1].Text)
	assert.Equal(t, "3", ch[2].Text)

	assert.Equal(t, json.Number("10"), els[1].RateMax)
	assert.Equal(t, "bad", els[1].MinRateDescription)
}

func TestParseDefinition_Tolerant(t *testing.T) {
	def, err := ParseDefinition([]byte(`{"pages":[1,{"elements":"x"},{"elements":[null,{"type":"text"}]}]}`))
	require.NoError(t, err)
	assert.Len(t, def.Elements(), 1)

	_, err = ParseDefinition([]byte(`"str"`))
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, ValuesEqual(json.Number("5"), json.Number("5.0")))
	assert.True(t, ValuesEqual("a", "a"))
	assert.False(t, ValuesEqual("5", json.Number("5")))
	assert.False(t, ValuesEqual(true, "true"))
	assert.False(t, ValuesEqual(nil, nil))
}

func TestIDs(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	re := regexp.MustCompile(`^survey_1700000000123_[0-9a-z]{9}$`)
	id := NewSurveyID(now)
	assert.Regexp(t, re, id)
	assert.NotEqual(t, id, NewSurveyID(now))
	assert.Regexp(t, `^result_1700000000123_[0-9a-z]{9}$`, NewResultID(now))
}

func TestThemes(t *testing.T) {
	themes := Themes()
	assert.Len(t, themes, 16)
	assert.Equal(t, Theme{ID: "default-light", Type: "default", Mode: "light"}, themes[0])
	assert.Equal(t, "contrast-dark", themes[15].ID)

	assert.Equal(t, "sharp", NormalizeTheme("sharp"))
	assert.Equal(t, DefaultTheme, NormalizeTheme("neon"))
	assert.Equal(t, DefaultTheme, NormalizeTheme(""))
}
