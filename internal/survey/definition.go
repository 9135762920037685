package survey

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Definition is the typed view of a SurveyJS document. The raw JSON stays the
// stored form; this view only serves validation and aggregation.
type Definition struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Pages       []Page `json:"pages"`
}

type Page struct {
	Name     string    `json:"name"`
	Elements []Element `json:"elements"`
}

// Element is one question.
type Element struct {
	Type               string      `json:"type"`
	Name               string      `json:"name"`
	Title              string      `json:"title"`
	Choices            []Choice    `json:"choices,omitempty"`
	IsRequired         bool        `json:"isRequired,omitempty"`
	Rows               int         `json:"rows,omitempty"`
	RateMin            json.Number `json:"rateMin,omitempty"`
	RateMax            json.Number `json:"rateMax,omitempty"`
	RateStep           json.Number `json:"rateStep,omitempty"`
	MinRateDescription string      `json:"minRateDescription,omitempty"`
	MaxRateDescription string      `json:"maxRateDescription,omitempty"`
}

// Choice is a normalized choice. SurveyJS accepts a bare value or
// {value, text}; a bare value is its own text.
type Choice struct {
	Value any    `json:"value"`
	Text  string `json:"text"`
}

// Elements flattens every page, in document order.
func (d *Definition) Elements() []Element {
	if d == nil {
		return nil
	}
	var out []Element
	for _, p := range d.Pages {
		out = append(out, p.Elements...)
	}
	return out
}

// ParseDefinition decodes raw into a Definition. Only a non-object document is
// an error; malformed pages, elements or choices are skipped so that stored
// surveys always aggregate.
func ParseDefinition(raw []byte) (*Definition, error) {
	m, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	def := &Definition{
		Title:       text(m["title"]),
		Description: text(m["description"]),
	}
	pages, _ := m["pages"].([]any)
	for _, p := range pages {
		pm, ok := p.(map[string]any)
		if !ok {
			continue
		}
		page := Page{Name: text(pm["name"])}
		elements, _ := pm["elements"].([]any)
		for _, e := range elements {
			if em, ok := e.(map[string]any); ok {
				page.Elements = append(page.Elements, parseElement(em))
			}
		}
		def.Pages = append(def.Pages, page)
	}
	return def, nil
}

func parseElement(m map[string]any) Element {
	el := Element{
		Type:               text(m["type"]),
		Name:               text(m["name"]),
		Title:              text(m["title"]),
		RateMin:            number(m["rateMin"]),
		RateMax:            number(m["rateMax"]),
		RateStep:           number(m["rateStep"]),
		MinRateDescription: text(m["minRateDescription"]),
		MaxRateDescription: text(m["maxRateDescription"]),
	}
	el.IsRequired, _ = m["isRequired"].(bool)
	if n, err := number(m["rows"]).Int64(); err == nil {
		el.Rows = int(n)
	}
	choices, _ := m["choices"].([]any)
	for _, c := range choices {
		if ch, ok := parseChoice(c); ok {
			el.Choices = append(el.Choices, ch)
		}
	}
	return el
}

func parseChoice(v any) (Choice, bool) {
	switch c := v.(type) {
	case string:
		return Choice{Value: c, Text: c}, true
	case json.Number:
		return Choice{Value: c, Text: c.String()}, true
	case bool:
		return Choice{Value: c, Text: strconv.FormatBool(c)}, true
	case map[string]any:
		val, ok := c["value"]
		if !ok || val == nil {
			return Choice{}, false
		}
		t := text(c["text"])
		if t == "" {
			t = Stringify(val)
		}
		return Choice{Value: val, Text: t}, true
	}
	return Choice{}, false
}

// Matches reports whether answer selects this choice. Numbers compare
// numerically, everything else compares exactly.
func (c Choice) Matches(answer any) bool { return ValuesEqual(c.Value, answer) }

// FindChoice returns the first choice matching answer.
func FindChoice(choices []Choice, answer any) (Choice, bool) {
	for _, c := range choices {
		if c.Matches(answer) {
			return c, true
		}
	}
	return Choice{}, false
}

// ValuesEqual compares two decoded JSON scalars.
func ValuesEqual(a, b any) bool {
	if fa, ok := AsNumber(a); ok {
		fb, ok := AsNumber(b)
		return ok && fa == fb
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	return false
}

// AsNumber reports the numeric value of a decoded JSON number.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Stringify renders a decoded JSON value as plain text.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any, map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
	return fmt.Sprint(v)
}

// DecodeJSON decodes keeping numbers as json.Number.
func DecodeJSON(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

func decodeObject(raw []byte) (map[string]any, error) {
	var v any
	if err := DecodeJSON(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: 问卷数据不是有效的对象", ErrInvalidDefinition)
	}
	return m, nil
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	}
	return ""
}

func number(v any) json.Number {
	switch n := v.(type) {
	case json.Number:
		return n
	case string:
		if _, err := strconv.ParseFloat(n, 64); err == nil {
			return json.Number(n)
		}
	}
	return ""
}
