package survey

import (
	"fmt"
	"strings"
)

// Validation reasons, shown to the editor as-is.
const (
	reasonNoPages       = "问卷必须包含 pages 数组"
	reasonEmptyPages    = "问卷至少需要包含一个页面"
	reasonNoElements    = "每个页面必须包含 elements 数组"
	reasonEmptyElements = "每个页面至少需要包含一个问题"
	reasonElementFields = "每个问题必须包含 type, name, title 字段"
)

// ValidateDefinition checks the minimum structure a survey must have: a
// non-empty pages array, a non-empty elements array per page, and type, name
// and title on every element. Errors wrap ErrInvalidDefinition.
func ValidateDefinition(raw []byte) error {
	m, err := decodeObject(raw)
	if err != nil {
		return err
	}
	pages, ok := m["pages"].([]any)
	if !ok {
		return invalid(reasonNoPages)
	}
	if len(pages) == 0 {
		return invalid(reasonEmptyPages)
	}
	for _, p := range pages {
		pm, _ := p.(map[string]any)
		elements, ok := pm["elements"].([]any)
		if !ok {
			return invalid(reasonNoElements)
		}
		if len(elements) == 0 {
			return invalid(reasonEmptyElements)
		}
		for _, e := range elements {
			em, _ := e.(map[string]any)
			if !present(em["type"]) || !present(em["name"]) || !present(em["title"]) {
				return invalid(reasonElementFields)
			}
		}
	}
	return nil
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidDefinition, reason)
}

// Reason extracts the human readable part of a validation error.
func Reason(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{ErrInvalidDraft, ErrInvalidDefinition} {
		if r, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
			return r
		}
	}
	return msg
}

// present mirrors a truthiness check: missing, empty string, false and null
// all count as absent. Titles may be localized objects.
func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case bool:
		return t
	}
	return true
}
