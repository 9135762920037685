package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedDraft: the reply is not a survey document.
var ErrMalformedDraft = errors.New("llm: reply is not a survey definition")

var (
	leadingJSONFence = regexp.MustCompile("(?i)^```json\\s*")
	leadingFence     = regexp.MustCompile("^```\\s*")
	trailingFence    = regexp.MustCompile("```\\s*$")
)

// CleanJSON strips markdown code fences around a model reply.
func CleanJSON(reply string) string {
	s := strings.TrimSpace(reply)
	s = leadingJSONFence.ReplaceAllString(s, "")
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ParseDraft cleans reply and checks it is an object with a title and a
// pages array. The returned bytes are the cleaned reply, unchanged.
func ParseDraft(reply string) (json.RawMessage, error) {
	cleaned := CleanJSON(reply)
	var head struct {
		Title any `json:"title"`
		Pages any `json:"pages"`
	}
	if err := json.Unmarshal([]byte(cleaned), &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDraft, err)
	}
	if !present(head.Title) {
		return nil, fmt.Errorf("%w: missing title", ErrMalformedDraft)
	}
	if _, ok := head.Pages.([]any); !ok {
		return nil, fmt.Errorf("%w: pages is not an array", ErrMalformedDraft)
	}
	return json.RawMessage(cleaned), nil
}

func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	}
	return true
}
