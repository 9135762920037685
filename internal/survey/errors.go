package survey

import "errors"

var (
	ErrNotFound          = errors.New("survey not found")
	ErrForbidden         = errors.New("survey belongs to another user")
	ErrUnauthenticated   = errors.New("authentication required")
	ErrMissingFields     = errors.New("missing survey id or json")
	ErrInvalidDefinition = errors.New("invalid survey definition")
	ErrEmptyPrompt       = errors.New("missing survey prompt")
	// ErrInvalidDraft is a generated definition that failed validation.
	ErrInvalidDraft = errors.New("generated survey is invalid")
)
