package core

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	// ErrOwned: el update no aplica porque otro usuario ya es dueño.
	ErrOwned = errors.New("owned by another user")
)
