// Package dto define los cuerpos JSON de requests y respuestas.
package dto

import "github.com/fjcanyue/smart-survey/internal/auth"

type SuccessResponse struct {
	Success bool `json:"success"`
}

type MeResponse struct {
	Authenticated bool              `json:"authenticated"`
	User          *auth.UserProfile `json:"user,omitempty"`
}
