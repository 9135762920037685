// Package core define los tipos persistidos y los contratos de repositorio
// que implementa cada driver.
package core

import (
	"encoding/json"
	"time"
)

// Survey es una encuesta guardada. JSON es la definición SurveyJS tal cual
// la envió el cliente (se conservan los campos desconocidos).
type Survey struct {
	ID         string
	Title      string
	JSON       json.RawMessage
	ThemeType  string
	OwnerID    *string
	OwnerEmail *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasOwner indica si la encuesta ya fue reclamada por un usuario.
func (s *Survey) HasOwner() bool { return s.OwnerID != nil && *s.OwnerID != "" }

// Result es una respuesta enviada: nombre de pregunta → valor.
type Result struct {
	ID        string
	SurveyID  string
	Data      json.RawMessage
	CreatedAt time.Time
}

// ResultStats resume las respuestas de una encuesta.
type ResultStats struct {
	Total            int
	LatestSubmission *time.Time
}
