package core

import "context"

// SurveyRepository persiste encuestas.
type SurveyRepository interface {
	// CreateSurvey inserta; ErrConflict si el id ya existe.
	CreateSurvey(ctx context.Context, s *Survey) error
	// UpdateSurvey reemplaza título, json, tema y dueño. Solo aplica si la
	// encuesta no tiene dueño o su dueño es s.OwnerID; si no, ErrOwned.
	// ErrNotFound si no existe.
	UpdateSurvey(ctx context.Context, s *Survey) error
	// GetSurvey lee siempre del backend (read-your-writes).
	GetSurvey(ctx context.Context, id string) (*Survey, error)
	// ListSurveysByOwner ordena por created_at desc y devuelve también el total.
	ListSurveysByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Survey, int, error)
	// DeleteSurvey borra primero los resultados y luego la encuesta.
	DeleteSurvey(ctx context.Context, id string) error
}

// ResultRepository persiste respuestas.
type ResultRepository interface {
	CreateResult(ctx context.Context, r *Result) error
	// ListResults ordena por created_at desc. limit <= 0 trae todo.
	ListResults(ctx context.Context, surveyID string, limit, offset int) ([]Result, error)
	ResultStats(ctx context.Context, surveyID string) (ResultStats, error)
}

// Repository es lo que abre store.Open.
type Repository interface {
	SurveyRepository
	ResultRepository
	// Ping valida la conexión (SELECT 1 en SQL).
	Ping(ctx context.Context) error
	Close() error
}
