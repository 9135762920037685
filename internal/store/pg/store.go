// Package pg implementa core.Repository sobre PostgreSQL (pgx/v5).
package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fjcanyue/smart-survey/internal/store/core"
)

type Store struct{ pool *pgxpool.Pool }

var _ core.Repository = (*Store)(nil)

// PoolConfig es el tuning opcional del pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

func New(ctx context.Context, dsn string, cfg PoolConfig) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	// MaxIdleConns → MinConns (pgxpool)
	if cfg.MaxIdleConns > 0 {
		pcfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime != "" {
		if d, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil {
			pcfg.MaxConnLifetime = d
			pcfg.MaxConnIdleTime = d
		}
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 10
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Pool expone el pool interno (migraciones).
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Ping(ctx context.Context) error {
	var one int
	return s.pool.QueryRow(ctx, `SELECT 1`).Scan(&one)
}

// Close cierra el pool (idempotente).
func (s *Store) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

const surveyCols = `id, COALESCE(title, ''), json, theme_type, owner_id, owner_email, created_at, updated_at`

func scanSurvey(row pgx.Row) (*core.Survey, error) {
	var (
		sv  core.Survey
		raw []byte
	)
	if err := row.Scan(&sv.ID, &sv.Title, &raw, &sv.ThemeType, &sv.OwnerID, &sv.OwnerEmail, &sv.CreatedAt, &sv.UpdatedAt); err != nil {
		return nil, err
	}
	sv.JSON = raw
	return &sv, nil
}

func (s *Store) CreateSurvey(ctx context.Context, sv *core.Survey) error {
	now := time.Now().UTC()
	if sv.CreatedAt.IsZero() {
		sv.CreatedAt = now
	}
	sv.UpdatedAt = now
	_, err := s.pool.Exec(ctx, `
		INSERT INTO surveys (id, title, json, theme_type, owner_id, owner_email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sv.ID, sv.Title, string(sv.JSON), sv.ThemeType, sv.OwnerID, sv.OwnerEmail, sv.CreatedAt, sv.UpdatedAt)
	if isUniqueViolation(err) {
		return core.ErrConflict
	}
	return err
}

func (s *Store) UpdateSurvey(ctx context.Context, sv *core.Survey) error {
	sv.UpdatedAt = time.Now().UTC()
	tag, err := s.pool.Exec(ctx, `
		UPDATE surveys
		SET title = $2, json = $3, theme_type = $4, owner_id = $5, owner_email = $6, updated_at = $7
		WHERE id = $1 AND (owner_id IS NULL OR owner_id = $5)`,
		sv.ID, sv.Title, string(sv.JSON), sv.ThemeType, sv.OwnerID, sv.OwnerEmail, sv.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM surveys WHERE id = $1)`, sv.ID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return core.ErrOwned
	}
	return core.ErrNotFound
}

func (s *Store) GetSurvey(ctx context.Context, id string) (*core.Survey, error) {
	sv, err := scanSurvey(s.pool.QueryRow(ctx, `SELECT `+surveyCols+` FROM surveys WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	return sv, err
}

func (s *Store) ListSurveysByOwner(ctx context.Context, ownerID string, limit, offset int) ([]core.Survey, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM surveys WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+surveyCols+` FROM surveys
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, ownerID, pgLimit(limit), offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []core.Survey{}
	for rows.Next() {
		sv, err := scanSurvey(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *sv)
	}
	return out, total, rows.Err()
}

func (s *Store) DeleteSurvey(ctx context.Context, id string) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM results WHERE survey_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM surveys WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return core.ErrNotFound
		}
		return nil
	})
}

func (s *Store) CreateResult(ctx context.Context, r *core.Result) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO results (id, survey_id, data, created_at)
		VALUES ($1, $2, $3, $4)`, r.ID, r.SurveyID, string(r.Data), r.CreatedAt)
	if isUniqueViolation(err) {
		return core.ErrConflict
	}
	return err
}

func (s *Store) ListResults(ctx context.Context, surveyID string, limit, offset int) ([]core.Result, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, survey_id, data, created_at FROM results
		WHERE survey_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, surveyID, pgLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []core.Result{}
	for rows.Next() {
		var (
			r    core.Result
			data []byte
		)
		if err := rows.Scan(&r.ID, &r.SurveyID, &data, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Data = data
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ResultStats(ctx context.Context, surveyID string) (core.ResultStats, error) {
	var st core.ResultStats
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*), MAX(created_at) FROM results WHERE survey_id = $1`, surveyID).
		Scan(&st.Total, &st.LatestSubmission)
	return st, err
}

// LIMIT NULL es "sin límite" en Postgres.
func pgLimit(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
