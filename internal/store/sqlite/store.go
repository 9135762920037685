// Package sqlite implementa core.Repository sobre database/sql + go-sqlite3.
// Es el driver por defecto.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/fjcanyue/smart-survey/internal/store/core"
)

type Store struct{ db *sql.DB }

var _ core.Repository = (*Store)(nil)

// New abre la base y aplica las migraciones pendientes.
func New(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite serializa escrituras; una conexión evita "database is locked"
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// DB expone la conexión (CLI de migraciones).
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Ping(ctx context.Context) error {
	var one int
	return s.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one)
}

func (s *Store) Close() error { return s.db.Close() }

const surveyCols = `id, title, json, theme_type, owner_id, owner_email, created_at, updated_at`

type rowScanner interface{ Scan(dest ...any) error }

func scanSurvey(row rowScanner) (*core.Survey, error) {
	var (
		sv                         core.Survey
		title, ownerID, ownerEmail sql.NullString
		raw                        string
	)
	if err := row.Scan(&sv.ID, &title, &raw, &sv.ThemeType, &ownerID, &ownerEmail, &sv.CreatedAt, &sv.UpdatedAt); err != nil {
		return nil, err
	}
	sv.Title = title.String
	sv.JSON = json.RawMessage(raw)
	sv.OwnerID = nullable(ownerID)
	sv.OwnerEmail = nullable(ownerEmail)
	return &sv, nil
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func (s *Store) CreateSurvey(ctx context.Context, sv *core.Survey) error {
	now := time.Now().UTC()
	if sv.CreatedAt.IsZero() {
		sv.CreatedAt = now
	}
	sv.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO surveys (`+surveyCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sv.ID, sv.Title, string(sv.JSON), sv.ThemeType, sv.OwnerID, sv.OwnerEmail, sv.CreatedAt, sv.UpdatedAt)
	if isUniqueViolation(err) {
		return core.ErrConflict
	}
	return err
}

func (s *Store) UpdateSurvey(ctx context.Context, sv *core.Survey) error {
	sv.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE surveys
		SET title = ?, json = ?, theme_type = ?, owner_id = ?, owner_email = ?, updated_at = ?
		WHERE id = ? AND (owner_id IS NULL OR owner_id = ?)`,
		sv.Title, string(sv.JSON), sv.ThemeType, sv.OwnerID, sv.OwnerEmail, sv.UpdatedAt, sv.ID, sv.OwnerID)
	if err != nil {
		return err
	}
	if err := affected(res); !errors.Is(err, core.ErrNotFound) {
		return err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM surveys WHERE id = ?`, sv.ID).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return core.ErrOwned
	}
	return core.ErrNotFound
}

func (s *Store) GetSurvey(ctx context.Context, id string) (*core.Survey, error) {
	sv, err := scanSurvey(s.db.QueryRowContext(ctx, `SELECT `+surveyCols+` FROM surveys WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	return sv, err
}

func (s *Store) ListSurveysByOwner(ctx context.Context, ownerID string, limit, offset int) ([]core.Survey, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM surveys WHERE owner_id = ?`, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+surveyCols+` FROM surveys
		WHERE owner_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`, ownerID, sqlLimit(limit), offset)
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
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE survey_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM surveys WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := affected(res); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) CreateResult(ctx context.Context, r *core.Result) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO results (id, survey_id, data, created_at)
		VALUES (?, ?, ?, ?)`, r.ID, r.SurveyID, string(r.Data), r.CreatedAt)
	if isUniqueViolation(err) {
		return core.ErrConflict
	}
	return err
}

func (s *Store) ListResults(ctx context.Context, surveyID string, limit, offset int) ([]core.Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, survey_id, data, created_at FROM results
		WHERE survey_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`, surveyID, sqlLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []core.Result{}
	for rows.Next() {
		var (
			r    core.Result
			data string
		)
		if err := rows.Scan(&r.ID, &r.SurveyID, &data, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Data = json.RawMessage(data)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ResultStats(ctx context.Context, surveyID string) (core.ResultStats, error) {
	var st core.ResultStats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results WHERE survey_id = ?`, surveyID).Scan(&st.Total); err != nil {
		return st, err
	}
	var latest time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT created_at FROM results
		WHERE survey_id = ?
		ORDER BY created_at DESC
		LIMIT 1`, surveyID).Scan(&latest)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return st, err
	default:
		st.LatestSubmission = &latest
	}
	return st, nil
}

// sqlite: LIMIT -1 es "sin límite".
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
