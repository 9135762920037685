package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fjcanyue/smart-survey/migrations"
)

// Migrate aplica los *_up.sql embebidos que falten y devuelve las versiones
// aplicadas.
func Migrate(ctx context.Context, db *sql.DB) ([]string, error) {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at DATETIME NOT NULL
		)`); err != nil {
		return nil, fmt.Errorf("schema_migrations: %w", err)
	}

	files, err := migrations.Up(migrations.SQLiteFS, migrations.SQLiteDir)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, f := range files {
		var n int
		if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, f.Version).Scan(&n); err != nil {
			return applied, err
		}
		if n > 0 {
			continue
		}
		if err := apply(ctx, db, f); err != nil {
			return applied, fmt.Errorf("migration %s: %w", f.Version, err)
		}
		applied = append(applied, f.Version)
	}
	return applied, nil
}

// Rollback ejecuta los *_down.sql aplicados, del más reciente hacia atrás.
// steps <= 0 revierte todo.
func Rollback(ctx context.Context, db *sql.DB, steps int) ([]string, error) {
	files, err := migrations.Down(migrations.SQLiteFS, migrations.SQLiteDir)
	if err != nil {
		return nil, err
	}
	var reverted []string
	for _, f := range files {
		if steps > 0 && len(reverted) >= steps {
			break
		}
		var n int
		if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, f.Version).Scan(&n); err != nil {
			return reverted, err
		}
		if n == 0 {
			continue
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return reverted, err
		}
		if _, err := tx.ExecContext(ctx, f.SQL); err != nil {
			_ = tx.Rollback()
			return reverted, fmt.Errorf("migration %s: %w", f.Version, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = ?`, f.Version); err != nil {
			_ = tx.Rollback()
			return reverted, err
		}
		if err := tx.Commit(); err != nil {
			return reverted, err
		}
		reverted = append(reverted, f.Version)
	}
	return reverted, nil
}

func apply(ctx context.Context, db *sql.DB, f migrations.File) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, f.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
		f.Version, time.Now().UTC()); err != nil {
		return err
	}
	return tx.Commit()
}
