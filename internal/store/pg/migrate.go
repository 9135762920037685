package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fjcanyue/smart-survey/migrations"
)

const schemaMigrations = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version    TEXT PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Migrate aplica los *_up.sql embebidos que falten.
func Migrate(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	if _, err := pool.Exec(ctx, schemaMigrations); err != nil {
		return nil, fmt.Errorf("schema_migrations: %w", err)
	}
	files, err := migrations.Up(migrations.PostgresFS, migrations.PostgresDir)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, f := range files {
		done, err := isApplied(ctx, pool, f.Version)
		if err != nil {
			return applied, err
		}
		if done {
			continue
		}
		err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, f.SQL); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, f.Version)
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("migration %s: %w", f.Version, err)
		}
		applied = append(applied, f.Version)
	}
	return applied, nil
}

// Rollback revierte hasta steps migraciones aplicadas (todas si steps <= 0).
func Rollback(ctx context.Context, pool *pgxpool.Pool, steps int) ([]string, error) {
	if _, err := pool.Exec(ctx, schemaMigrations); err != nil {
		return nil, fmt.Errorf("schema_migrations: %w", err)
	}
	files, err := migrations.Down(migrations.PostgresFS, migrations.PostgresDir)
	if err != nil {
		return nil, err
	}

	var reverted []string
	for _, f := range files {
		if steps > 0 && len(reverted) >= steps {
			break
		}
		done, err := isApplied(ctx, pool, f.Version)
		if err != nil {
			return reverted, err
		}
		if !done {
			continue
		}
		err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, f.SQL); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `DELETE FROM schema_migrations WHERE version = $1`, f.Version)
			return err
		})
		if err != nil {
			return reverted, fmt.Errorf("migration %s: %w", f.Version, err)
		}
		reverted = append(reverted, f.Version)
	}
	return reverted, nil
}

func isApplied(ctx context.Context, pool *pgxpool.Pool, version string) (bool, error) {
	var ok bool
	err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&ok)
	return ok, err
}
