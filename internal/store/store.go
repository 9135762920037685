// Package store abre el repositorio según el driver configurado.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/fjcanyue/smart-survey/internal/store/core"
	"github.com/fjcanyue/smart-survey/internal/store/memory"
	"github.com/fjcanyue/smart-survey/internal/store/mongo"
	"github.com/fjcanyue/smart-survey/internal/store/pg"
	"github.com/fjcanyue/smart-survey/internal/store/sqlite"
)

type Config struct {
	Driver   string
	DSN      string
	Postgres pg.PoolConfig
	Mongo    struct{ URI, Database string }
	// Migrate aplica las migraciones embebidas al abrir (sqlite siempre migra).
	Migrate bool
}

// Open devuelve el core.Repository del driver.
func Open(ctx context.Context, cfg Config) (core.Repository, error) {
	switch strings.ToLower(cfg.Driver) {
	case "sqlite", "sqlite3", "":
		return sqlite.New(ctx, cfg.DSN)
	case "postgres", "pg", "postgresql":
		s, err := pg.New(ctx, cfg.DSN, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if cfg.Migrate {
			if _, err := pg.Migrate(ctx, s.Pool()); err != nil {
				_ = s.Close()
				return nil, err
			}
		}
		return s, nil
	case "mongo", "mongodb":
		return mongo.New(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}
}
