package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"

	"github.com/fjcanyue/smart-survey/internal/config"
	"github.com/fjcanyue/smart-survey/internal/observability/logger"
	"github.com/fjcanyue/smart-survey/internal/store/pg"
	"github.com/fjcanyue/smart-survey/internal/store/sqlite"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to YAML config")
	flag.Parse()
	_ = godotenv.Load()

	// Positional args: [action] [steps]
	action := "up"
	steps := 1
	args := flag.Args()
	if len(args) >= 1 && args[0] != "" {
		action = strings.ToLower(args[0])
	}
	if len(args) >= 2 {
		if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
			steps = n
		}
	}

	if action != "up" && action != "down" {
		log.Fatalf("unknown action %q. Use: up | down [steps]", action)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}
	logger.Init(logger.Config{Env: cfg.App.Environment, Level: cfg.Log.Level, ServiceName: "smart-survey-migrate"})
	lg := logger.S()
	defer func() { _ = lg.Sync() }()
	ctx := context.Background()

	var done []string
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
		if err != nil {
			lg.Fatalf("pgxpool: %v", err)
		}
		defer pool.Close()
		done, err = run(action,
			func() ([]string, error) { return pg.Migrate(ctx, pool) },
			func() ([]string, error) { return pg.Rollback(ctx, pool, steps) })
		if err != nil {
			lg.Fatalf("%s: %v", action, err)
		}
	case "sqlite":
		db, err := sql.Open("sqlite3", cfg.Storage.DSN)
		if err != nil {
			lg.Fatalf("sqlite: %v", err)
		}
		defer db.Close()
		done, err = run(action,
			func() ([]string, error) { return sqlite.Migrate(ctx, db) },
			func() ([]string, error) { return sqlite.Rollback(ctx, db, steps) })
		if err != nil {
			lg.Fatalf("%s: %v", action, err)
		}
	default:
		lg.Fatalf("driver %q has no SQL migrations", cfg.Storage.Driver)
	}

	if len(done) == 0 {
		lg.Info("nothing to do")
		return
	}
	for _, v := range done {
		lg.Infof("OK %s", v)
	}
	lg.Infow("migrations applied", "action", action, "driver", cfg.Storage.Driver, "count", len(done))
}

func run(action string, up, down func() ([]string, error)) ([]string, error) {
	if action == "down" {
		return down()
	}
	return up()
}
