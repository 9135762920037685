// Package server construye el handler HTTP con todas sus dependencias.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fjcanyue/smart-survey/internal/auth"
	"github.com/fjcanyue/smart-survey/internal/cache"
	"github.com/fjcanyue/smart-survey/internal/config"
	"github.com/fjcanyue/smart-survey/internal/email"
	authctl "github.com/fjcanyue/smart-survey/internal/http/controllers/auth"
	resultsctl "github.com/fjcanyue/smart-survey/internal/http/controllers/results"
	surveysctl "github.com/fjcanyue/smart-survey/internal/http/controllers/surveys"
	systemctl "github.com/fjcanyue/smart-survey/internal/http/controllers/system"
	mw "github.com/fjcanyue/smart-survey/internal/http/middlewares"
	"github.com/fjcanyue/smart-survey/internal/http/router"
	"github.com/fjcanyue/smart-survey/internal/llm"
	"github.com/fjcanyue/smart-survey/internal/observability/logger"
	"github.com/fjcanyue/smart-survey/internal/rate"
	"github.com/fjcanyue/smart-survey/internal/results"
	"github.com/fjcanyue/smart-survey/internal/store"
	"github.com/fjcanyue/smart-survey/internal/store/core"
	"github.com/fjcanyue/smart-survey/internal/store/pg"
	"github.com/fjcanyue/smart-survey/internal/survey"
	"github.com/fjcanyue/smart-survey/internal/util"
)

// App es el resultado del wiring.
type App struct {
	Handler http.Handler
	Repo    core.Repository
	Cache   cache.Client
	// Cleanup cierra store y caché.
	Cleanup func() error
}

// Build abre store y caché según cfg y arma el handler.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.From(ctx).With(logger.Component("wiring"))

	stCfg := store.Config{
		Driver: cfg.Storage.Driver,
		DSN:    cfg.Storage.DSN,
		Postgres: pg.PoolConfig{
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		},
		Migrate: true,
	}
	stCfg.Mongo.URI = cfg.Storage.Mongo.URI
	if stCfg.Mongo.URI == "" {
		stCfg.Mongo.URI = cfg.Storage.DSN
	}
	stCfg.Mongo.Database = cfg.Storage.Mongo.Database

	repo, err := store.Open(ctx, stCfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Info("store ready", logger.String("driver", cfg.Storage.Driver), logger.String("dsn", util.MaskDSN(cfg.Storage.DSN)))

	cc, err := cache.New(ctx, cache.Config{
		Driver:     cfg.Cache.Kind,
		Addr:       cfg.Cache.Redis.Addr,
		Password:   cfg.Cache.Redis.Password,
		DB:         cfg.Cache.Redis.DB,
		Prefix:     cfg.Cache.Redis.Prefix,
		DefaultTTL: cfg.MemoryDefaultTTL(),
	})
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("open cache: %w", err)
	}
	log.Info("cache ready", logger.String("kind", cfg.Cache.Kind))

	h, err := NewHandler(cfg, repo, cc)
	if err != nil {
		_ = cc.Close()
		_ = repo.Close()
		return nil, err
	}
	return &App{
		Handler: h,
		Repo:    repo,
		Cache:   cc,
		Cleanup: func() error {
			cerr := cc.Close()
			if err := repo.Close(); err != nil {
				return err
			}
			return cerr
		},
	}, nil
}

// NewHandler arma servicios, controllers y router sobre repo y cc.
func NewHandler(cfg *config.Config, repo core.Repository, cc cache.Client) (http.Handler, error) {
	return newHandler(cfg, repo, cc, auth.ClientOptions{})
}

// newHandler acepta endpoints OAuth alternativos (tests contra un proveedor falso).
func newHandler(cfg *config.Config, repo core.Repository, cc cache.Client, oauthOpts auth.ClientOptions) (http.Handler, error) {
	// sesiones + oauth
	sessOpts := []auth.SessionOption{auth.WithSessionTTL(cfg.SessionTTL())}
	if cfg.Auth.Revocation {
		sessOpts = append(sessOpts, auth.WithDenylist(auth.CacheDenylist{Cache: cc}))
	}
	sessions := auth.NewSessionManager(cfg.Auth.JWTSecret, cfg.IsProduction(), sessOpts...)
	clients := auth.NewClientSet(map[auth.Provider]auth.Credentials{
		auth.ProviderGitHub:    credentials(cfg.Providers.GitHub),
		auth.ProviderGoogle:    credentials(cfg.Providers.Google),
		auth.ProviderMicrosoft: credentials(cfg.Providers.Microsoft),
	}, cfg.App.URL, oauthOpts)
	orch := auth.NewOrchestrator(clients, sessions, cfg.App.FrontendURL)

	// dominio
	gen := llm.FromConfig(llm.Config{
		OpenAI: llm.OpenAIConfig{
			APIKey:  cfg.LLM.OpenAI.APIKey,
			BaseURL: cfg.LLM.OpenAI.BaseURL,
			Model:   cfg.LLM.OpenAI.Model,
		},
		Gemini:  llm.GeminiConfig{APIKey: cfg.LLM.Gemini.APIKey},
		Claude:  llm.ClaudeConfig{APIKey: cfg.LLM.Claude.APIKey},
		Timeout: cfg.LLMTimeout(),
	})
	surveys := survey.NewService(repo, survey.Options{
		Cache:     cc,
		CacheTTL:  cfg.SurveyCacheTTL(),
		Generator: gen,
	})

	resOpts := results.Options{FrontendURL: cfg.App.FrontendURL}
	if cfg.Notify.OnResult && cfg.SMTPConfigured() {
		resOpts.Notifier = &email.Notifier{Sender: email.NewSMTPSender(email.SMTPConfig{
			Host:               cfg.SMTP.Host,
			Port:               cfg.SMTP.Port,
			From:               cfg.SMTP.From,
			Username:           cfg.SMTP.Username,
			Password:           cfg.SMTP.Password,
			TLSMode:            cfg.SMTP.TLS,
			InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
		})}
	}
	resultsSvc := results.NewService(surveys, repo, resOpts)

	// rate limiting
	var loginLimiter, generateLimiter rate.Limiter
	if cfg.Rate.Enabled {
		loginLimiter = newLimiter(cc, "rl:login:", cfg.Rate.Login)
		generateLimiter = newLimiter(cc, "rl:generate:", cfg.Rate.Generate)
	}

	// métricas
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		mc := mw.MetricsConfig{}
		if p, ok := repo.(interface{ Pool() *pgxpool.Pool }); ok {
			mc.PGPool = p.Pool
		}
		h, err := mw.RegisterMetrics(mc)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		metricsHandler = h
	}

	return router.New(router.Deps{
		Auth:    authctl.NewController(orch),
		Surveys: surveysctl.NewController(surveys),
		Results: resultsctl.NewController(resultsSvc),
		System: systemctl.NewController(map[string]systemctl.Pinger{
			"store": repo,
			"cache": cc,
		}),
		Sessions:        sessions,
		CORSOrigins:     cfg.Server.CORSAllowedOrigins,
		TrustProxy:      cfg.Server.TrustProxy,
		LoginLimiter:    loginLimiter,
		GenerateLimiter: generateLimiter,
		Metrics:         metricsHandler,
	}), nil
}

func credentials(p config.OAuthProvider) auth.Credentials {
	return auth.Credentials{ClientID: p.ClientID, ClientSecret: p.ClientSecret, TenantID: p.TenantID}
}

// newLimiter comparte el cliente Redis de la caché cuando existe.
func newLimiter(cc cache.Client, prefix string, rl config.RateLimit) rate.Limiter {
	if r, ok := cc.(*cache.Redis); ok {
		return rate.NewRedisLimiter(r.Raw(), prefix, rl.Limit, rl.WindowDuration())
	}
	return rate.NewMemoryLimiter(rl.Limit, rl.WindowDuration())
}
