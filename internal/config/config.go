package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DevJWTSecret es el secreto por defecto en desarrollo. Rechazado en producción.
const DevJWTSecret = "dev-only-insecure-jwt-secret-change-me"

type Config struct {
	App struct {
		// development | production
		Environment string `yaml:"environment"`
		// Base pública del backend; se usa para armar los redirect URIs de OAuth.
		URL string `yaml:"url"`
		// Base del frontend (dashboard y ruta de error de login).
		FrontendURL string `yaml:"frontend_url"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
		ReadTimeout        string   `yaml:"read_timeout"`
		WriteTimeout       string   `yaml:"write_timeout"`
		// Solo con un proxy propio delante: habilita X-Forwarded-For.
		TrustProxy         bool     `yaml:"trust_proxy"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Storage struct {
		// sqlite | postgres | mongo | memory
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
		Mongo struct {
			URI      string `yaml:"uri"`
			Database string `yaml:"database"`
		} `yaml:"mongo"`
	} `yaml:"storage"`

	Cache struct {
		// memory | redis
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
		// TTL de la caché de lectura de encuestas; "0" la desactiva.
		SurveyTTL string `yaml:"survey_ttl"`
	} `yaml:"cache"`

	Auth struct {
		JWTSecret  string `yaml:"jwt_secret"`
		SessionTTL string `yaml:"session_ttl"`
		// Revocation activa la denylist de sesiones (por jti) en la caché.
		Revocation bool `yaml:"revocation"`
	} `yaml:"auth"`

	Providers struct {
		GitHub    OAuthProvider `yaml:"github"`
		Google    OAuthProvider `yaml:"google"`
		Microsoft OAuthProvider `yaml:"microsoft"`
	} `yaml:"providers"`

	LLM struct {
		OpenAI struct {
			APIKey  string `yaml:"api_key"`
			BaseURL string `yaml:"base_url"`
			Model   string `yaml:"model"`
		} `yaml:"openai"`
		Gemini struct {
			APIKey string `yaml:"api_key"`
		} `yaml:"gemini"`
		Claude struct {
			APIKey string `yaml:"api_key"`
		} `yaml:"claude"`
		Timeout string `yaml:"timeout"`
	} `yaml:"llm"`

	Rate struct {
		Enabled  bool      `yaml:"enabled"`
		Generate RateLimit `yaml:"generate"`
		Login    RateLimit `yaml:"login"`
	} `yaml:"rate"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"` // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	} `yaml:"smtp"`

	Notify struct {
		OnResult bool `yaml:"on_result"`
	} `yaml:"notify"`

	Sentry struct {
		DSN string `yaml:"dsn"`
	} `yaml:"sentry"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`
}

// OAuthProvider son las credenciales de un proveedor social.
type OAuthProvider struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	// Solo Microsoft (Entra ID). Default "common".
	TenantID string `yaml:"tenant_id"`
}

// Configured indica si hay client id y secret.
func (p OAuthProvider) Configured() bool {
	return strings.TrimSpace(p.ClientID) != "" && strings.TrimSpace(p.ClientSecret) != ""
}

type RateLimit struct {
	Limit  int    `yaml:"limit"`
	Window string `yaml:"window"`
}

// WindowDuration parsea Window; Load ya lo validó.
func (r RateLimit) WindowDuration() time.Duration {
	d, _ := time.ParseDuration(r.Window)
	return d
}

// Load lee el YAML en path (opcional: un path vacío o inexistente usa solo
// defaults + env), aplica overrides por env y valida.
func Load(path string) (*Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	c.applyEnvOverrides()
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.App.URL == "" {
		c.App.URL = "http://localhost:8787"
	}
	if c.App.FrontendURL == "" {
		c.App.FrontendURL = "http://localhost:5173"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8787"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "15s"
	}
	// generate puede tardar lo que tarde el LLM
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "90s"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.Driver == "sqlite" && c.Storage.DSN == "" {
		c.Storage.DSN = "file:smart-survey.db?_foreign_keys=on"
	}
	if c.Storage.Mongo.Database == "" {
		c.Storage.Mongo.Database = "smart_survey"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "smartsurvey:"
	}
	if c.Cache.SurveyTTL == "" {
		c.Cache.SurveyTTL = "1m"
	}
	if c.Auth.JWTSecret == "" && !c.IsProduction() {
		c.Auth.JWTSecret = DevJWTSecret
	}
	if c.Auth.SessionTTL == "" {
		c.Auth.SessionTTL = "168h" // 7d
	}
	if c.Providers.Microsoft.TenantID == "" {
		c.Providers.Microsoft.TenantID = "common"
	}
	if c.LLM.OpenAI.BaseURL == "" {
		c.LLM.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.LLM.OpenAI.Model == "" {
		c.LLM.OpenAI.Model = "gpt-3.5-turbo"
	}
	if c.LLM.Timeout == "" {
		c.LLM.Timeout = "60s"
	}
	if c.Rate.Generate.Limit == 0 {
		c.Rate.Generate.Limit = 10
	}
	if c.Rate.Generate.Window == "" {
		c.Rate.Generate.Window = "1m"
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 20
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1m"
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
}

// IsProduction activa las cookies Secure + SameSite=None.
func (c *Config) IsProduction() bool {
	switch strings.ToLower(strings.TrimSpace(c.App.Environment)) {
	case "production", "prod":
		return true
	}
	return false
}

func (c *Config) SessionTTL() time.Duration     { return mustDur(c.Auth.SessionTTL) }
func (c *Config) SurveyCacheTTL() time.Duration { return mustDur(c.Cache.SurveyTTL) }
func (c *Config) LLMTimeout() time.Duration     { return mustDur(c.LLM.Timeout) }
func (c *Config) ReadTimeout() time.Duration    { return mustDur(c.Server.ReadTimeout) }
func (c *Config) WriteTimeout() time.Duration   { return mustDur(c.Server.WriteTimeout) }

// MemoryDefaultTTL es el TTL por defecto del cliente de caché en memoria.
func (c *Config) MemoryDefaultTTL() time.Duration { return mustDur(c.Cache.Memory.DefaultTTL) }

// SMTPConfigured indica si hay host y remitente para notificaciones.
func (c *Config) SMTPConfigured() bool {
	return strings.TrimSpace(c.SMTP.Host) != "" && strings.TrimSpace(c.SMTP.From) != ""
}

func mustDur(s string) time.Duration {
	d, _ := time.ParseDuration(strings.TrimSpace(s))
	return d
}

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvCSV(key string) ([]string, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return nil, false
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true
}

func (c *Config) applyEnvOverrides() {
	setStr := func(dst *string, key string) {
		if v, ok := getEnvStr(key); ok {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v, ok := getEnvInt(key); ok {
			*dst = v
		}
	}
	setBool := func(dst *bool, key string) {
		if v, ok := getEnvBool(key); ok {
			*dst = v
		}
	}

	// APP
	setStr(&c.App.Environment, "ENVIRONMENT")
	setStr(&c.App.URL, "APP_URL")
	setStr(&c.App.FrontendURL, "FRONTEND_URL")

	// SERVER
	setStr(&c.Server.Addr, "SERVER_ADDR")
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	setStr(&c.Server.ReadTimeout, "SERVER_READ_TIMEOUT")
	setStr(&c.Server.WriteTimeout, "SERVER_WRITE_TIMEOUT")
	setBool(&c.Server.TrustProxy, "SERVER_TRUST_PROXY")
	setStr(&c.Log.Level, "LOG_LEVEL")

	// STORAGE
	setStr(&c.Storage.Driver, "STORAGE_DRIVER")
	setStr(&c.Storage.DSN, "STORAGE_DSN")
	setInt(&c.Storage.Postgres.MaxOpenConns, "POSTGRES_MAX_OPEN_CONNS")
	setInt(&c.Storage.Postgres.MaxIdleConns, "POSTGRES_MAX_IDLE_CONNS")
	setStr(&c.Storage.Postgres.ConnMaxLifetime, "POSTGRES_CONN_MAX_LIFETIME")
	setStr(&c.Storage.Mongo.URI, "MONGO_URI")
	setStr(&c.Storage.Mongo.Database, "MONGO_DATABASE")

	// CACHE
	setStr(&c.Cache.Kind, "CACHE_KIND")
	setStr(&c.Cache.Redis.Addr, "REDIS_ADDR")
	setStr(&c.Cache.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Cache.Redis.DB, "REDIS_DB")
	setStr(&c.Cache.Redis.Prefix, "REDIS_PREFIX")
	setStr(&c.Cache.Memory.DefaultTTL, "CACHE_MEMORY_DEFAULT_TTL")
	setStr(&c.Cache.SurveyTTL, "CACHE_SURVEY_TTL")

	// AUTH
	setStr(&c.Auth.JWTSecret, "JWT_SECRET")
	setStr(&c.Auth.SessionTTL, "SESSION_TTL")
	setBool(&c.Auth.Revocation, "SESSION_REVOCATION")

	// PROVIDERS
	setStr(&c.Providers.GitHub.ClientID, "GITHUB_CLIENT_ID")
	setStr(&c.Providers.GitHub.ClientSecret, "GITHUB_CLIENT_SECRET")
	setStr(&c.Providers.Google.ClientID, "GOOGLE_CLIENT_ID")
	setStr(&c.Providers.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setStr(&c.Providers.Microsoft.ClientID, "MICROSOFT_CLIENT_ID")
	setStr(&c.Providers.Microsoft.ClientSecret, "MICROSOFT_CLIENT_SECRET")
	setStr(&c.Providers.Microsoft.TenantID, "MICROSOFT_TENANT_ID")

	// LLM
	setStr(&c.LLM.OpenAI.APIKey, "OPENAI_API_KEY")
	setStr(&c.LLM.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setStr(&c.LLM.OpenAI.Model, "OPENAI_MODEL")
	setStr(&c.LLM.Gemini.APIKey, "GEMINI_API_KEY")
	setStr(&c.LLM.Claude.APIKey, "CLAUDE_API_KEY")
	setStr(&c.LLM.Timeout, "LLM_TIMEOUT")

	// RATE
	setBool(&c.Rate.Enabled, "RATE_ENABLED")
	setInt(&c.Rate.Generate.Limit, "RATE_GENERATE_LIMIT")
	setStr(&c.Rate.Generate.Window, "RATE_GENERATE_WINDOW")
	setInt(&c.Rate.Login.Limit, "RATE_LOGIN_LIMIT")
	setStr(&c.Rate.Login.Window, "RATE_LOGIN_WINDOW")

	// SMTP / NOTIFY
	setStr(&c.SMTP.Host, "SMTP_HOST")
	setInt(&c.SMTP.Port, "SMTP_PORT")
	setStr(&c.SMTP.Username, "SMTP_USERNAME")
	setStr(&c.SMTP.Password, "SMTP_PASSWORD")
	setStr(&c.SMTP.From, "SMTP_FROM")
	if v, ok := getEnvStr("SMTP_TLS"); ok {
		c.SMTP.TLS = strings.ToLower(v)
	}
	setBool(&c.SMTP.InsecureSkipVerify, "SMTP_INSECURE_SKIP_VERIFY")
	setBool(&c.Notify.OnResult, "NOTIFY_ON_RESULT")

	// OBSERVABILITY
	setStr(&c.Sentry.DSN, "SENTRY_DSN")
	setBool(&c.Metrics.Enabled, "METRICS_ENABLED")
}

// Validate revisa valores críticos. Las duraciones se validan aquí para que
// los getters puedan ignorar el error de parseo.
func (c *Config) Validate() error {
	durations := map[string]string{
		"server.read_timeout":                c.Server.ReadTimeout,
		"server.write_timeout":               c.Server.WriteTimeout,
		"cache.memory.default_ttl":           c.Cache.Memory.DefaultTTL,
		"cache.survey_ttl":                   c.Cache.SurveyTTL,
		"auth.session_ttl":                   c.Auth.SessionTTL,
		"llm.timeout":                        c.LLM.Timeout,
		"rate.generate.window":               c.Rate.Generate.Window,
		"rate.login.window":                  c.Rate.Login.Window,
		"storage.postgres.conn_max_lifetime": c.Storage.Postgres.ConnMaxLifetime,
	}
	for name, v := range durations {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
	}

	switch c.Storage.Driver {
	case "sqlite", "postgres", "memory":
	case "mongo":
		if c.Storage.Mongo.URI == "" && c.Storage.DSN == "" {
			return errors.New("config: storage.mongo.uri is required for the mongo driver")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && c.Storage.DSN == "" {
		return errors.New("config: storage.dsn is required for the postgres driver")
	}

	switch c.Cache.Kind {
	case "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return errors.New("config: cache.redis.addr is required for the redis cache")
		}
	default:
		return fmt.Errorf("config: unknown cache kind %q", c.Cache.Kind)
	}

	if c.IsProduction() {
		if len(c.Auth.JWTSecret) < 32 || c.Auth.JWTSecret == DevJWTSecret {
			return errors.New("config: JWT_SECRET must be set (>= 32 bytes) in production")
		}
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	return nil
}
