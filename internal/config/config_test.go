package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	require.Equal(t, ":8787", cfg.Server.Addr)
	require.Equal(t, "sqlite", cfg.Storage.Driver)
	require.NotEmpty(t, cfg.Storage.DSN)
	require.Equal(t, "memory", cfg.Cache.Kind)
	require.Equal(t, 7*24*time.Hour, cfg.SessionTTL())
	require.Equal(t, "common", cfg.Providers.Microsoft.TenantID)
	require.Equal(t, "https://api.openai.com/v1", cfg.LLM.OpenAI.BaseURL)
	require.Equal(t, "gpt-3.5-turbo", cfg.LLM.OpenAI.Model)
	require.Equal(t, DevJWTSecret, cfg.Auth.JWTSecret)
	require.False(t, cfg.IsProduction())
}

func TestLoad_YAMLThenEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
app:
  frontend_url: https://yaml.example
server:
  addr: ":9000"
providers:
  github:
    client_id: gh-yaml
    client_secret: gh-secret
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	t.Setenv("SERVER_ADDR", ":9100")
	t.Setenv("GOOGLE_CLIENT_ID", "g-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "g-secret")
	t.Setenv("SERVER_CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9100", cfg.Server.Addr)
	require.Equal(t, "https://yaml.example", cfg.App.FrontendURL)
	require.True(t, cfg.Providers.GitHub.Configured())
	require.True(t, cfg.Providers.Google.Configured())
	require.False(t, cfg.Providers.Microsoft.Configured())
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
}

func TestLoad_TrustProxy(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.False(t, cfg.Server.TrustProxy)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  trust_proxy: true\n"), 0o600))
	cfg, err = Load(path)
	require.NoError(t, err)
	require.True(t, cfg.Server.TrustProxy)

	t.Setenv("SERVER_TRUST_PROXY", "false")
	cfg, err = Load(path)
	require.NoError(t, err)
	require.False(t, cfg.Server.TrustProxy)
}

func TestLoad_ProductionRequiresStrongSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "short")
	_, err := Load("")
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	cfg, err := Load("")
	require.NoError(t, err)
	require.True(t, cfg.IsProduction())
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"unknown driver":   {"STORAGE_DRIVER", "cassandra"},
		"bad duration":     {"SESSION_TTL", "seven days"},
		"unknown cache":    {"CACHE_KIND", "memcached"},
		"postgres w/o dsn": {"STORAGE_DRIVER", "postgres"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load("")
			require.Error(t, err)
		})
	}
}
