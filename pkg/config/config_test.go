package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/valoracion-api/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "valoracion-api", cfg.App.Name)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, config.DraftBackendRedis, cfg.Drafts.Backend)
	assert.Equal(t, 72*time.Hour, cfg.Drafts.TTL())
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout())
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, 20, cfg.DB.MaxConns)
	assert.Equal(t, 15, cfg.DB.StatementTimeoutSeconds)
	assert.False(t, cfg.Signing.Enabled())
	assert.Equal(t, config.AIProviderGemini, cfg.AI.Provider)
}

func TestLoad_EnvTienePrioridad(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DRAFT_BACKEND", "memory")
	t.Setenv("DB_NAME", "valoracion_test")
	t.Setenv("GEMINI_MODEL", "gemini-1.5-pro")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("SIGNING_CERT_PATH", "/etc/valoracion/cert.pem")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.Equal(t, config.DraftBackendMemory, cfg.Drafts.Backend)
	assert.Equal(t, "valoracion_test", cfg.DB.DBName)
	assert.False(t, cfg.DB.AutoMigrate)
	assert.Equal(t, "gemini-1.5-pro", cfg.AI.GeminiModel)
	assert.True(t, cfg.Signing.Enabled())
}

func TestLoad_DraftBackendInvalido(t *testing.T) {
	t.Setenv("DRAFT_BACKEND", "sqlite")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_PoolInvalido(t *testing.T) {
	t.Setenv("DB_MIN_CONNS", "30")
	t.Setenv("DB_MAX_CONNS", "10")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_AIProvider(t *testing.T) {
	t.Setenv("AI_PROVIDER", "Anthropic")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.AIProviderAnthropic, cfg.AI.Provider)

	t.Setenv("AI_PROVIDER", "openai")
	_, err = config.Load()
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss", DBName: "valoracion", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss@db:5432/valoracion?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
