package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envViper(t *testing.T, env map[string]string) *viper.Viper {
	t.Helper()
	for k, val := range env {
		t.Setenv(k, val)
	}
	v := viper.New()
	v.AutomaticEnv()
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 24*time.Hour, cfg.Redis.IdempotencyTTL)
	assert.False(t, cfg.Redis.Enabled(), "sin REDIS_URL ni REDIS_ADDR la idempotencia queda apagada")
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Migrations.AutoRun)
	assert.Equal(t, "postgres://postgres:@localhost:5432/rack_inventory?sslmode=disable", cfg.DB.ConnectionString())
}

func TestFromViper_Env(t *testing.T) {
	v := envViper(t, map[string]string{
		"APP_ENV":               "production",
		"LOG_LEVEL":             "debug",
		"HTTP_PORT":             "9090",
		"REDIS_ADDR":            "localhost:6379",
		"REDIS_DB":              "2",
		"IDEMPOTENCY_TTL_HOURS": "6",
		"METRICS_ENABLED":       "false",
		"MIGRATIONS_AUTO_RUN":   "true",
		"DATABASE_URL":          "postgres://u:p@db:5432/x",
	})

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 6*time.Hour, cfg.Redis.IdempotencyTTL)
	assert.False(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.Migrations.AutoRun)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.DB.ConnectionString(), "DATABASE_URL tiene prioridad")
}

func TestFromViper_PasswordEscapado(t *testing.T) {
	v := envViper(t, map[string]string{"DB_PASSWORD": "p@ss/word"})

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Contains(t, cfg.DB.DSN(), "p%40ss%2Fword")
}

func TestFromViper_Invalid(t *testing.T) {
	_, err := fromViper(envViper(t, map[string]string{"HTTP_PORT": "70000"}))
	assert.Error(t, err)

	_, err = fromViper(envViper(t, map[string]string{"IDEMPOTENCY_TTL_HOURS": "0"}))
	assert.Error(t, err)
}
