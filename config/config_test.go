package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORE_DRIVER", "SCHEDULER_INTERVAL", "SCHEDULER_MAX_ATTEMPTS", "CORS_ALLOWED_ORIGINS", "API_JWT_SECRET"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "file", cfg.StoreDriver)
	assert.Equal(t, time.Minute, cfg.SchedulerInterval)
	assert.Equal(t, 5, cfg.SchedulerMaxAttempts)
	assert.Equal(t, 10*time.Minute, cfg.ScheduleLeadTime)
	assert.Equal(t, "v19.0", cfg.FacebookVersion)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.JWTSecret)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Valkey")
	t.Setenv("SCHEDULER_INTERVAL", "30s")
	t.Setenv("SCHEDULER_MAX_ATTEMPTS", "0")
	t.Setenv("GRAPH_API_BASE", "http://localhost:9999/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg := Load()
	assert.Equal(t, "valkey", cfg.StoreDriver)
	assert.Equal(t, 30*time.Second, cfg.SchedulerInterval)
	assert.Equal(t, 0, cfg.SchedulerMaxAttempts)
	assert.Equal(t, "http://localhost:9999", cfg.GraphAPIBase)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SCHEDULER_INTERVAL", "soon")
	t.Setenv("VALKEY_DB", "x")

	cfg := Load()
	assert.Equal(t, time.Minute, cfg.SchedulerInterval)
	assert.Equal(t, 0, cfg.ValkeyDB)
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.Local, (&Config{Timezone: "Local"}).Location())
	assert.Equal(t, time.Local, (&Config{Timezone: "Nowhere/Invalid"}).Location())
	assert.Equal(t, time.UTC, (&Config{Timezone: "UTC"}).Location())
}
