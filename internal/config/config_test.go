package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.API.Addr())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, "certificates", cfg.MinIO.Bucket)
	assert.Equal(t, "chrome", cfg.Render.Backend)
	assert.Equal(t, 500*time.Millisecond, cfg.Render.SettleDelay)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("POSTGRES_DB", "attendance")
	t.Setenv("RENDER_BACKEND", "pdf")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, "attendance", cfg.Database.Name)
	assert.Equal(t, "pdf", cfg.Render.Backend)
}

func TestLoadRejectsUnknownRenderBackend(t *testing.T) {
	t.Setenv("RENDER_BACKEND", "crayon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render backend")
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "db", Port: 5432, Name: "portal", User: "u", Password: "p", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=portal sslmode=disable", d.DSN())
}
