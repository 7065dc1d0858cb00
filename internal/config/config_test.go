package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, defaultPort, cfg.Port)
	assert.True(t, cfg.IsDev())
	assert.Empty(t, cfg.RedisURLValue())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 8080
env: production
admin_password: hunter2
database:
  driver: sqlite
  file: /tmp/landmarks.db
redis:
  url: redis://localhost:6379/2
allowed_origins:
  - labormap.org
  - "*.labormap.org"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, "hunter2", cfg.AdminPassword)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "redis://localhost:6379/2", cfg.RedisURLValue())
	assert.Len(t, cfg.AllowedOrigins, 2)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ADMIN_PASSWORD", "from-env")
	t.Setenv("REDIS_URL", "redis://cache:6379")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "from-env", cfg.AdminPassword)
	assert.Equal(t, "redis://cache:6379", cfg.RedisURLValue())
}
