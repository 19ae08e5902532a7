package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
app:
  env: production
  port: "9090"
database:
  table: procedimientos_lic_inv
resources:
  dir: /data/resources
  sources: [redis, file]
worker:
  workers: 8
cache:
  enabled: true
  backend: hybrid
  l1_ttl: 30m
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "procedimientos_adj", cfg.Database.Table)
	assert.Equal(t, "id_procedimiento", cfg.Database.IDColumn)
	assert.Equal(t, []string{"file"}, cfg.Resources.Sources)
	assert.Equal(t, 500, cfg.Worker.BatchSize)
	assert.Equal(t, 24*time.Hour, cfg.Redis.CacheTTL)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FileAndEnv(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/pnt/app.yaml", []byte(sampleYAML), 0o644))
	t.Setenv("PNT_WORKER_BATCH_SIZE", "250")
	t.Setenv("PNT_APP_PORT", "7070")

	cfg, err := Load(fs, "/etc/pnt/app.yaml")
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "7070", cfg.App.Port, "env overrides file")
	assert.Equal(t, "procedimientos_lic_inv", cfg.Database.Table)
	assert.Equal(t, []string{"redis", "file"}, cfg.Resources.Sources)
	assert.Equal(t, 8, cfg.Worker.Workers)
	assert.Equal(t, 250, cfg.Worker.BatchSize)
	assert.Equal(t, "hybrid", cfg.Cache.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Cache.L1TTL)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "/nope/app.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "bad.yaml", []byte("cache:\n  backend: disk\n"), 0o644))
	_, err := Load(fs, "bad.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.backend")

	require.NoError(t, afero.WriteFile(fs, "bad2.yaml", []byte("resources:\n  sources: [ftp]\n"), 0o644))
	_, err = Load(fs, "bad2.yaml")
	assert.ErrorContains(t, err, "ftp")
}
