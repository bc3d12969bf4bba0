package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
postgres:
  host: localhost
  user: app
  password: secret
  dbname: movies_database
elasticsearch:
  url: http://localhost:9200
redis:
  address: localhost:6379
`

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "5432", cfg.Postgres.Port)
	assert.Equal(t, "disable", cfg.Postgres.SSLMode)
	assert.Equal(t, "redis", cfg.State.Backend)
	assert.Equal(t, 100, cfg.Sync.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Sync.MinInterval)
	assert.Equal(t, 900*time.Millisecond, cfg.Sync.MaxInterval)
	assert.Equal(t, "etl_process_flag", cfg.Sync.LockName)
	assert.Equal(t, 30*time.Second, cfg.Sync.LockTTL)
	assert.Equal(t, 5, cfg.Backoff.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.Backoff.BaseDelay)
}

func TestLoad_ExplicitValuesSurviveDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
sync:
  batch_size: 25
  min_interval: 1s
  max_interval: 2s
  lock_ttl: 45s
backoff:
  max_attempts: 3
`))
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Sync.BatchSize)
	assert.Equal(t, time.Second, cfg.Sync.MinInterval)
	assert.Equal(t, 2*time.Second, cfg.Sync.MaxInterval)
	assert.Equal(t, 45*time.Second, cfg.Sync.LockTTL)
	assert.Equal(t, 3, cfg.Backoff.MaxAttempts)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "from-env")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("APP_DEBUG", "true")

	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, "from-env", cfg.Postgres.Password)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.True(t, cfg.Debug)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoad_FileBackendRequiresPath(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
state:
  backend: file
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state.file_path")
}

func TestValidate(t *testing.T) {
	valid := Config{
		Postgres:      PostgresConfig{Host: "localhost", DBName: "movies_database"},
		Elasticsearch: ElasticsearchConfig{URL: "http://localhost:9200"},
		Redis:         RedisConfig{Address: "localhost:6379"},
		State:         StateConfig{Backend: "redis"},
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing postgres host", func(c *Config) { c.Postgres.Host = "" }, "postgres.host"},
		{"missing dbname", func(c *Config) { c.Postgres.DBName = "" }, "postgres.dbname"},
		{"missing es url", func(c *Config) { c.Elasticsearch.URL = "" }, "elasticsearch.url"},
		{"missing redis address", func(c *Config) { c.Redis.Address = "" }, "redis.address"},
		{"unknown backend", func(c *Config) { c.State.Backend = "zookeeper" }, "state.backend"},
		{"inverted intervals", func(c *Config) {
			c.Sync.MinInterval = time.Second
			c.Sync.MaxInterval = time.Millisecond
		}, "sync.max_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
