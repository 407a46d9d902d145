package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"SERVER_PORT", "SERVER_HOST", "DATABASE_URL", "REDIS_URL", "CACHE_ANSWERS", "MATCH_CUTOFF", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, DefaultPostgresDSN, cfg.DatabaseDSN())
	assert.InDelta(t, 0.3, cfg.Advisor.MatchCutoff, 1e-9)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.False(t, cfg.Advisor.CacheAnswers)
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "advisor.yaml")
	yamlBody := `
server:
  port: 9090
cache:
  ttl: 30s
advisor:
  match_cutoff: 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o600))

	t.Setenv("DATABASE_URL", "sqlite:/tmp/phones.db")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.InDelta(t, 0.5, cfg.Advisor.MatchCutoff, 1e-9)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/phones.db", cfg.DatabaseDSN())
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("REDIS_URL")
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REDIS_URL=redis://cache:6379\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("REDIS_URL") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, "cache:6379", cfg.Cache.Redis.Addr)
}

func TestLoad_RedisURL(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("REDIS_URL", "redis://:s3cret@cache.internal:6380/2")
	t.Setenv("CACHE_ANSWERS", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, "cache.internal:6380", cfg.Cache.Redis.Addr)
	assert.Equal(t, "s3cret", cfg.Cache.Redis.Password)
	assert.Equal(t, 2, cfg.Cache.Redis.DB)
	assert.True(t, cfg.Advisor.CacheAnswers)
}

func TestLoad_InvalidRedisURL(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("REDIS_URL", "http://cache:6379")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse REDIS_URL")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, "invalid database driver"},
		{"empty dsn", func(c *Config) { c.Database.Postgres.DSN = "" }, "postgres dsn is required"},
		{"bad cache", func(c *Config) { c.Cache.Driver = "memcached" }, "invalid cache driver"},
		{"bad cutoff", func(c *Config) { c.Advisor.MatchCutoff = 1.5 }, "match_cutoff"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	_, err := Load("/nonexistent/advisor.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}
