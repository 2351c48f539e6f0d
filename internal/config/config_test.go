package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestConfigLoad_FromYAMLAndEnv(t *testing.T) {
	// Minimal YAML; secrets will come from ENV
	yaml := `
app:
  name: rotation-advisor-service
  version: 0.1.0
  env: dev
  port: 18080

logger:
  level: info
  format: json
  output_target: stdout
  time_format: rfc3339

storage:
  driver: postgres

postgres:
  host: 127.0.0.1
  port: 5432
  sslmode: disable
  max_conns: 5
  min_conns: 1

rotation:
  style: strict
  top_n: 3
`
	path := writeTempConfig(t, yaml)

	t.Setenv("APP_POSTGRES_USER", "testuser")
	t.Setenv("APP_POSTGRES_PASSWORD", "testpass")
	t.Setenv("APP_POSTGRES_DB", "testdb")
	t.Setenv("APP_REDIS_ADDR", "localhost:6379")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 18080, cfg.App.Port)
	assert.Equal(t, "testuser", cfg.Postgres.User)
	assert.Equal(t, "testpass", cfg.Postgres.Password)
	assert.Equal(t, "testdb", cfg.Postgres.DBName)
	assert.Equal(t, "127.0.0.1", cfg.Postgres.Host)
	assert.Equal(t, int32(5), cfg.Postgres.MaxConns)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, "stdout", cfg.Logger.OutputTarget)

	th, err := cfg.Rotation.Thresholds()
	require.NoError(t, err)
	assert.Equal(t, 3, th.TopN)
	assert.Equal(t, 90, th.EquityGap, "strict preset")
	assert.Equal(t, 900, th.QuarterDuration, "default applies")
}

func TestConfigLoad_Defaults(t *testing.T) {
	path := writeTempConfig(t, "app:\n  name: x\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 20, cfg.Rotation.HistoryCap)
	assert.Equal(t, time.Hour, cfg.Redis.TTLDuration())
	assert.False(t, cfg.Augment.Client().Enabled())
	assert.Equal(t, 5*time.Second, cfg.Augment.Client().Timeout)
}

func TestConfigLoad_MissingPostgresCredentialsFails(t *testing.T) {
	yaml := `
app:
  name: abc
  env: prod
storage:
  driver: postgres
postgres:
  host: localhost
`
	path := writeTempConfig(t, yaml)
	t.Setenv("APP_POSTGRES_USER", "")
	t.Setenv("APP_POSTGRES_DB", "")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfigLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			App:      AppConfig{Name: "svc", Env: "prod", Port: 8080, ShutdownTimeout: 5},
			Storage:  StorageConfig{Driver: "memory"},
			Postgres: PostgresConfig{Port: 5432, MaxConns: 4},
			Redis:    RedisConfig{TTL: 60},
			Augment:  AugmentConfig{TimeoutMS: 1000},
		}
	}

	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }, true},
		{"bad style", func(c *Config) { c.Rotation.Style = "chaotic" }, true},
		{"top_n too big", func(c *Config) { c.Rotation.TopN = 11 }, true},
		{"bad augment url", func(c *Config) { c.Augment.BaseURL = "not a url" }, true},
		{"pool sizes inverted", func(c *Config) {
			c.Storage.Driver = "postgres"
			c.Postgres.Host, c.Postgres.User, c.Postgres.DBName = "h", "u", "d"
			c.Postgres.MinConns = 10
		}, true},
		{"postgres complete", func(c *Config) {
			c.Storage.Driver = "postgres"
			c.Postgres.Host, c.Postgres.User, c.Postgres.DBName = "h", "u", "d"
		}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mutate(&c)
			err := c.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
