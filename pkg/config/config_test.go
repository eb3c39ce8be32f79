package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Filters.Policy)
	assert.True(t, cfg.Filters.Persist)
	assert.False(t, cfg.Loader.Enabled)
	assert.Equal(t, "catalog-ingest", cfg.Kafka.Topics.CatalogIngest)
	assert.Equal(t, 50, cfg.Search.DefaultLimit)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9999
  readTimeout: 2s
filters:
  policy: permissive
search:
  defaultLimit: 5
  maxResults: 10
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "permissive", cfg.Filters.Policy)
	assert.Equal(t, 10, cfg.Search.MaxResults)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CF_SERVER_PORT", "7070")
	t.Setenv("CF_KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("CF_FILTERS_PERSIST", "false")
	t.Setenv("CF_LOADER_ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Filters.Persist)
	assert.True(t, cfg.Loader.Enabled)
}

func TestLoadRejectsUnknownPolicy(t *testing.T) {
	t.Setenv("CF_FILTERS_POLICY", "strict")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filters.policy")
}

func TestLoadStartOffset(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "first", cfg.Kafka.StartOffset)

	t.Setenv("CF_KAFKA_START_OFFSET", "last")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "last", cfg.Kafka.StartOffset)

	t.Setenv("CF_KAFKA_START_OFFSET", "middle")
	_, err = Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka.startOffset")
}

func TestLoadRejectsInvertedLimits(t *testing.T) {
	path := writeConfig(t, "search:\n  defaultLimit: 20\n  maxResults: 10\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=d sslmode=disable", p.DSN())
}
