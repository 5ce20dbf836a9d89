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
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	return dir
}

func TestLoadConfigFrom_Defaults(t *testing.T) {
	dir := writeConfig(t, `
database:
  dsn: postgres://localhost/gameingest
providers:
  catalog:
    base_url: https://api.igdb.com
    rate_limit: 4
`)

	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Ingest.BacklogLimit)
	assert.Equal(t, 10, cfg.Ingest.MinDemand)
	assert.Equal(t, 5, cfg.Ingest.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Ingest.BatchDelay)
	assert.Equal(t, "gameingest:run-lock", cfg.Redis.LockKey)
	assert.Equal(t, "postgres://localhost/gameingest", cfg.Database.DSN)

	catalog, err := cfg.Provider(ProviderCatalog)
	require.NoError(t, err)
	assert.Equal(t, "https://api.igdb.com", catalog.BaseURL)
	assert.Equal(t, 4.0, catalog.RateLimit)
}

func TestLoadConfigFrom_EnvOverridesSecrets(t *testing.T) {
	dir := writeConfig(t, `
server:
  api_secret: from-yaml
ingest:
  batch_delay: 2s
providers:
  catalog:
    client_id: yaml-id
`)
	t.Setenv("API_SECRET", "from-env")
	t.Setenv("TWITCH_API_CLIENT_ID", "twitch-id")
	t.Setenv("TWITCH_API_SECRET", "twitch-secret")
	t.Setenv("EBAY_CLIENT_ID", "ebay-id")
	t.Setenv("EBAY_CLIENT_SECRET", "ebay-secret")

	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Server.APISecret)
	assert.Equal(t, 2*time.Second, cfg.Ingest.BatchDelay)
	assert.Equal(t, "twitch-id", cfg.Providers[ProviderCatalog].ClientID)
	assert.Equal(t, "twitch-secret", cfg.Providers[ProviderCatalog].ClientSecret)
	assert.Equal(t, "ebay-id", cfg.Providers[ProviderMarketplace].ClientID)
	assert.Equal(t, "ebay-secret", cfg.Providers[ProviderMarketplace].ClientSecret)
}

func TestLoadConfigFrom_MissingFile(t *testing.T) {
	_, err := LoadConfigFrom(t.TempDir())
	assert.Error(t, err)
}

func TestConfig_ProviderMissing(t *testing.T) {
	cfg := &Config{Providers: map[string]ProviderConfig{}}
	_, err := cfg.Provider("unknown")
	assert.Error(t, err)
}
