package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.GateModel)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.ClassifyModel)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.ChartModel)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.SQLModel)
	assert.Equal(t, "https://api.firecrawl.dev/v1", cfg.Firecrawl.BaseURL)
	assert.Equal(t, "GB", cfg.Firecrawl.Country)
	assert.Equal(t, 120, cfg.Firecrawl.PollTimeoutSecs)
	assert.Equal(t, "sqlite", cfg.Dataset.Driver)
	assert.Equal(t, "data/listings.db", cfg.Dataset.DSN)
	assert.Equal(t, "listings", cfg.Dataset.Table)
	assert.Equal(t, 500, cfg.Dataset.MaxRows)
	assert.True(t, cfg.Dataset.TableHint)
	assert.Equal(t, 50, cfg.Maps.MarkerCap)
	assert.Equal(t, 24, cfg.Scrape.CacheTTLHours)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "data/queries.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 500, cfg.Retry.InitialBackoffMs)
	assert.Equal(t, 5, cfg.Circuit.FailureThreshold)
	assert.Equal(t, 30, cfg.Circuit.ResetTimeoutSecs)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
dataset:
  driver: postgres
  dsn: postgres://localhost/listings
  pool:
    max_conns: 4
maps:
  marker_cap: 25
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Dataset.Driver)
	assert.Equal(t, "postgres://localhost/listings", cfg.Dataset.DSN)
	assert.Equal(t, int32(4), cfg.Dataset.Pool.MaxConns)
	assert.Equal(t, 25, cfg.Maps.MarkerCap)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, 500, cfg.Dataset.MaxRows)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server:\n  port: 9090\n"), 0o644))

	t.Setenv("LISTING_SERVER_PORT", "7070")
	t.Setenv("LISTING_ANTHROPIC_KEY", "sk-ant-env")
	t.Setenv("LISTING_REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "sk-ant-env", cfg.Anthropic.Key)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("LISTING_MAPS_GOOGLE_API_KEY=maps-from-dotenv\nLISTING_FIRECRAWL_KEY=fc-from-dotenv\n"), 0o600))
	t.Setenv("LISTING_FIRECRAWL_KEY", "fc-from-env")
	t.Cleanup(func() { os.Unsetenv("LISTING_MAPS_GOOGLE_API_KEY") }) //nolint:errcheck

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "maps-from-dotenv", cfg.Maps.GoogleAPIKey)
	assert.Equal(t, "fc-from-env", cfg.Firecrawl.Key)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [\n"), 0o644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.True(t, zap.L().Core().Enabled(zap.DebugLevel))
}

func TestInitLoggerJSON(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "json"}))
	assert.False(t, zap.L().Core().Enabled(zap.InfoLevel))
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "loud", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}

func validDefaults() *Config {
	return &Config{
		Anthropic: AnthropicConfig{Key: "sk-ant-key"},
		Dataset:   DatasetConfig{Driver: "sqlite", DSN: "data/listings.db", MaxRows: 500},
		Maps:      MapsConfig{MarkerCap: 50},
		Store:     StoreConfig{Driver: "sqlite", DatabaseURL: "data/queries.db"},
		Retry:     RetryConfig{MaxAttempts: 3},
		Circuit:   CircuitConfig{FailureThreshold: 5},
		Server:    ServerConfig{Port: 8080},
	}
}

func TestValidate(t *testing.T) {
	for _, mode := range []string{"serve", "ask", "migrate", "load"} {
		assert.NoError(t, validDefaults().Validate(mode), mode)
	}
}

func TestValidateServe_MissingFields(t *testing.T) {
	cfg := validDefaults()
	cfg.Anthropic.Key = ""
	cfg.Store.DatabaseURL = ""
	cfg.Dataset.Driver = "mysql"

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key is required")
	assert.Contains(t, err.Error(), "store.database_url is required")
	assert.Contains(t, err.Error(), "dataset.driver must be sqlite or postgres")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")

	// ask does not listen
	assert.NoError(t, cfg.Validate("ask"))
}

func TestValidateMigrate_OnlyNeedsStore(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Driver: "postgres", DatabaseURL: "postgres://localhost/q"}}
	assert.NoError(t, cfg.Validate("migrate"))
	assert.Error(t, cfg.Validate("load"))
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("fedsync")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
