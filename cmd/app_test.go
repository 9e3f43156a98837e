package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sells-group/listing-assistant/internal/config"
	"github.com/sells-group/listing-assistant/internal/metrics"
	"github.com/sells-group/listing-assistant/internal/resilience"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Anthropic: config.AnthropicConfig{Key: "sk-test"},
		Dataset: config.DatasetConfig{
			Driver:    "sqlite",
			DSN:       filepath.Join(dir, "listings.db"),
			Table:     "listings",
			MaxRows:   500,
			TableHint: true,
		},
		Maps:    config.MapsConfig{MarkerCap: 50},
		Store:   config.StoreConfig{Driver: "sqlite", DatabaseURL: filepath.Join(dir, "queries.db")},
		Retry:   config.RetryConfig{MaxAttempts: 1},
		Circuit: config.CircuitConfig{FailureThreshold: 1, ResetTimeoutSecs: 60},
		Server:  config.ServerConfig{Port: 8080},
	}
}

func withConfig(t *testing.T, c *config.Config) {
	t.Helper()
	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
}

func TestInitApp_ValidationError(t *testing.T) {
	c := testConfig(t)
	c.Anthropic.Key = ""
	withConfig(t, c)

	_, err := initApp(context.Background(), "ask", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key is required")
}

func TestInitApp_WiresDispatcherAndStore(t *testing.T) {
	withConfig(t, testConfig(t))

	env, err := initApp(context.Background(), "serve", true)
	require.NoError(t, err)
	defer env.Close()

	assert.NotNil(t, env.Dispatcher)
	require.NotNil(t, env.Store)
	assert.NoError(t, env.Store.Ping(context.Background()))
}

func TestInitApp_WithoutStore(t *testing.T) {
	withConfig(t, testConfig(t))

	env, err := initApp(context.Background(), "ask", false)
	require.NoError(t, err)
	defer env.Close()
	assert.Nil(t, env.Store)
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.WarnLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func TestInitApp_WarnsWithoutMapsKey(t *testing.T) {
	logs := observeLogs(t)
	withConfig(t, testConfig(t))

	env, err := initApp(context.Background(), "ask", false)
	require.NoError(t, err)
	defer env.Close()

	assert.Equal(t, 1, logs.FilterMessage("google maps key not set, map answers will not load").Len())
}

func TestInitApp_MapsKeySetNoWarning(t *testing.T) {
	logs := observeLogs(t)
	c := testConfig(t)
	c.Maps.GoogleAPIKey = "maps-key"
	withConfig(t, c)

	env, err := initApp(context.Background(), "ask", false)
	require.NoError(t, err)
	defer env.Close()

	assert.Zero(t, logs.FilterMessage("google maps key not set, map answers will not load").Len())
}

func TestInitDataset_UnsupportedDriver(t *testing.T) {
	c := testConfig(t)
	c.Dataset.Driver = "mysql"
	withConfig(t, c)

	_, err := initDataset(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported dataset driver")
}

func TestInitStore_UnsupportedDriver(t *testing.T) {
	c := testConfig(t)
	c.Store.Driver = "mongo"
	withConfig(t, c)

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestNewPolicy_BreakerExportsState(t *testing.T) {
	withConfig(t, testConfig(t))

	p := newPolicy("test-service")
	require.NotNil(t, p.Breaker)
	assert.Equal(t, 1, p.Retry.MaxAttempts)

	gauge := metrics.CircuitState.WithLabelValues("test-service")
	assert.Equal(t, float64(resilience.CircuitClosed), testutil.ToFloat64(gauge))

	_, err := resilience.Run(context.Background(), p, func(context.Context) (int, error) {
		return 0, eris.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, resilience.CircuitOpen, p.Breaker.State())
	assert.Equal(t, float64(resilience.CircuitOpen), testutil.ToFloat64(gauge))
}
