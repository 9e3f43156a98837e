// Package config loads configuration from config.yaml, .env files and
// LISTING_* environment variables.
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/listing-assistant/internal/db"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Firecrawl FirecrawlConfig `yaml:"firecrawl" mapstructure:"firecrawl"`
	Dataset   DatasetConfig   `yaml:"dataset" mapstructure:"dataset"`
	Maps      MapsConfig      `yaml:"maps" mapstructure:"maps"`
	Scrape    ScrapeConfig    `yaml:"scrape" mapstructure:"scrape"`
	Redis     RedisConfig     `yaml:"redis" mapstructure:"redis"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Retry     RetryConfig     `yaml:"retry" mapstructure:"retry"`
	Circuit   CircuitConfig   `yaml:"circuit" mapstructure:"circuit"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig configures the completion model per pipeline stage.
type AnthropicConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	GateModel     string `yaml:"gate_model" mapstructure:"gate_model"`
	ClassifyModel string `yaml:"classify_model" mapstructure:"classify_model"`
	ChartModel    string `yaml:"chart_model" mapstructure:"chart_model"`
	SQLModel      string `yaml:"sql_model" mapstructure:"sql_model"`
}

// FirecrawlConfig configures the scraping service.
type FirecrawlConfig struct {
	Key             string `yaml:"key" mapstructure:"key"`
	BaseURL         string `yaml:"base_url" mapstructure:"base_url"`
	Country         string `yaml:"country" mapstructure:"country"`
	Proxy           string `yaml:"proxy" mapstructure:"proxy"`
	PollTimeoutSecs int    `yaml:"poll_timeout_secs" mapstructure:"poll_timeout_secs"`
	// PollRatePerSec caps status polls across concurrent scrapes.
	PollRatePerSec float64 `yaml:"poll_rate_per_sec" mapstructure:"poll_rate_per_sec"`
}

// DatasetConfig configures the listings dataset the query engine reads.
type DatasetConfig struct {
	Driver     string        `yaml:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	DSN        string        `yaml:"dsn" mapstructure:"dsn"`
	Table      string        `yaml:"table" mapstructure:"table"`
	SchemaPath string        `yaml:"schema_path" mapstructure:"schema_path"`
	MaxRows    int           `yaml:"max_rows" mapstructure:"max_rows"`
	TableHint  bool          `yaml:"table_hint" mapstructure:"table_hint"`
	Pool       db.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// MapsConfig configures the map renderer.
type MapsConfig struct {
	GoogleAPIKey string `yaml:"google_api_key" mapstructure:"google_api_key"`
	MarkerCap    int    `yaml:"marker_cap" mapstructure:"marker_cap"`
}

// ScrapeConfig configures listing scraping.
type ScrapeConfig struct {
	CacheTTLHours int `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// RedisConfig configures the listing cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
}

// StoreConfig configures the query log.
type StoreConfig struct {
	Driver      string        `yaml:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	DatabaseURL string        `yaml:"database_url" mapstructure:"database_url"`
	Pool        db.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// RetryConfig configures retries of downstream calls.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
}

// CircuitConfig configures the circuit breakers guarding downstream services.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	// RequestTimeoutSecs bounds one query end to end.
	RequestTimeoutSecs int `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. Variables in a .env
// file in the working directory are exported first and never override the
// real environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, eris.Wrap(err, "config: read .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LISTING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("anthropic.gate_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.classify_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.chart_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.sql_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v1")
	v.SetDefault("firecrawl.country", "GB")
	v.SetDefault("firecrawl.proxy", "stealth")
	v.SetDefault("firecrawl.poll_timeout_secs", 120)
	v.SetDefault("firecrawl.poll_rate_per_sec", 2.0)
	v.SetDefault("dataset.driver", "sqlite")
	v.SetDefault("dataset.dsn", "data/listings.db")
	v.SetDefault("dataset.table", "listings")
	v.SetDefault("dataset.max_rows", 500)
	v.SetDefault("dataset.table_hint", true)
	v.SetDefault("maps.marker_cap", 50)
	v.SetDefault("scrape.cache_ttl_hours", 24)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "data/queries.db")
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 500)
	v.SetDefault("circuit.failure_threshold", 5)
	v.SetDefault("circuit.reset_timeout_secs", 30)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.request_timeout_secs", 120)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// AutomaticEnv only sees keys viper already knows; bind the ones
	// without defaults so LISTING_ANTHROPIC_KEY and friends resolve.
	for _, key := range []string{
		"anthropic.key", "anthropic.base_url", "firecrawl.key",
		"dataset.schema_path", "maps.google_api_key",
		"redis.addr", "redis.password", "redis.db",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings required by a command mode: "serve", "ask",
// "migrate" or "load".
func (c *Config) Validate(mode string) error {
	var errs []string
	require := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, msg)
		}
	}
	driver := func(name, value string) {
		require(value == "sqlite" || value == "postgres", name+" must be sqlite or postgres")
	}

	switch mode {
	case "serve", "ask":
		require(c.Anthropic.Key != "", "anthropic.key is required")
		require(c.Dataset.DSN != "", "dataset.dsn is required")
		driver("dataset.driver", c.Dataset.Driver)
		require(c.Dataset.MaxRows > 0, "dataset.max_rows must be positive")
		require(c.Maps.MarkerCap > 0, "maps.marker_cap must be positive")
		require(c.Retry.MaxAttempts > 0, "retry.max_attempts must be positive")
		require(c.Circuit.FailureThreshold > 0, "circuit.failure_threshold must be positive")
		if mode == "serve" {
			require(c.Server.Port > 0 && c.Server.Port <= 65535, "server.port must be between 1 and 65535")
			require(c.Store.DatabaseURL != "", "store.database_url is required")
			driver("store.driver", c.Store.Driver)
		}
	case "migrate":
		require(c.Store.DatabaseURL != "", "store.database_url is required")
		driver("store.driver", c.Store.Driver)
	case "load":
		require(c.Dataset.DSN != "", "dataset.dsn is required")
		driver("dataset.driver", c.Dataset.Driver)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
