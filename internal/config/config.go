// Package config loads runtime configuration from an optional YAML file
// with environment variable overrides. Precedence: defaults, then the
// file named by CONFIG_FILE, then environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Oracle modes.
const (
	OracleModeSim    = "sim"
	OracleModeAlpaca = "alpaca"
)

// Config holds all runtime configuration for the trading service.
type Config struct {
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	// Starting cash for a newly opened account, in cents.
	StartingBalanceCents int64 `yaml:"starting_balance_cents"`

	TakerFeeBps int64 `yaml:"taker_fee_bps"`
	MakerFeeBps int64 `yaml:"maker_fee_bps"`

	// OracleMode selects the reference price source: "sim" runs the
	// seeded random walk, "alpaca" fetches live trades and falls back to
	// the simulator on failure.
	OracleMode      string        `yaml:"oracle_mode"`
	OracleTimeout   time.Duration `yaml:"oracle_timeout"`
	OracleSeed      int64         `yaml:"oracle_seed"`
	AlpacaAPIKey    string        `yaml:"alpaca_api_key"`
	AlpacaAPISecret string        `yaml:"alpaca_api_secret"`
	AlpacaDataURL   string        `yaml:"alpaca_data_url"`

	TickInterval time.Duration `yaml:"tick_interval"`
	DepthLevels  int           `yaml:"depth_levels"`

	// RedisAddr enables the Redis event publisher when non-empty.
	RedisAddr      string        `yaml:"redis_addr"`
	RedisTimeout   time.Duration `yaml:"redis_timeout"`
	WebhookTimeout time.Duration `yaml:"webhook_timeout"`

	// JournalPath enables the SQLite audit journal when non-empty.
	JournalPath string `yaml:"journal_path"`

	// Account lock acquisition retries before an update is rejected busy.
	LockAttempts  int           `yaml:"lock_attempts"`
	LockBaseDelay time.Duration `yaml:"lock_base_delay"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

func defaults() *Config {
	return &Config{
		Port:                 8080,
		LogLevel:             "info",
		StartingBalanceCents: 10_000_000,
		TakerFeeBps:          15,
		MakerFeeBps:          10,
		OracleMode:           OracleModeSim,
		OracleTimeout:        2 * time.Second,
		OracleSeed:           0,
		TickInterval:         2 * time.Second,
		DepthLevels:          5,
		RedisTimeout:         2 * time.Second,
		WebhookTimeout:       5 * time.Second,
		LockAttempts:         5,
		LockBaseDelay:        2 * time.Millisecond,
		ReadTimeout:          5 * time.Second,
		WriteTimeout:         10 * time.Second,
		IdleTimeout:          60 * time.Second,
		ShutdownTimeout:      10 * time.Second,
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// CONFIG_FILE (if set), then environment overrides, then validation.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var err error
	if c.Port, err = getInt("PORT", c.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}
	c.LogLevel = getStr("LOG_LEVEL", c.LogLevel)

	if c.StartingBalanceCents, err = getInt64("STARTING_BALANCE_CENTS", c.StartingBalanceCents); err != nil {
		return fmt.Errorf("invalid STARTING_BALANCE_CENTS: %w", err)
	}
	if c.TakerFeeBps, err = getInt64("TAKER_FEE_BPS", c.TakerFeeBps); err != nil {
		return fmt.Errorf("invalid TAKER_FEE_BPS: %w", err)
	}
	if c.MakerFeeBps, err = getInt64("MAKER_FEE_BPS", c.MakerFeeBps); err != nil {
		return fmt.Errorf("invalid MAKER_FEE_BPS: %w", err)
	}

	c.OracleMode = getStr("ORACLE_MODE", c.OracleMode)
	if c.OracleTimeout, err = getDuration("ORACLE_TIMEOUT", c.OracleTimeout); err != nil {
		return fmt.Errorf("invalid ORACLE_TIMEOUT: %w", err)
	}
	if c.OracleSeed, err = getInt64("ORACLE_SEED", c.OracleSeed); err != nil {
		return fmt.Errorf("invalid ORACLE_SEED: %w", err)
	}
	c.AlpacaAPIKey = getStr("ALPACA_API_KEY", c.AlpacaAPIKey)
	c.AlpacaAPISecret = getStr("ALPACA_API_SECRET", c.AlpacaAPISecret)
	c.AlpacaDataURL = getStr("ALPACA_DATA_URL", c.AlpacaDataURL)

	if c.TickInterval, err = getDuration("TICK_INTERVAL", c.TickInterval); err != nil {
		return fmt.Errorf("invalid TICK_INTERVAL: %w", err)
	}
	if c.DepthLevels, err = getInt("DEPTH_LEVELS", c.DepthLevels); err != nil {
		return fmt.Errorf("invalid DEPTH_LEVELS: %w", err)
	}

	c.RedisAddr = getStr("REDIS_ADDR", c.RedisAddr)
	if c.RedisTimeout, err = getDuration("REDIS_TIMEOUT", c.RedisTimeout); err != nil {
		return fmt.Errorf("invalid REDIS_TIMEOUT: %w", err)
	}
	if c.WebhookTimeout, err = getDuration("WEBHOOK_TIMEOUT", c.WebhookTimeout); err != nil {
		return fmt.Errorf("invalid WEBHOOK_TIMEOUT: %w", err)
	}

	c.JournalPath = getStr("JOURNAL_PATH", c.JournalPath)

	if c.LockAttempts, err = getInt("LOCK_ATTEMPTS", c.LockAttempts); err != nil {
		return fmt.Errorf("invalid LOCK_ATTEMPTS: %w", err)
	}
	if c.LockBaseDelay, err = getDuration("LOCK_BASE_DELAY", c.LockBaseDelay); err != nil {
		return fmt.Errorf("invalid LOCK_BASE_DELAY: %w", err)
	}

	if c.ReadTimeout, err = getDuration("READ_TIMEOUT", c.ReadTimeout); err != nil {
		return fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}
	if c.WriteTimeout, err = getDuration("WRITE_TIMEOUT", c.WriteTimeout); err != nil {
		return fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}
	if c.IdleTimeout, err = getDuration("IDLE_TIMEOUT", c.IdleTimeout); err != nil {
		return fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}
	if c.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("invalid log level: %q, must be one of: debug, info, warn, error", c.LogLevel)
	}
	if c.StartingBalanceCents < 0 {
		return fmt.Errorf("starting balance must be non-negative, got %d", c.StartingBalanceCents)
	}
	if c.TakerFeeBps < 0 || c.MakerFeeBps < 0 {
		return fmt.Errorf("fee bps must be non-negative")
	}
	switch c.OracleMode {
	case OracleModeSim:
	case OracleModeAlpaca:
		if c.AlpacaAPIKey == "" || c.AlpacaAPISecret == "" {
			return fmt.Errorf("oracle mode %q requires ALPACA_API_KEY and ALPACA_API_SECRET", c.OracleMode)
		}
	default:
		return fmt.Errorf("invalid oracle mode: %q, must be one of: sim, alpaca", c.OracleMode)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", c.TickInterval)
	}
	if c.DepthLevels < 1 {
		return fmt.Errorf("depth levels must be at least 1, got %d", c.DepthLevels)
	}
	if c.LockAttempts < 1 {
		return fmt.Errorf("lock attempts must be at least 1, got %d", c.LockAttempts)
	}
	return nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getInt64(key string, defaultVal int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
