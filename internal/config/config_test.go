package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, int64(10_000_000), cfg.StartingBalanceCents)
	assert.Equal(t, int64(15), cfg.TakerFeeBps)
	assert.Equal(t, int64(10), cfg.MakerFeeBps)
	assert.Equal(t, OracleModeSim, cfg.OracleMode)
	assert.Equal(t, 2*time.Second, cfg.TickInterval)
	assert.Equal(t, 5, cfg.DepthLevels)
	assert.Equal(t, 5, cfg.LockAttempts)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.JournalPath)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STARTING_BALANCE_CENTS", "500000")
	t.Setenv("TAKER_FEE_BPS", "20")
	t.Setenv("TICK_INTERVAL", "500ms")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("JOURNAL_PATH", "/tmp/journal.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, int64(500000), cfg.StartingBalanceCents)
	assert.Equal(t, int64(20), cfg.TakerFeeBps)
	assert.Equal(t, 500*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "/tmp/journal.db", cfg.JournalPath)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
port: 9999
log_level: warn
taker_fee_bps: 25
tick_interval: 1s
depth_levels: 10
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, int64(25), cfg.TakerFeeBps)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, 10, cfg.DepthLevels)
	// Untouched keys keep their defaults.
	assert.Equal(t, int64(10), cfg.MakerFeeBps)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9999\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	require.Error(t, err)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"PORT": "0"}},
		{"unparsable port", map[string]string{"PORT": "eighty"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}},
		{"negative balance", map[string]string{"STARTING_BALANCE_CENTS": "-1"}},
		{"negative fee", map[string]string{"MAKER_FEE_BPS": "-5"}},
		{"bad oracle mode", map[string]string{"ORACLE_MODE": "yahoo"}},
		{"alpaca without creds", map[string]string{"ORACLE_MODE": "alpaca"}},
		{"zero tick interval", map[string]string{"TICK_INTERVAL": "0s"}},
		{"bad duration", map[string]string{"TICK_INTERVAL": "soon"}},
		{"zero depth", map[string]string{"DEPTH_LEVELS": "0"}},
		{"zero lock attempts", map[string]string{"LOCK_ATTEMPTS": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestAlpacaModeWithCreds(t *testing.T) {
	t.Setenv("ORACLE_MODE", "alpaca")
	t.Setenv("ALPACA_API_KEY", "key")
	t.Setenv("ALPACA_API_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, OracleModeAlpaca, cfg.OracleMode)
}
