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
	for _, name := range []string{
		"TRADER_BINANCE_API_KEY",
		"TRADER_BINANCE_SECRET_KEY",
		"TRADER_BINANCE_SANDBOX",
		"TRADER_BINANCE_BASE_URL",
		"TRADER_BINANCE_TIMEOUT",
		"TRADER_BINANCE_RECV_WINDOW",
		"TRADER_LOG_LEVEL",
		"TRADER_LOG_FORMAT",
		"TESTNET_BINANCE_VISION_API_KEY",
		"TESTNET_BINANCE_VISION_SECRET_KEY",
	} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trader.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.Binance.Sandbox)
	assert.Equal(t, 10*time.Second, cfg.Binance.Timeout)
	assert.Zero(t, cfg.Binance.RecvWindow)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)

	coreCfg, err := cfg.Core()
	require.NoError(t, err)
	assert.Nil(t, coreCfg.Credentials)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
binance:
  api_key: file-key
  secret_key: file-secret
  sandbox: false
  base_url: http://127.0.0.1:9000
  timeout: 3s
  recv_window: 5s
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.Binance.APIKey)
	assert.Equal(t, "file-secret", cfg.Binance.SecretKey)
	assert.False(t, cfg.Binance.Sandbox)
	assert.Equal(t, 3*time.Second, cfg.Binance.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Binance.RecvWindow)
	assert.Equal(t, "json", cfg.Log.Format)

	coreCfg, err := cfg.Core()
	require.NoError(t, err)
	require.NotNil(t, coreCfg.Credentials)
	assert.Equal(t, "file-key", coreCfg.Credentials.APIKey)
	assert.Equal(t, "http://127.0.0.1:9000", coreCfg.BaseURL)
	assert.Equal(t, "debug", coreCfg.LogLevel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRADER_BINANCE_API_KEY", "env-key")
	t.Setenv("TESTNET_BINANCE_VISION_SECRET_KEY", "testnet-secret")
	t.Setenv("TRADER_BINANCE_TIMEOUT", "750ms")
	t.Setenv("TRADER_LOG_LEVEL", "warn")

	path := writeConfig(t, `
binance:
  api_key: file-key
  timeout: 3s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Binance.APIKey)
	assert.Equal(t, "testnet-secret", cfg.Binance.SecretKey)
	assert.Equal(t, 750*time.Millisecond, cfg.Binance.Timeout)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestConfig_CoreRejectsHalfCredentials(t *testing.T) {
	cfg := &Config{
		Binance: BinanceConfig{APIKey: "only-key", Timeout: time.Second},
		Log:     LogConfig{Level: "info"},
	}

	_, err := cfg.Core()
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "only-key")
}
