// Package config loads trader settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"tradecore/pkg/core"
)

// EnvPrefix prefixes every environment override, e.g. TRADER_BINANCE_TIMEOUT.
const EnvPrefix = "TRADER"

// Config represents the application configuration.
type Config struct {
	Binance BinanceConfig `mapstructure:"binance"`
	Log     LogConfig     `mapstructure:"log"`
}

// BinanceConfig contains the exchange connection settings.
type BinanceConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	SecretKey  string        `mapstructure:"secret_key"`
	Sandbox    bool          `mapstructure:"sandbox"`
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RecvWindow time.Duration `mapstructure:"recv_window"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console or json
}

// Load reads configuration from path, or from trader.yaml in ./configs or the
// working directory when path is empty. A missing default file is not an
// error; environment variables fill in or override every key.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("trader")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := core.DefaultConfig()
	v.SetDefault("binance.sandbox", defaults.Sandbox)
	v.SetDefault("binance.base_url", "")
	v.SetDefault("binance.timeout", defaults.Timeout)
	v.SetDefault("binance.recv_window", defaults.RecvWindow)
	v.SetDefault("log.level", defaults.LogLevel)
	v.SetDefault("log.format", "console")
}

// bindEnvVars makes the testnet variable names work alongside the prefixed ones.
func bindEnvVars(v *viper.Viper) error {
	bindings := map[string][]string{
		"binance.api_key":    {"TRADER_BINANCE_API_KEY", "TESTNET_BINANCE_VISION_API_KEY"},
		"binance.secret_key": {"TRADER_BINANCE_SECRET_KEY", "TESTNET_BINANCE_VISION_SECRET_KEY"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}

// Core converts c into the client configuration and validates it.
// Credentials are attached only when at least one key is set.
func (c *Config) Core() (*core.Config, error) {
	out := core.DefaultConfig().
		WithSandbox(c.Binance.Sandbox).
		WithBaseURL(c.Binance.BaseURL).
		WithTimeout(c.Binance.Timeout).
		WithRecvWindow(c.Binance.RecvWindow)
	out.LogLevel = c.Log.Level

	if c.Binance.APIKey != "" || c.Binance.SecretKey != "" {
		out.WithCredentials(&core.Credentials{
			APIKey:    c.Binance.APIKey,
			SecretKey: c.Binance.SecretKey,
		})
	}

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return out, nil
}
