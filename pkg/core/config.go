package core

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Credentials holds API authentication credentials for an exchange.
type Credentials struct {
	// APIKey is the public API key identifier, sent as a request header.
	APIKey string `json:"api_key" mapstructure:"api_key" validate:"required"`
	// SecretKey is the private key used only to sign requests.
	SecretKey string `json:"secret_key" mapstructure:"secret_key" validate:"required"`
}

// String masks both keys so credentials can be passed to formatters safely.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{APIKey:%s, SecretKey:%s}", maskKey(c.APIKey), "****")
}

// Validate reports a missing key. The error names fields, never values.
func (c *Credentials) Validate() error {
	return validate.Struct(c)
}

// GoString masks both keys for %#v.
func (c Credentials) GoString() string {
	return c.String()
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

// Config contains all configuration options for a trading client.
type Config struct {
	Credentials *Credentials `json:"credentials,omitempty" validate:"omitempty"`

	// Sandbox selects the testnet deployment when BaseURL is empty.
	Sandbox bool `json:"sandbox"`
	// BaseURL overrides the endpoint selected by Sandbox.
	BaseURL string `json:"base_url,omitempty" validate:"omitempty,url"`

	// Timeout is the maximum duration for HTTP requests.
	Timeout time.Duration `json:"timeout" validate:"min=1ms"`
	// RecvWindow is sent with signed requests when non-zero.
	RecvWindow time.Duration `json:"recv_window" validate:"min=0,max=60s"`

	LogLevel string `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns a Config pointing at the testnet with a 10s timeout
// and no receive window.
func DefaultConfig() *Config {
	return &Config{
		Sandbox:  true,
		Timeout:  10 * time.Second,
		LogLevel: "info",
	}
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.RecvWindow%time.Millisecond != 0 {
		return fmt.Errorf("RecvWindow must be a whole number of milliseconds, got %s", c.RecvWindow)
	}
	return nil
}

// WithCredentials sets the API credentials and returns the config for chaining.
func (c *Config) WithCredentials(creds *Credentials) *Config {
	c.Credentials = creds
	return c
}

// WithSandbox enables or disables sandbox mode and returns the config for chaining.
func (c *Config) WithSandbox(sandbox bool) *Config {
	c.Sandbox = sandbox
	return c
}

// WithBaseURL overrides the API endpoint and returns the config for chaining.
func (c *Config) WithBaseURL(url string) *Config {
	c.BaseURL = url
	return c
}

// WithTimeout sets the request timeout and returns the config for chaining.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithRecvWindow sets the receive window for signed requests and returns the config for chaining.
func (c *Config) WithRecvWindow(window time.Duration) *Config {
	c.RecvWindow = window
	return c
}
