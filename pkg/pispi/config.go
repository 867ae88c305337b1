// Package pispi is a client for the PI-SPI instant-payment API.
//
// A Client is built from an explicit Config value; nothing is read from or
// written to package-level state, so several clients with different targets
// can coexist in one process.
package pispi

import (
	"fmt"
	"net/url"
	"time"
)

// Defaults match the sandbox targets pinned into the generated configuration.
const (
	DefaultBaseURL    = "https://sandbox.pi-spi.bceao.int/api"
	DefaultVersion    = "1.0.0"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryBase  = 200 * time.Millisecond
	DefaultUserAgent  = "pispi-go"
)

// Config holds the connection settings of a Client.
type Config struct {
	// BaseURL is the API root, e.g. https://sandbox.pi-spi.bceao.int/api.
	BaseURL string
	// Version is the API version the client targets.
	Version string
	// APIKey is sent as a bearer token when set.
	APIKey string
	// Timeout bounds a single HTTP attempt.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt. Zero disables retries.
	MaxRetries uint64
	// RetryBase is the first backoff interval; it doubles on every retry.
	RetryBase time.Duration
	UserAgent string
}

// DefaultConfig returns a Config targeting the sandbox.
func DefaultConfig() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		Version:    DefaultVersion,
		Timeout:    DefaultTimeout,
		MaxRetries: DefaultMaxRetries,
		RetryBase:  DefaultRetryBase,
		UserAgent:  DefaultUserAgent,
	}
}

// validate fills zero values with defaults and checks the base URL.
func (c *Config) validate() error {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RetryBase <= 0 {
		c.RetryBase = DefaultRetryBase
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: invalid base URL %q: %v", ErrInvalidArgument, c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: base URL scheme must be http or https, got %q", ErrInvalidArgument, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: base URL must have a host, got %q", ErrInvalidArgument, c.BaseURL)
	}
	return nil
}
