// Package host implements the catalog.Service and notification.Sender ports
// against the commerce platform's admin API.
package host

import "errors"

// DefaultTimeoutSeconds is the request timeout used when none is configured.
const DefaultTimeoutSeconds = 15

var ErrConfigMissingBaseURL = errors.New("host: base url is required")

// Config holds the host platform connection settings
type Config struct {
	BaseURL        string
	APIToken       string
	TimeoutSeconds int
}

// NewConfig creates a host config for the given base URL and token
func NewConfig(baseURL, apiToken string) *Config {
	return &Config{
		BaseURL:  baseURL,
		APIToken: apiToken,
	}
}

// Validate checks required fields and applies defaults
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	return nil
}
