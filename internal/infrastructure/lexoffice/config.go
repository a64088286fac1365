package lexoffice

import (
	"errors"
	"time"
)

// DefaultAPIBaseURL is the production API endpoint
const DefaultAPIBaseURL = "https://api.lexware.io"

// Default retry behavior for HTTP 429 responses. The delay doubles with each
// attempt: 3s, 6s, 12s.
const (
	DefaultMaxRetries     = 3
	DefaultRetryBaseDelay = 3 * time.Second
)

// ErrConfigMissingAPIKey indicates a client was configured without credentials
var ErrConfigMissingAPIKey = errors.New("lexoffice: api key is required")

// Config holds configuration for the lexoffice API client
type Config struct {
	// APIKey is the bearer token issued by the lexoffice developer portal
	APIKey string
	// APIBaseURL is the base URL for the lexoffice API
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// MaxRetries is the number of retries after an HTTP 429 response
	MaxRetries int
	// RetryBaseDelay is the backoff delay of the first retry
	RetryBaseDelay time.Duration
}

// NewConfig creates a new lexoffice configuration with defaults
func NewConfig(apiKey string) *Config {
	return &Config{
		APIKey:         apiKey,
		APIBaseURL:     DefaultAPIBaseURL,
		TimeoutSeconds: 30,
		MaxRetries:     DefaultMaxRetries,
		RetryBaseDelay: DefaultRetryBaseDelay,
	}
}

// Validate validates the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrConfigMissingAPIKey
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = DefaultRetryBaseDelay
	}
	return nil
}
