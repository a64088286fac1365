package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	Lexoffice LexofficeConfig
	Host      HostConfig
	Storage   StorageConfig
	Sync      SyncConfig
	Invoice   InvoiceConfig
	HTTP      HTTPConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// LexofficeConfig holds the lexoffice API connection settings
type LexofficeConfig struct {
	APIKey         string
	APIBaseURL     string
	TimeoutSeconds int
	MaxRetries     int
	RetryBaseDelay time.Duration
}

// HostConfig holds the connection settings for the commerce platform's
// admin API
type HostConfig struct {
	BaseURL        string
	APIToken       string
	TimeoutSeconds int
}

// StorageConfig holds the S3-compatible object store settings
type StorageConfig struct {
	Endpoint          string
	AccessKey         string
	SecretKey         string
	Bucket            string
	Region            string
	// DisableSSL downgrades endpoints without an explicit scheme to
	// plain http, for local object stores only.
	DisableSSL        bool
	UsePathStyle      bool
	PublicBaseURL     string
	PresignExpiration time.Duration
}

// SyncConfig holds article synchronization settings
type SyncConfig struct {
	// WriteInterval is the minimum spacing between remote write operations
	WriteInterval time.Duration
}

// InvoiceConfig holds invoice generation settings
type InvoiceConfig struct {
	// BrandName prefixes the generated PDF file names
	BrandName string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with WARAWUL_ prefix (e.g., WARAWUL_LEXOFFICE_API_KEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	// Set config file settings
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Enable environment variable override
	v.SetEnvPrefix("WARAWUL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Build config struct
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Lexoffice: LexofficeConfig{
			APIKey:         v.GetString("lexoffice.api_key"),
			APIBaseURL:     v.GetString("lexoffice.api_base_url"),
			TimeoutSeconds: v.GetInt("lexoffice.timeout_seconds"),
			MaxRetries:     v.GetInt("lexoffice.max_retries"),
			RetryBaseDelay: v.GetDuration("lexoffice.retry_base_delay"),
		},
		Host: HostConfig{
			BaseURL:        v.GetString("host.base_url"),
			APIToken:       v.GetString("host.api_token"),
			TimeoutSeconds: v.GetInt("host.timeout_seconds"),
		},
		Storage: StorageConfig{
			Endpoint:          v.GetString("storage.endpoint"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			Bucket:            v.GetString("storage.bucket"),
			Region:            v.GetString("storage.region"),
			DisableSSL:        v.GetBool("storage.disable_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PublicBaseURL:     v.GetString("storage.public_base_url"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
		},
		Sync: SyncConfig{
			WriteInterval: v.GetDuration("sync.write_interval"),
		},
		Invoice: InvoiceConfig{
			BrandName: v.GetString("invoice.brand_name"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			MaxBodySize:    v.GetInt64("http.max_body_size"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
	}

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "warawul-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Lexoffice.APIBaseURL == "" {
		cfg.Lexoffice.APIBaseURL = "https://api.lexware.io"
	}
	if cfg.Lexoffice.TimeoutSeconds == 0 {
		cfg.Lexoffice.TimeoutSeconds = 30
	}
	if cfg.Lexoffice.MaxRetries == 0 {
		cfg.Lexoffice.MaxRetries = 3
	}
	if cfg.Lexoffice.RetryBaseDelay == 0 {
		cfg.Lexoffice.RetryBaseDelay = 3 * time.Second
	}
	if cfg.Host.BaseURL == "" {
		cfg.Host.BaseURL = "http://localhost:7001"
	}
	if cfg.Host.TimeoutSeconds == 0 {
		cfg.Host.TimeoutSeconds = 15
	}
	if cfg.Storage.Endpoint == "" {
		cfg.Storage.Endpoint = "http://localhost:9000"
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "invoices"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 15 * time.Minute
	}
	if cfg.Sync.WriteInterval == 0 {
		cfg.Sync.WriteInterval = 3 * time.Second
	}
	if cfg.Invoice.BrandName == "" {
		cfg.Invoice.BrandName = "Warawul Coffee"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Sync.WriteInterval < 0 {
		return fmt.Errorf("sync.write_interval cannot be negative")
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Lexoffice.APIKey == "" {
			return fmt.Errorf("lexoffice.api_key is required in production")
		}
		if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			return fmt.Errorf("storage credentials are required in production")
		}
		if c.Storage.DisableSSL {
			return fmt.Errorf("storage.disable_ssl must not be set in production")
		}
	}

	return nil
}
