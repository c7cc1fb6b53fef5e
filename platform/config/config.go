// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverPostgres  = "postgres"
	StoreDriverPostgREST = "postgrest"
	StoreDriverMemory    = "memory"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// StoreConfig selects and configures the backing table store.
type StoreConfig interface {
	DatabaseConfig
	GetStoreDriver() string
	GetPostgRESTURL() string
	GetPostgRESTKey() string
	GetStoreTimeout() time.Duration
	GetMigrationsEnabled() bool
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
}

// WebhookConfig provides settings for the outbound automation webhook.
type WebhookConfig interface {
	GetWebhookURL() string
	GetWebhookTimeout() time.Duration
	IsWebhookEnabled() bool
}

// QuoteConfig provides pricing defaults for form-based quotes.
type QuoteConfig interface {
	GetQuoteBaseRateCents() int64
	GetQuoteValidityDays() int
}

// LocaleConfig provides display settings for documents and share messages.
type LocaleConfig interface {
	GetLocale() string
	GetPhoneDefaultRegion() string
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketQuotePDFs() string
	IsMinIOEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	HTTPAddr             string
	StoreDriver          string
	DatabaseURL          string
	MigrationsEnabled    bool
	PostgRESTURL         string
	PostgRESTKey         string
	StoreTimeout         time.Duration
	WebhookURL           string
	WebhookTimeout       time.Duration
	QuoteBaseRateCents   int64
	QuoteValidityDays    int
	CORSAllowAll         bool
	CORSOrigins          []string
	RateLimitRPS         float64
	RateLimitBurst       int
	Locale               string
	PhoneDefaultRegion   string
	MinIOEndpoint        string
	MinIOAccessKey       string
	MinIOSecretKey       string
	MinIOUseSSL          bool
	MinIOMaxFileSize     int64
	MinioBucketQuotePDFs string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// StoreConfig implementation
func (c *Config) GetDatabaseURL() string         { return c.DatabaseURL }
func (c *Config) GetStoreDriver() string         { return c.StoreDriver }
func (c *Config) GetPostgRESTURL() string        { return c.PostgRESTURL }
func (c *Config) GetPostgRESTKey() string        { return c.PostgRESTKey }
func (c *Config) GetStoreTimeout() time.Duration { return c.StoreTimeout }
func (c *Config) GetMigrationsEnabled() bool     { return c.MigrationsEnabled }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetRateLimitRPS() float64 { return c.RateLimitRPS }
func (c *Config) GetRateLimitBurst() int   { return c.RateLimitBurst }

// WebhookConfig implementation
func (c *Config) GetWebhookURL() string            { return c.WebhookURL }
func (c *Config) GetWebhookTimeout() time.Duration { return c.WebhookTimeout }
func (c *Config) IsWebhookEnabled() bool           { return c.WebhookURL != "" }

// QuoteConfig implementation
func (c *Config) GetQuoteBaseRateCents() int64 { return c.QuoteBaseRateCents }
func (c *Config) GetQuoteValidityDays() int    { return c.QuoteValidityDays }

// LocaleConfig implementation
func (c *Config) GetLocale() string             { return c.Locale }
func (c *Config) GetPhoneDefaultRegion() string { return c.PhoneDefaultRegion }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string        { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string       { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string       { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool            { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64      { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketQuotePDFs() string { return c.MinioBucketQuotePDFs }
func (c *Config) IsMinIOEnabled() bool            { return c.MinIOEndpoint != "" }

// Load reads configuration from the environment, optionally seeded by a .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		StoreDriver:          strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		MigrationsEnabled:    strings.EqualFold(getEnv("MIGRATIONS_ENABLED", "true"), "true"),
		PostgRESTURL:         getEnv("POSTGREST_URL", ""),
		PostgRESTKey:         getEnv("POSTGREST_KEY", ""),
		StoreTimeout:         mustDuration(getEnv("STORE_TIMEOUT", "10s")),
		WebhookURL:           strings.TrimSpace(getEnv("WEBHOOK_URL", "")),
		WebhookTimeout:       mustDuration(getEnv("WEBHOOK_TIMEOUT", "15s")),
		QuoteBaseRateCents:   mustInt64(getEnv("QUOTE_BASE_RATE_CENTS", "10000")),
		QuoteValidityDays:    int(mustInt64(getEnv("QUOTE_VALIDITY_DAYS", "0"))),
		CORSAllowAll:         corsAllowAll,
		CORSOrigins:          corsOrigins,
		RateLimitRPS:         mustFloat(getEnv("RATE_LIMIT_RPS", "10")),
		RateLimitBurst:       int(mustInt64(getEnv("RATE_LIMIT_BURST", "20"))),
		Locale:               getEnv("LOCALE", "pt-BR"),
		PhoneDefaultRegion:   strings.ToUpper(getEnv("PHONE_DEFAULT_REGION", "BR")),
		MinIOEndpoint:        getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:       getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:       getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:          strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:     mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "10485760")),
		MinioBucketQuotePDFs: getEnv("MINIO_BUCKET_QUOTE_PDFS", "quote-pdfs"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=%s", StoreDriverPostgres)
		}
	case StoreDriverPostgREST:
		if c.PostgRESTURL == "" || c.PostgRESTKey == "" {
			return fmt.Errorf("POSTGREST_URL and POSTGREST_KEY are required when STORE_DRIVER=%s", StoreDriverPostgREST)
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.QuoteBaseRateCents <= 0 {
		return fmt.Errorf("QUOTE_BASE_RATE_CENTS must be positive")
	}
	if c.QuoteValidityDays < 0 {
		return fmt.Errorf("QUOTE_VALIDITY_DAYS cannot be negative")
	}
	if c.MinIOEndpoint != "" && (c.MinIOAccessKey == "" || c.MinIOSecretKey == "") {
		return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when MINIO_ENDPOINT is set")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
