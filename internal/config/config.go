package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	// Salesforce credentials. Client ID/secret, username, and password
	// must all be set for a live connection; when any is missing the
	// service runs on sample data. The security token is optional (orgs
	// with trusted IP ranges do not issue one).
	SalesforceTokenURL      string `env:"SALESFORCE_TOKEN_URL" envDefault:"https://login.salesforce.com/services/oauth2/token"`
	SalesforceClientID      string `env:"SALESFORCE_CLIENT_ID"`
	SalesforceClientSecret  string `env:"SALESFORCE_CLIENT_SECRET"`
	SalesforceUsername      string `env:"SALESFORCE_USERNAME"`
	SalesforcePassword      string `env:"SALESFORCE_PASSWORD"`
	SalesforceSecurityToken string `env:"SALESFORCE_SECURITY_TOKEN"`

	// Redis (optional; empty disables the query cache and rate limiting)
	RedisURL string `env:"REDIS_URL"`

	// Query cache TTL
	CacheTTLSeconds int `env:"CACHE_TTL_SECONDS" envDefault:"300"`

	// JWT Configuration
	JWTHS256Secret      string `env:"JWT_HS256_SECRET,required"`
	JWTIssuer           string `env:"JWT_ISSUER" envDefault:"salespulse"`
	JWTAudience         string `env:"JWT_AUDIENCE" envDefault:"salespulse-api"`
	JWTClockSkewSeconds int    `env:"JWT_CLOCK_SKEW_SECONDS" envDefault:"60"`

	// OpenTelemetry
	OTELEnabled          bool    `env:"OTEL_ENABLED" envDefault:"true"`
	OTELExporterEndpoint string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTELServiceName      string  `env:"OTEL_SERVICE_NAME" envDefault:"salespulse-api"`
	OTELSamplingRatio    float64 `env:"OTEL_SAMPLING_RATIO" envDefault:"0.1"`

	// Optional token guarding /metrics. Empty leaves the endpoint open.
	MetricsToken string `env:"METRICS_TOKEN"`

	// Server
	Port     string `env:"PORT" envDefault:"3002"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv   string `env:"APP_ENV" envDefault:"production"`

	// Rate Limiting
	RateLimitPerUserPerMin int `env:"RATE_LIMIT_PER_USER_PER_MIN" envDefault:"100"`

	// Analytics overrides
	QuarterlyQuota        float64 `env:"QUARTERLY_QUOTA" envDefault:"3200000"`
	InsightQuarterlyQuota float64 `env:"INSIGHT_QUARTERLY_QUOTA" envDefault:"1000000"`
	ClosedWonWindowDays   int     `env:"CLOSED_WON_WINDOW_DAYS" envDefault:"30"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate performs custom validation on the configuration
func (c *Config) Validate() error {
	if c.JWTHS256Secret == "" {
		return fmt.Errorf("JWT_HS256_SECRET is required")
	}

	if c.JWTIssuer == "" {
		return fmt.Errorf("JWT_ISSUER must not be empty")
	}

	if c.OTELSamplingRatio < 0 || c.OTELSamplingRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLING_RATIO must be between 0 and 1")
	}

	if c.JWTClockSkewSeconds < 0 {
		return fmt.Errorf("JWT_CLOCK_SKEW_SECONDS must be non-negative")
	}

	if c.RateLimitPerUserPerMin <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_USER_PER_MIN must be positive")
	}

	if c.CacheTTLSeconds < 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must be non-negative")
	}

	if c.QuarterlyQuota <= 0 {
		return fmt.Errorf("QUARTERLY_QUOTA must be positive")
	}

	if c.ClosedWonWindowDays <= 0 {
		return fmt.Errorf("CLOSED_WON_WINDOW_DAYS must be positive")
	}

	return nil
}

// SalesforceConfigured reports whether a full set of CRM credentials
// is present. Missing credentials are not an error: the service falls
// back to sample data.
func (c *Config) SalesforceConfigured() bool {
	return c.SalesforceClientID != "" &&
		c.SalesforceClientSecret != "" &&
		c.SalesforceUsername != "" &&
		c.SalesforcePassword != ""
}

// TelemetryEnabled reports whether OTel export should be wired up.
func (c *Config) TelemetryEnabled() bool {
	return c.OTELEnabled && c.OTELExporterEndpoint != ""
}

// CacheTTL returns the query cache TTL as a duration
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// ClockSkew returns the JWT clock skew as a duration
func (c *Config) ClockSkew() time.Duration {
	return time.Duration(c.JWTClockSkewSeconds) * time.Second
}
