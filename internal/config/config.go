// Package config provides centralized configuration management for the
// proposal service. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// DefaultEndpointURL is the script web app that receives proposals.
const DefaultEndpointURL = "https://script.google.com/macros/s/AKfycbz8ZgKUoWpMCQlUT0c6RKHiHT-m9843bBj___H780jlPh2Tu0WkE2LdSX9B7PH7sdBmqg/exec"

// Transmit backends.
const (
	BackendHTTP     = "http"
	BackendPostgres = "postgres"
	BackendNATS     = "nats"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server     ServerConfig
	Transmit   TransmitConfig
	Database   DatabaseConfig
	NATS       NATSConfig
	Attachment AttachmentConfig
	Submit     SubmitConfig
	Session    SessionConfig
	Locale     LocaleConfig
	Rate       RateLimitConfig
	Security   SecurityConfig
	Logging    LoggingConfig
	Tracing    TracingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is off by default (0) so the response to a long
	// submission is still delivered once it settles.
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds non-submit requests. Submit requests are not cut
	// off because a running submission cannot be cancelled.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// TransmitConfig selects where submissions go.
type TransmitConfig struct {
	// Backend is one of http, postgres, nats (default: http)
	Backend string `env:"TRANSMIT_BACKEND" default:"http"`

	EndpointURL string `env:"TRANSMIT_ENDPOINT_URL"`

	// ReadResponse makes the http backend fail on non-2xx responses. The
	// default endpoint answers opaquely, so this is off by default.
	ReadResponse bool `env:"TRANSMIT_READ_RESPONSE" default:"false"`

	// Timeout for one transmission; 0 means none (default: 0)
	Timeout time.Duration `env:"TRANSMIT_TIMEOUT" default:"0s"`
}

// DatabaseConfig holds database connection settings for the postgres
// backend.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Supports both DATABASE_URL
	// and DB_URL env vars for compatibility.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// Table receives one row per submission (default: proposal_submissions)
	Table string `env:"DB_TABLE" default:"proposal_submissions"`
}

// NATSConfig holds settings for the nats backend.
type NATSConfig struct {
	URL     string        `env:"NATS_URL"`
	Subject string        `env:"NATS_SUBJECT" default:"proposals.submitted"`
	Timeout time.Duration `env:"NATS_CONNECT_TIMEOUT" default:"5s"`
}

// AttachmentConfig holds the file selection limits.
type AttachmentConfig struct {
	// MaxSize in bytes (default: 10MiB)
	MaxSize int64 `env:"ATTACHMENT_MAX_SIZE" default:"10485760"`
}

// SubmitConfig bounds concurrent submissions across all forms.
type SubmitConfig struct {
	MaxConcurrent int           `env:"SUBMIT_MAX_CONCURRENT" default:"8"`
	MaxWaitTime   time.Duration `env:"SUBMIT_MAX_WAIT_TIME" default:"15s"`
}

// SessionConfig controls in-memory form sessions.
type SessionConfig struct {
	// IdleTTL drops a form after this long without requests (default: 2h)
	IdleTTL time.Duration `env:"SESSION_IDLE_TTL" default:"2h"`

	// Max is the number of live forms; creation fails beyond it (default: 1000)
	Max int `env:"SESSION_MAX" default:"1000"`
}

// LocaleConfig holds message localization settings.
type LocaleConfig struct {
	Default string `env:"LOCALE_DEFAULT" default:"si-LK"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// SubmitLimit is requests per minute for the submit endpoint (default: 10)
	SubmitLimit int `env:"RATE_LIMIT_SUBMIT" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// TracingConfig holds OpenTelemetry settings. Tracing is off unless an
// endpoint is set.
type TracingConfig struct {
	Endpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" default:"proposals"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Endpoint returns the configured URL or the compiled-in default.
func (c *TransmitConfig) Endpoint() string {
	if c.EndpointURL != "" {
		return c.EndpointURL
	}
	return DefaultEndpointURL
}
