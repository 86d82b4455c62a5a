// Package config loads the server's settings from environment variables,
// applies defaults and validates everything up front so a bad deployment
// fails at startup rather than on the first import.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all server configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"5m"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including the wait for
	// running imports to finish.
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout applies to every route except the import endpoint,
	// which is bounded by Import.Timeout.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// DatabaseConfig selects and tunes the record store.
type DatabaseConfig struct {
	// URL is a postgres:// connection string or a SQLite file path.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	// Driver forces "postgres" or "sqlite". Empty infers it from URL.
	Driver string `env:"DB_DRIVER"`

	// Pool settings, postgres only.
	MaxConns          int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
	HealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
	ConnectTimeout    time.Duration `env:"DB_CONNECT_TIMEOUT" default:"5s"`
}

// ImportConfig holds importer settings.
type ImportConfig struct {
	// BatchSize is used when a request does not name one.
	BatchSize int `env:"IMPORT_BATCH_SIZE" default:"100"`

	// MaxBatchSize caps any requested batch size.
	MaxBatchSize int `env:"IMPORT_MAX_BATCH_SIZE" default:"500"`

	// MaxPayloadBytes limits the request body of POST /api/import (default: 32MB).
	MaxPayloadBytes int64 `env:"IMPORT_MAX_PAYLOAD_BYTES" default:"33554432"`

	// MaxConcurrent is the number of importer calls allowed at once.
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long a call waits for a free slot before 429.
	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds a single importer call.
	Timeout time.Duration `env:"IMPORT_TIMEOUT" default:"5m"`
}

// RateLimitConfig holds per-client request limits.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute applies to every /api route.
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// ImportLimit is requests per minute for POST /api/import. A chunked
	// import of a large file sends one request per chunk.
	ImportLimit int `env:"RATE_LIMIT_IMPORT" default:"30"`

	// Burst is the token bucket size for both limits.
	Burst int `env:"RATE_LIMIT_BURST" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies lists proxy CIDRs whose forwarding headers are believed.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey gates /api behind the X-API-Key header.
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys.
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is text or json.
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
