// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Public base URL used in emailed sign-in links (e.g. https://supavacation.dev)
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Sessions
	SessionSecret string        `env:"SESSION_SECRET,required"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// Magic-link sign-in tokens
	SignInTokenTTL time.Duration `env:"SIGNIN_TOKEN_TTL" envDefault:"10m"`

	// Outbound email (SMTP)
	SMTPHost     string `env:"EMAIL_SERVER_HOST,required"`
	SMTPPort     int    `env:"EMAIL_SERVER_PORT" envDefault:"465"`
	SMTPUser     string `env:"EMAIL_SERVER_USER,required"`
	SMTPPassword string `env:"EMAIL_SERVER_PASSWORD,required"`
	EmailFrom    string `env:"EMAIL_FROM,required"`
	SupportEmail string `env:"SUPPORT_EMAIL" envDefault:"support@supavacation.dev"`

	// Rate limiting for the sign-in endpoint (per IP)
	RateLimitSignInEnabled bool `env:"RATE_LIMIT_SIGNIN_ENABLED" envDefault:"true"`
	RateLimitSignInRPM     int  `env:"RATE_LIMIT_SIGNIN_RPM" envDefault:"5"`
	RateLimitSignInBurst   int  `env:"RATE_LIMIT_SIGNIN_BURST" envDefault:"3"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if len(cfg.SessionSecret) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 32 characters")
	}
	return cfg, nil
}
