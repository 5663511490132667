package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port      string `envconfig:"PORT" default:"8080"`
	Env       string `envconfig:"ENV" default:"development"`
	ClientURL string `envconfig:"CLIENT_URL" default:"http://localhost:3000"`

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	RedisURL string `envconfig:"REDIS_URL" required:"true"`

	// Token configuration
	Token TokenConfig

	// OTP configuration
	OTP OTPConfig

	// Google OAuth configuration
	Google GoogleConfig

	// SMS gateway configuration
	SMS SMSConfig

	// CORS configuration
	CORS CORSConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" required:"true"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	Name     string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"require"`
}

// ConnectionString returns the PostgreSQL connection string
func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// TokenConfig holds the signing secrets and lifetimes for each token kind.
// Secrets are distinct per kind so an access token can never pass
// verification where a refresh token is expected, and vice versa.
type TokenConfig struct {
	AccessSecret  string        `envconfig:"ACCESS_TOKEN_SECRET" required:"true"`
	RefreshSecret string        `envconfig:"REFRESH_TOKEN_SECRET" required:"true"`
	AccessTTL     time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"1h"`
	RefreshTTL    time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"720h"`

	// Lifetime of access tokens minted by the refresh path.
	RefreshedAccessTTL time.Duration `envconfig:"REFRESHED_ACCESS_TOKEN_TTL" default:"30m"`

	// Lifetime of the short access token minted after OTP verification,
	// just long enough to complete a password reset.
	VerifiedAccessTTL time.Duration `envconfig:"VERIFIED_ACCESS_TOKEN_TTL" default:"5m"`
}

// OTPConfig holds one-time code configuration
type OTPConfig struct {
	Length int           `envconfig:"OTP_LENGTH" default:"6"`
	TTL    time.Duration `envconfig:"OTP_TTL" default:"1h"`
}

// GoogleConfig holds Google OAuth2 configuration
type GoogleConfig struct {
	ClientID     string `envconfig:"GOOGLE_CLIENT_ID" required:"true"`
	ClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET" required:"true"`
	RedirectURL  string `envconfig:"GOOGLE_REDIRECT_URL" required:"true"`
}

// SMSConfig holds the outbound SMS gateway configuration
type SMSConfig struct {
	GatewayURL  string `envconfig:"SMS_GATEWAY_URL" required:"true"`
	APIKey      string `envconfig:"SMS_API_KEY" required:"true"`
	CountryCode string `envconfig:"SMS_COUNTRY_CODE" default:"+84"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// RateLimitConfig holds rate limiting configuration shared by the login and
// OTP verification limiters
type RateLimitConfig struct {
	Window          time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"10m"`
	MaxAttempts     int           `envconfig:"RATE_LIMIT_MAX_ATTEMPTS" default:"5"`
	LockoutDuration time.Duration `envconfig:"RATE_LIMIT_LOCKOUT_DURATION" default:"15m"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return &cfg, nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
