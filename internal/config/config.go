package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Identity provider constants
const (
	IdentityProviderToolkit = "identity_toolkit"
	IdentityProviderLocal   = "local"
)

// Log format constants
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// DefaultIdentityToolkitURL is the public Identity Toolkit v1 endpoint.
const DefaultIdentityToolkitURL = "https://identitytoolkit.googleapis.com/v1"

var (
	ErrMissingAPIKey      = errors.New("IDENTITY_TOOLKIT_API_KEY is required for identity_toolkit provider")
	ErrMissingTokenSecret = errors.New("LOCAL_TOKEN_SECRET is required for local provider")
)

type Config struct {
	// Server settings
	ServerAddr            string
	ServerShutdownTimeout time.Duration

	// Identity provider
	IdentityProvider string // "identity_toolkit" or "local"

	// Identity Toolkit REST API
	IdentityToolkitURL       string
	IdentityToolkitAPIKey    string
	IdentityAPITimeout       time.Duration
	IdentityAPIInsecure      bool
	IdentityAPIAuthMode      string // Authentication mode: "none", "simple", or "hmac"
	IdentityAPIAuthSecret    string // Shared secret for gateway authentication
	IdentityAPIAuthHeader    string // Custom header name for simple mode (default: "X-API-Secret")
	IdentityAPIMaxRetries    int    // Maximum retry attempts (default: 3)
	IdentityAPIRetryDelay    time.Duration
	IdentityAPIMaxRetryDelay time.Duration

	// Local provider
	DatabaseDriver    string // "sqlite" or "postgres"
	DatabaseDSN       string
	LocalTokenSecret  string
	LocalTokenTTL     time.Duration
	RecentLoginWindow time.Duration

	// Observability
	MetricsEnabled bool
	MetricsToken   string // Bearer token protecting /metrics (empty = open)
	LogFormat      string // "json" or "console"
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	driver := getEnv("DATABASE_DRIVER", "sqlite")
	dsn := getEnv("DATABASE_DSN", "")
	if dsn == "" && driver == "sqlite" {
		dsn = "accountgate.db"
	}

	return &Config{
		ServerAddr:            getEnv("SERVER_ADDR", ":8080"),
		ServerShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),

		IdentityProvider: getEnv("IDENTITY_PROVIDER", IdentityProviderToolkit),

		IdentityToolkitURL:       getEnv("IDENTITY_TOOLKIT_URL", DefaultIdentityToolkitURL),
		IdentityToolkitAPIKey:    getEnv("IDENTITY_TOOLKIT_API_KEY", ""),
		IdentityAPITimeout:       getEnvDuration("IDENTITY_API_TIMEOUT", 10*time.Second),
		IdentityAPIInsecure:      getEnvBool("IDENTITY_API_INSECURE_SKIP_VERIFY", false),
		IdentityAPIAuthMode:      getEnv("IDENTITY_API_AUTH_MODE", "none"),
		IdentityAPIAuthSecret:    getEnv("IDENTITY_API_AUTH_SECRET", ""),
		IdentityAPIAuthHeader:    getEnv("IDENTITY_API_AUTH_HEADER", "X-API-Secret"),
		IdentityAPIMaxRetries:    getEnvInt("IDENTITY_API_MAX_RETRIES", 3),
		IdentityAPIRetryDelay:    getEnvDuration("IDENTITY_API_RETRY_DELAY", 1*time.Second),
		IdentityAPIMaxRetryDelay: getEnvDuration("IDENTITY_API_MAX_RETRY_DELAY", 10*time.Second),

		DatabaseDriver:    driver,
		DatabaseDSN:       dsn,
		LocalTokenSecret:  getEnv("LOCAL_TOKEN_SECRET", ""),
		LocalTokenTTL:     getEnvDuration("LOCAL_TOKEN_TTL", time.Hour),
		RecentLoginWindow: getEnvDuration("RECENT_LOGIN_WINDOW", 5*time.Minute),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", false),
		MetricsToken:   getEnv("METRICS_TOKEN", ""),
		LogFormat:      getEnv("LOG_FORMAT", LogFormatJSON),
	}
}

// Validate checks the settings required by the selected identity provider.
func (c *Config) Validate() error {
	switch c.IdentityProvider {
	case IdentityProviderToolkit:
		if c.IdentityToolkitAPIKey == "" {
			return ErrMissingAPIKey
		}
		if c.IdentityToolkitURL == "" {
			return errors.New("IDENTITY_TOOLKIT_URL must not be empty")
		}
	case IdentityProviderLocal:
		if c.LocalTokenSecret == "" {
			return ErrMissingTokenSecret
		}
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for driver %q", c.DatabaseDriver)
		}
	default:
		return fmt.Errorf(
			"invalid IDENTITY_PROVIDER value: %q (must be %q or %q)",
			c.IdentityProvider,
			IdentityProviderToolkit,
			IdentityProviderLocal,
		)
	}

	if c.LogFormat != LogFormatJSON && c.LogFormat != LogFormatConsole {
		return fmt.Errorf("invalid LOG_FORMAT value: %q", c.LogFormat)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
