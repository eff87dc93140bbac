// Package config loads and validates process configuration from the
// environment. Load reads a local .env file when present and then the
// process environment; Validate fails fast on any missing required value
// so that no partially configured component is ever constructed.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ServiceConfig holds service identity and listen settings.
type ServiceConfig struct {
	Name    string
	Version string
	Env     string
	Port    string
}

// LoggingConfig holds structured-logging settings.
type LoggingConfig struct {
	Level string
}

// DatabaseConfig holds the Postgres connection strings. URL is the pooled
// endpoint used for request traffic; NonPoolingURL is the direct endpoint
// used for DDL, since poolers in transaction mode reject some DDL forms.
type DatabaseConfig struct {
	URL           string
	NonPoolingURL string
}

// ProviderCredentials holds one OAuth provider's client credentials and
// enablement flag. Credentials are required even when the provider is
// disabled; a disabled provider is wired but inert.
type ProviderCredentials struct {
	Enabled             bool
	ClientID            string
	ClientSecret        string
	AppBundleIdentifier string
}

// AuthConfig holds identity/session settings.
type AuthConfig struct {
	BaseURL       string
	ProductionURL string
	Secret        string
	Discord       ProviderCredentials
	Apple         ProviderCredentials
	Google        ProviderCredentials
}

// TracingConfig holds OpenTelemetry exporter settings.
type TracingConfig struct {
	Enabled    bool
	Endpoint   string
	SampleRate float64
}

// ProfilingConfig holds Pyroscope settings.
type ProfilingConfig struct {
	Enabled  bool
	Endpoint string
}

// Config is the root configuration object. It is constructed once at
// process start and read-only afterwards.
type Config struct {
	Service   ServiceConfig
	Logging   LoggingConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Tracing   TracingConfig
	Profiling ProfilingConfig

	ShutdownTimeout     string
	ReadinessDrainDelay string
}

// Load reads configuration from the environment. A missing .env file is
// not an error; explicit environment variables always win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Service: ServiceConfig{
			Name:    getEnv("SERVICE_NAME", "servify-backend"),
			Version: getEnv("SERVICE_VERSION", "dev"),
			Env:     getEnv("ENV", "development"),
			Port:    getEnv("SERVICE_PORT", "8080"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:           os.Getenv("POSTGRES_URL"),
			NonPoolingURL: os.Getenv("POSTGRES_URL_NON_POOLING"),
		},
		Auth: AuthConfig{
			BaseURL:       getEnv("BASE_URL", "http://localhost:8080"),
			ProductionURL: getEnv("PRODUCTION_URL", "https://servify.app"),
			Secret:        os.Getenv("AUTH_SECRET"),
			Discord: ProviderCredentials{
				Enabled:      getEnvBool("AUTH_DISCORD_ENABLED", true),
				ClientID:     os.Getenv("AUTH_DISCORD_ID"),
				ClientSecret: os.Getenv("AUTH_DISCORD_SECRET"),
			},
			Apple: ProviderCredentials{
				Enabled:             getEnvBool("AUTH_APPLE_ENABLED", false),
				ClientID:            os.Getenv("AUTH_APPLE_CLIENT_ID"),
				ClientSecret:        os.Getenv("AUTH_APPLE_CLIENT_SECRET"),
				AppBundleIdentifier: os.Getenv("AUTH_APPLE_APP_BUNDLE_IDENTIFIER"),
			},
			Google: ProviderCredentials{
				Enabled:      getEnvBool("AUTH_GOOGLE_ENABLED", false),
				ClientID:     os.Getenv("AUTH_GOOGLE_CLIENT_ID"),
				ClientSecret: os.Getenv("AUTH_GOOGLE_CLIENT_SECRET"),
			},
		},
		Tracing: TracingConfig{
			Enabled:    getEnvBool("TRACING_ENABLED", false),
			Endpoint:   getEnv("TRACING_ENDPOINT", "localhost:4318"),
			SampleRate: getEnvFloat("TRACING_SAMPLE_RATE", 1.0),
		},
		Profiling: ProfilingConfig{
			Enabled:  getEnvBool("PROFILING_ENABLED", false),
			Endpoint: getEnv("PROFILING_ENDPOINT", "http://localhost:4040"),
		},
		ShutdownTimeout:     getEnv("SHUTDOWN_TIMEOUT", "15s"),
		ReadinessDrainDelay: getEnv("READINESS_DRAIN_DELAY", "0s"),
	}
}

// Validate checks that every required value is present and non-empty.
// It returns the first missing key so startup logs point at the exact
// misconfiguration.
func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"POSTGRES_URL", c.Database.URL},
		{"POSTGRES_URL_NON_POOLING", c.Database.NonPoolingURL},
		{"AUTH_SECRET", c.Auth.Secret},
		{"AUTH_DISCORD_ID", c.Auth.Discord.ClientID},
		{"AUTH_DISCORD_SECRET", c.Auth.Discord.ClientSecret},
		{"AUTH_APPLE_CLIENT_ID", c.Auth.Apple.ClientID},
		{"AUTH_APPLE_CLIENT_SECRET", c.Auth.Apple.ClientSecret},
		{"AUTH_APPLE_APP_BUNDLE_IDENTIFIER", c.Auth.Apple.AppBundleIdentifier},
		{"AUTH_GOOGLE_CLIENT_ID", c.Auth.Google.ClientID},
		{"AUTH_GOOGLE_CLIENT_SECRET", c.Auth.Google.ClientSecret},
	}

	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("missing required environment variable %s", r.key)
		}
	}

	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q: %w", c.ShutdownTimeout, err)
	}
	if _, err := time.ParseDuration(c.ReadinessDrainDelay); err != nil {
		return fmt.Errorf("invalid READINESS_DRAIN_DELAY %q: %w", c.ReadinessDrainDelay, err)
	}

	return nil
}

// GetShutdownTimeoutDuration returns the parsed shutdown timeout.
// Validate has already checked the value parses.
func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// GetReadinessDrainDelayDuration returns the parsed readiness drain delay.
func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.ReadinessDrainDelay)
	return d
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
