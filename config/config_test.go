package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("POSTGRES_URL", "postgres://app@db:6543/servify")
	t.Setenv("POSTGRES_URL_NON_POOLING", "postgres://app@db:5432/servify")
	t.Setenv("AUTH_SECRET", "test-secret")
	t.Setenv("AUTH_DISCORD_ID", "discord-id")
	t.Setenv("AUTH_DISCORD_SECRET", "discord-secret")
	t.Setenv("AUTH_APPLE_CLIENT_ID", "apple-id")
	t.Setenv("AUTH_APPLE_CLIENT_SECRET", "apple-secret")
	t.Setenv("AUTH_APPLE_APP_BUNDLE_IDENTIFIER", "app.servify.ios")
	t.Setenv("AUTH_GOOGLE_CLIENT_ID", "google-id")
	t.Setenv("AUTH_GOOGLE_CLIENT_SECRET", "google-secret")
}

func TestValidateSucceedsWithFullEnvironment(t *testing.T) {
	setRequiredEnv(t)

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "postgres://app@db:6543/servify", cfg.Database.URL)
	assert.Equal(t, "postgres://app@db:5432/servify", cfg.Database.NonPoolingURL)
	assert.Equal(t, "test-secret", cfg.Auth.Secret)
	assert.Equal(t, "app.servify.ios", cfg.Auth.Apple.AppBundleIdentifier)
}

func TestValidateFailsOnEachMissingKey(t *testing.T) {
	keys := []string{
		"POSTGRES_URL",
		"POSTGRES_URL_NON_POOLING",
		"AUTH_SECRET",
		"AUTH_DISCORD_ID",
		"AUTH_DISCORD_SECRET",
		"AUTH_APPLE_CLIENT_ID",
		"AUTH_APPLE_CLIENT_SECRET",
		"AUTH_APPLE_APP_BUNDLE_IDENTIFIER",
		"AUTH_GOOGLE_CLIENT_ID",
		"AUTH_GOOGLE_CLIENT_SECRET",
	}

	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(key, "")

			cfg := Load()
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestDisabledProviderStillRequiresCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AUTH_GOOGLE_ENABLED", "false")
	t.Setenv("AUTH_GOOGLE_CLIENT_ID", "")

	cfg := Load()
	require.Error(t, cfg.Validate())
}

func TestDurationKnobs(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("READINESS_DRAIN_DELAY", "5s")

	cfg := Load()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30*time.Second, cfg.GetShutdownTimeoutDuration())
	assert.Equal(t, 5*time.Second, cfg.GetReadinessDrainDelayDuration())
}

func TestInvalidDurationFailsValidation(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	cfg := Load()
	require.Error(t, cfg.Validate())
}
