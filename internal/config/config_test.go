package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "lovenotes_auth", cfg.Auth.CookieName)
	assert.Equal(t, 30, cfg.Auth.TokenTTLDays)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.TokenTTL())
	assert.Equal(t, 5, cfg.OpenAI.DailyLimit)
	assert.Equal(t, 7, cfg.Stripe.TrialDays)
	assert.Equal(t, "0 8 * * *", cfg.Scheduler.CronSpec)
	assert.Equal(t, 7, cfg.Content.FreePromptWindowDays)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	path := writeConfig(t, "auth:\n  jwt_secret: from-file\n")

	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "tok")
	t.Setenv("TWILIO_PHONE_NUMBER", "+15550001111")

	cfg, err := LoadFromEnv(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.True(t, cfg.Twilio.Configured())
}

func TestLoadFromEnvMissingFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/lovenotes")

	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/lovenotes", cfg.Database.URL)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestGatewayConfigured(t *testing.T) {
	assert.False(t, TwilioConfig{AccountSID: "AC1"}.Configured())
	assert.True(t, TwilioConfig{AccountSID: "AC1", AuthToken: "t", FromNumber: "+1"}.Configured())
	assert.False(t, SendGridConfig{APIKey: "k"}.Configured())
	assert.True(t, SendGridConfig{APIKey: "k", FromEmail: "hi@lovenotes.app"}.Configured())
}

func TestCORSOrigins(t *testing.T) {
	c := CORSConfig{
		AllowedOrigins: []string{"https://lovenotes.app"},
		DefaultOrigin:  "http://localhost:3000",
	}
	assert.Equal(t, []string{"https://lovenotes.app", "http://localhost:3000"}, c.Origins())

	// Default origin already listed is not duplicated.
	c.DefaultOrigin = "https://lovenotes.app"
	assert.Equal(t, []string{"https://lovenotes.app"}, c.Origins())
}

func TestIsProduction(t *testing.T) {
	assert.True(t, (&Config{Environment: "production"}).IsProduction())
	assert.False(t, (&Config{Environment: "staging"}).IsProduction())
}
