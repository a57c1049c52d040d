package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	CORS      CORSConfig      `yaml:"cors"`
	Twilio    TwilioConfig    `yaml:"twilio"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Stripe    StripeConfig    `yaml:"stripe"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Content   ContentConfig   `yaml:"content"`

	// Environment is the deployment tag returned by the health endpoint and
	// used to gate test-only routes ("production" disables them).
	Environment string `yaml:"environment"`
}

// IsProduction reports whether test-only routes must be disabled.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// DatabaseConfig holds Postgres connection settings
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// AuthConfig holds bearer token settings. Secret is required for every
// protected route; the API refuses to authenticate rather than fall back to
// a built-in default.
type AuthConfig struct {
	JWTSecret    string `yaml:"jwt_secret"`
	CookieName   string `yaml:"cookie_name"`
	TokenTTLDays int    `yaml:"token_ttl_days"`
}

// TokenTTL returns the configured token lifetime as a duration.
func (c AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLDays) * 24 * time.Hour
}

// CORSConfig holds the explicit origin allow-list. DefaultOrigin is the
// origin used when none is configured; a wildcard is never emitted because
// credentials are always allowed.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	DefaultOrigin  string   `yaml:"default_origin"`
}

// Origins returns the full allow-list including the default origin.
func (c CORSConfig) Origins() []string {
	out := make([]string, 0, len(c.AllowedOrigins)+1)
	out = append(out, c.AllowedOrigins...)
	if c.DefaultOrigin != "" {
		for _, o := range out {
			if o == c.DefaultOrigin {
				return out
			}
		}
		out = append(out, c.DefaultOrigin)
	}
	return out
}

// TwilioConfig holds SMS gateway credentials
type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

// Configured reports whether all three credentials are present; the SMS
// channel is used only when they are.
func (c TwilioConfig) Configured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.FromNumber != ""
}

// SendGridConfig holds transactional email gateway credentials
type SendGridConfig struct {
	APIKey         string `yaml:"api_key"`
	FromEmail      string `yaml:"from_email"`
	FromName       string `yaml:"from_name"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Configured reports whether the email channel can be used.
func (c SendGridConfig) Configured() bool {
	return c.APIKey != "" && c.FromEmail != ""
}

// Timeout returns the configured timeout as a duration
func (c SendGridConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// OpenAIConfig holds the AI rewrite gateway configuration
type OpenAIConfig struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	DailyLimit     int    `yaml:"daily_limit"`
}

// Configured reports whether the polish endpoint can call the gateway.
func (c OpenAIConfig) Configured() bool {
	return c.APIKey != ""
}

// Timeout returns the configured timeout as a duration
func (c OpenAIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StripeConfig holds payment gateway credentials
type StripeConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
	PriceID       string `yaml:"price_id"`
	SuccessURL    string `yaml:"success_url"`
	CancelURL     string `yaml:"cancel_url"`
	TrialDays     int    `yaml:"trial_days"`
}

// Configured reports whether checkout sessions can be created.
func (c StripeConfig) Configured() bool {
	return c.SecretKey != "" && c.PriceID != ""
}

// SchedulerConfig holds the daily batch job settings
type SchedulerConfig struct {
	// CronSpec is a standard 5-field cron expression for the daily sweep.
	CronSpec string `yaml:"cron_spec"`
	// RedisURL enables the cross-instance run lock when set.
	RedisURL string `yaml:"redis_url"`
	// WeeklySendDay is the weekday (0=Sunday) for weekly and free-tier sends.
	WeeklySendDay int `yaml:"weekly_send_day"`
}

// ContentConfig holds catalog settings.
type ContentConfig struct {
	// Themes overrides the built-in theme enumeration when non-empty.
	Themes []string `yaml:"themes"`
	// PromptRecencyDays is the trailing window excluded from prompt draws.
	PromptRecencyDays int `yaml:"prompt_recency_days"`
	// FreePromptWindowDays is the rolling quota window for free-tier prompts.
	FreePromptWindowDays int `yaml:"free_prompt_window_days"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 3
	}
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "lovenotes_auth"
	}
	if cfg.Auth.TokenTTLDays == 0 {
		cfg.Auth.TokenTTLDays = 30
	}
	if cfg.CORS.DefaultOrigin == "" {
		cfg.CORS.DefaultOrigin = "http://localhost:3000"
	}
	if cfg.SendGrid.TimeoutSeconds == 0 {
		cfg.SendGrid.TimeoutSeconds = 30
	}
	if cfg.SendGrid.FromName == "" {
		cfg.SendGrid.FromName = "LoveNotes"
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.OpenAI.TimeoutSeconds == 0 {
		cfg.OpenAI.TimeoutSeconds = 30
	}
	if cfg.OpenAI.DailyLimit == 0 {
		cfg.OpenAI.DailyLimit = 5
	}
	if cfg.Stripe.TrialDays == 0 {
		cfg.Stripe.TrialDays = 7
	}
	if cfg.Scheduler.CronSpec == "" {
		cfg.Scheduler.CronSpec = "0 8 * * *"
	}
	if cfg.Content.PromptRecencyDays == 0 {
		cfg.Content.PromptRecencyDays = 90
	}
	if cfg.Content.FreePromptWindowDays == 0 {
		cfg.Content.FreePromptWindowDays = 7
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		// A missing config file is fine when everything comes from env.
		if !os.IsNotExist(err) {
			return nil, err
		}
		cfg = &Config{}
		applyDefaults(cfg)
	}

	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("ALLOWED_ORIGIN"); v != "" {
		cfg.CORS.DefaultOrigin = v
	}
	if v := os.Getenv("TWILIO_ACCOUNT_SID"); v != "" {
		cfg.Twilio.AccountSID = v
	}
	if v := os.Getenv("TWILIO_AUTH_TOKEN"); v != "" {
		cfg.Twilio.AuthToken = v
	}
	if v := os.Getenv("TWILIO_PHONE_NUMBER"); v != "" {
		cfg.Twilio.FromNumber = v
	}
	if v := os.Getenv("SENDGRID_API_KEY"); v != "" {
		cfg.SendGrid.APIKey = v
	}
	if v := os.Getenv("SENDGRID_FROM_EMAIL"); v != "" {
		cfg.SendGrid.FromEmail = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("STRIPE_SECRET_KEY"); v != "" {
		cfg.Stripe.SecretKey = v
	}
	if v := os.Getenv("STRIPE_WEBHOOK_SECRET"); v != "" {
		cfg.Stripe.WebhookSecret = v
	}
	if v := os.Getenv("STRIPE_PRICE_ID"); v != "" {
		cfg.Stripe.PriceID = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Scheduler.RedisURL = v
	}

	return cfg, nil
}
