package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port           string
	Environment    string
	LogLevel       string
	AllowedOrigins []string
	DataDir        string
	PublicDir      string
	SiteURL        string
	MaxBodyBytes   int64
	RedisURL       string
	// TrustProxyHops is the number of reverse proxies in front of the
	// server whose X-Forwarded-For entries are trusted. 0 uses the socket address.
	TrustProxyHops int

	AdminUsername      string
	AdminPassword      string
	JWTSecret          string
	AdminSessionSecret string

	TelegramBotToken      string
	TelegramChatID        string
	TelegramWebhookSecret string
	TelegramAPIURL        string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	environment := getEnv("ENVIRONMENT", getEnv("NODE_ENV", "production"))
	if getBoolEnv("DEVELOPMENT_MODE", false) {
		environment = "development"
	}

	cfg := &Config{
		Port:           getEnv("PORT", "3000"),
		Environment:    environment,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
		DataDir:        getEnv("DATA_DIR", "data"),
		PublicDir:      getEnv("PUBLIC_DIR", "public"),
		SiteURL:        strings.TrimRight(getEnv("SITE_URL", ""), "/"),
		MaxBodyBytes:   getInt64Env("MAX_BODY_BYTES", 1<<20),
		RedisURL:       getEnv("REDIS_URL", ""),
		TrustProxyHops: int(getInt64Env("TRUST_PROXY_HOPS", 0)),

		AdminUsername:      os.Getenv("ADMIN_USERNAME"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		AdminSessionSecret: os.Getenv("ADMIN_SESSION_SECRET"),

		TelegramBotToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:        os.Getenv("TELEGRAM_CHAT_ID"),
		TelegramWebhookSecret: os.Getenv("TELEGRAM_WEBHOOK_SECRET"),
		TelegramAPIURL:        getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every mandatory secret is present. Telegram
// credentials and the webhook secret may be omitted only in development mode.
func (c *Config) Validate() error {
	if c.AdminUsername == "" || c.AdminPassword == "" {
		return fmt.Errorf("missing admin credentials: set ADMIN_USERNAME and ADMIN_PASSWORD")
	}
	if c.JWTSecret == "" || c.AdminSessionSecret == "" {
		return fmt.Errorf("missing security keys: set JWT_SECRET and ADMIN_SESSION_SECRET")
	}
	if !c.IsDevelopment() && !c.TelegramEnabled() {
		return fmt.Errorf("missing TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID (set DEVELOPMENT_MODE=true to run without them)")
	}
	if !c.IsDevelopment() && c.TelegramEnabled() && c.TelegramWebhookSecret == "" {
		return fmt.Errorf("missing TELEGRAM_WEBHOOK_SECRET: the bot webhook cannot be left unauthenticated")
	}
	return nil
}

// IsDevelopment reports whether the development mode flag is set
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// TelegramEnabled reports whether notification credentials are configured
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt64Env(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
