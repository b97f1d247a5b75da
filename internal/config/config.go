package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultTopicClosedTTL      = 30 * 24 * time.Hour
	defaultMaxBodyBytes        = 1 << 20
	defaultTelegramAPIEndpoint = "https://api.telegram.org/bot%s/%s"
	defaultConfirmationMessage = "✅ Đã nhận tín hiệu. Topic này sẽ ngừng cập nhật link."
)

// Config holds all configuration for the application.
type Config struct {
	Port     string
	Env      string
	LogLevel string
	RedisURL string

	// Telegram
	TelegramBotToken    string
	TelegramAPIEndpoint string
	ConfirmationMessage string

	// Webhook behaviour
	TopicClosedTTL time.Duration
	MaxBodyBytes   int64

	// Rate limiting (read API only)
	RateLimitWhitelist []string // IPs or CIDRs exempt from rate limiting
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		Env:                 getEnv("ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		RedisURL:            os.Getenv("REDIS_URL"),
		TelegramBotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramAPIEndpoint: getEnv("TELEGRAM_API_ENDPOINT", defaultTelegramAPIEndpoint),
		ConfirmationMessage: getEnv("CONFIRMATION_MESSAGE", defaultConfirmationMessage),
		TopicClosedTTL:      getDuration("TOPIC_CLOSED_TTL", defaultTopicClosedTTL),
		MaxBodyBytes:        getInt64("MAX_BODY_BYTES", defaultMaxBodyBytes),
	}

	// Parse whitelist (comma-separated IPs or CIDRs)
	if whitelist := os.Getenv("RATE_LIMIT_WHITELIST"); whitelist != "" {
		for _, entry := range strings.Split(whitelist, ",") {
			entry = strings.TrimSpace(entry)
			if entry != "" {
				cfg.RateLimitWhitelist = append(cfg.RateLimitWhitelist, entry)
			}
		}
	}

	// In production, require redis; the in-memory store is for local runs only
	if cfg.Env == "production" && cfg.RedisURL == "" {
		panic("REDIS_URL is required in production")
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// BotToken returns the Telegram bot token, preferring the process
// environment so a rotated secret is picked up without a restart.
func (c *Config) BotToken() string {
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		return token
	}
	return c.TelegramBotToken
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
