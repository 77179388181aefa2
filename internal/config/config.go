package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port     int
	LogLevel string
	APIToken string

	StoreBackend string // memory | sqlite | postgres
	DatabaseURL  string
	SQLitePath   string
	ArchiveLimit int

	NatsURL   string
	NatsToken string

	GatewayBackend  string // proxy | openai | anthropic
	GatewayURL      string
	GatewayTimeout  time.Duration
	OpenAIAPIKey    string
	OpenAIModel     string
	AnthropicAPIKey string
	AnthropicModel  string

	TypingInterval time.Duration
	RateLimit      float64
	RateBurst      int

	SessionIdleTTL time.Duration // 0 keeps sessions in memory forever
}

func Load() Config {
	return Config{
		Port:     envInt("ASSIST_PORT", 8760),
		LogLevel: envStr("LOG_LEVEL", "info"),
		APIToken: envStr("ASSIST_API_TOKEN", ""),

		StoreBackend: envStr("STORE_BACKEND", "sqlite"),
		DatabaseURL:  envStr("DATABASE_URL", ""),
		SQLitePath:   envStr("SQLITE_PATH", "./data/assist.db"),
		ArchiveLimit: envInt("ARCHIVE_LIMIT", 10),

		NatsURL:   envStr("NATS_URL", ""),
		NatsToken: envStr("NATS_TOKEN", ""),

		GatewayBackend:  envStr("GATEWAY_BACKEND", "proxy"),
		GatewayURL:      envStr("GATEWAY_URL", "http://localhost:3000/api/openaiChatbot"),
		GatewayTimeout:  envDuration("GATEWAY_TIMEOUT", 120*time.Second),
		OpenAIAPIKey:    envStr("OPENAI_API_KEY", ""),
		OpenAIModel:     envStr("OPENAI_MODEL", "gpt-3.5-turbo"),
		AnthropicAPIKey: envStr("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  envStr("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),

		TypingInterval: envDuration("TYPING_INTERVAL", 20*time.Millisecond),
		RateLimit:      envFloat("CHAT_RATE_LIMIT", 1),
		RateBurst:      envInt("CHAT_RATE_BURST", 5),

		SessionIdleTTL: envDuration("SESSION_IDLE_TTL", 30*time.Minute),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// envDuration accepts Go duration strings ("150ms", "2m").
func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			return d
		}
	}
	return fallback
}
