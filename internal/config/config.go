package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port           int
	DatabaseURL    string
	NatsURL        string
	NatsToken      string
	LogLevel       string
	PromptsPath    string
	AIAPIKey       string
	AIBaseURL      string
	AIModel        string
	RequestTimeout time.Duration
	DBMaxAttempts  int
	DBRetryDelay   time.Duration
}

func Load() Config {
	return Config{
		Port:           envInt("GLOSS_PORT", 8640),
		DatabaseURL:    envStr("DATABASE_URL", ""),
		NatsURL:        envStr("NATS_URL", ""),
		NatsToken:      envStr("NATS_TOKEN", ""),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		PromptsPath:    envStr("GLOSS_PROMPTS_PATH", "prompts.toml"),
		AIAPIKey:       envStr("AI_API_KEY", ""),
		AIBaseURL:      envStr("AI_BASE_URL", "https://llm.api.cloud.yandex.net/v1"),
		AIModel:        envStr("AI_MODEL", "yandexgpt-lite"),
		RequestTimeout: envDur("GLOSS_REQUEST_TIMEOUT", 90*time.Second),
		DBMaxAttempts:  envInt("GLOSS_DB_MAX_ATTEMPTS", 5),
		DBRetryDelay:   envDur("GLOSS_DB_RETRY_DELAY", 500*time.Millisecond),
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

func envDur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
