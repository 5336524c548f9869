package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries the process-level settings. Per-request settings
// (upstream endpoint, model, credential) arrive with each request and
// are deliberately absent here.
type Config struct {
	Addr     string
	LogLevel string
	LogJSON  bool

	HistoryDBPath string
	QuoteBaseURL  string

	// UpstreamIdleTimeout bounds the silence between two upstream
	// reads on an active stream. Zero disables the guard.
	UpstreamIdleTimeout time.Duration
}

func Load() *Config {
	// Best effort; absence of a .env file is the normal case.
	_ = godotenv.Load()

	return &Config{
		Addr:                getEnvString("ADDR", "8080"),
		LogLevel:            getEnvString("LOG_LEVEL", "info"),
		LogJSON:             getEnvBool("LOG_JSON", false),
		HistoryDBPath:       getEnvString("HISTORY_DB", "history.db"),
		QuoteBaseURL:        getEnvString("QUOTE_BASE_URL", "https://push2.eastmoney.com"),
		UpstreamIdleTimeout: getEnvDuration("UPSTREAM_IDLE_TIMEOUT", 120*time.Second),
	}
}

func getEnvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
