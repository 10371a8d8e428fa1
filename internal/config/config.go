package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration from environment variables.
type Config struct {
	Addr     string
	DBPath   string
	LogLevel string

	APIClientID string // DB API marketplace client id
	APIKey      string // DB API marketplace key

	PollingEnabled  bool
	PollingInterval int     // seconds between poll cycles
	PollingRoutes   string  // e.g. "Augsburg Hbf->München Hbf;Ulm Hbf<->Stuttgart Hbf"
	WindowHours     float64 // size of the past departure window per cycle
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Addr:     envStr("DBLIVE_ADDR", ":8080"),
		DBPath:   envStr("DBLIVE_DB_PATH", "./dblive.db"),
		LogLevel: envStr("DBLIVE_LOG_LEVEL", "info"),

		APIClientID: envStr("DB_CLIENT_ID", ""),
		APIKey:      envStr("DB_API_KEY", ""),

		PollingEnabled:  envBool("POLLING_ENABLED", false),
		PollingInterval: envInt("POLLING_INTERVAL", 3600),
		PollingRoutes:   envStr("POLLING_ROUTES", ""),
		WindowHours:     envFloat("POLLING_WINDOW_HOURS", 1.0),
	}
}

// SlogLevel maps the configured log level name onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
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

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
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
