package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           string
	Environment    string
	LogLevel       slog.Level
	RedisURL       string
	DataDir        string
	StateTTL       time.Duration
	DefaultSpecies string
	Seed           uint64 // 0 means derive from the clock
}

func Load() (*Config, error) {
	ttl, err := time.ParseDuration(getEnv("STATE_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("STATE_TTL: %w", err)
	}
	var seed uint64
	if raw := getEnv("SEED", ""); raw != "" {
		if seed, err = strconv.ParseUint(raw, 10, 64); err != nil {
			return nil, fmt.Errorf("SEED: %w", err)
		}
	}
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:       getEnv("REDIS_URL", "localhost:6379"),
		DataDir:        getEnv("DATA_DIR", "./data"),
		StateTTL:       ttl,
		DefaultSpecies: getEnv("DEFAULT_SPECIES", "gray-wolf"),
		Seed:           seed,
	}, nil
}

// NewSeed returns the configured seed, or one derived from the clock.
func (c *Config) NewSeed() uint64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return uint64(time.Now().UnixNano())
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
