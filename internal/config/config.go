// Package config loads runtime settings from the environment. A .env file in
// the working directory is read first if present.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath  string
	Addr    string
	DataDir string

	ReminderHour     int
	DeliveryInterval time.Duration

	BarkKey string
	BarkURL string

	GeminiAPIURL string
	GeminiModel  string

	MachineID string

	LogLevel slog.Level
}

// Load reads the configuration. Invalid numeric or duration values are
// reported as errors naming the variable.
func Load() (*Config, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:       getEnv("BESTBEFORE_DB", "bestbefore.sqlite3"),
		Addr:         getEnv("BESTBEFORE_ADDR", "127.0.0.1:8787"),
		DataDir:      getEnv("BESTBEFORE_DATA_DIR", "./data"),
		BarkKey:      getEnv("BESTBEFORE_BARK_KEY", ""),
		BarkURL:      getEnv("BESTBEFORE_BARK_URL", "https://api.day.app"),
		GeminiAPIURL: getEnv("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		MachineID:    getEnv("BESTBEFORE_MACHINE_ID", hostname()),
	}

	hour, err := strconv.Atoi(getEnv("BESTBEFORE_REMINDER_HOUR", "9"))
	if err != nil {
		return nil, fmt.Errorf("invalid BESTBEFORE_REMINDER_HOUR: %w", err)
	}
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("invalid BESTBEFORE_REMINDER_HOUR: %d is not between 0 and 23", hour)
	}
	cfg.ReminderHour = hour

	interval, err := time.ParseDuration(getEnv("BESTBEFORE_DELIVERY_INTERVAL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid BESTBEFORE_DELIVERY_INTERVAL: %w", err)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("invalid BESTBEFORE_DELIVERY_INTERVAL: must be positive")
	}
	cfg.DeliveryInterval = interval

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("BESTBEFORE_LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid BESTBEFORE_LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "bestbefore"
	}
	return name
}
