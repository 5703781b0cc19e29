package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		Port string
	}
	Backend struct {
		URL         string
		Timeout     time.Duration
		OrdersLimit int
	}
	Status struct {
		PollInterval time.Duration
	}
}

// Load reads configuration from the environment, optionally seeded from a
// .env file. BACKEND_URL is the only required value.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{}

	cfg.App.Port = getEnv("APP_PORT", "8080")

	cfg.Backend.URL = os.Getenv("BACKEND_URL")
	if cfg.Backend.URL == "" {
		return nil, fmt.Errorf("BACKEND_URL is required")
	}

	timeout, err := getEnvDuration("HTTP_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.Backend.Timeout = timeout

	limit, err := getEnvInt("ORDERS_LIMIT", 100)
	if err != nil {
		return nil, err
	}
	cfg.Backend.OrdersLimit = limit

	interval, err := getEnvDuration("STATUS_POLL_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.Status.PollInterval = interval

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 30s, got %q", key, v)
	}
	return d, nil
}
