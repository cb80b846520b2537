package config

import (
	"log/slog"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

const defaultEnvPath = "./configs/.env"

var (
	once     sync.Once
	instance *Config
)

type Config struct {
}

// New loads the env file once. CONFIG_PATH overrides the default
// location; a missing file is fine when everything comes from the
// environment (containers).
func New() *Config {
	once.Do(func() {
		path := os.Getenv("CONFIG_PATH")
		if path == "" {
			path = defaultEnvPath
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("env file not loaded, relying on process environment", slog.String("path", path))
		}
		instance = &Config{}
	})
	return instance
}

func (c *Config) GetString(key string) string {
	return os.Getenv(key)
}

func (c *Config) GetStringOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
