// Package config provides configuration for the bridge and the business
// service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the runtime configuration for both binaries.
type Config struct {
	// Server settings
	BusinessPort int
	MCPPort      int

	// Upstreams
	BusinessURL string
	JokeAPIURL  string

	// Observability store
	StoreDSN string

	// Timeouts
	BusinessTimeout time.Duration
	JokeTimeout     time.Duration

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		BusinessPort:    getEnvInt("BUSINESS_PORT", 8000),
		MCPPort:         getEnvInt("MCP_PORT", 3000),
		BusinessURL:     getEnv("BUSINESS_SERVER_URL", "http://localhost:8000"),
		JokeAPIURL:      getEnv("JOKE_API_URL", "https://official-joke-api.appspot.com/random_joke"),
		StoreDSN:        getEnv("STORE_DSN", ":memory:"),
		BusinessTimeout: time.Duration(getEnvInt("BUSINESS_TIMEOUT_MS", 30000)) * time.Millisecond,
		JokeTimeout:     time.Duration(getEnvInt("JOKE_TIMEOUT_MS", 5000)) * time.Millisecond,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
