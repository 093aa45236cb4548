// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	ServerPort string
	LogLevel   string

	// Attestation API
	APIBaseURL      string
	APIToken        string
	APITimeout      time.Duration
	RefreshInterval time.Duration

	// CLI identity
	CLIRole  string
	CLIEmail string

	// RabbitMQ
	AMQPURL      string
	ActionsQueue string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads .env when present and then the process environment.
// It reports whether a .env file was found.
func Load() (*Config, bool) {
	loaded := godotenv.Load() == nil

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		APIBaseURL:      getEnv("ATTESTATION_API_URL", "http://localhost:3001"),
		APIToken:        getEnv("ATTESTATION_API_TOKEN", ""),
		APITimeout:      getDuration("API_TIMEOUT", 10*time.Second),
		RefreshInterval: getDuration("REFRESH_INTERVAL", 60*time.Second),

		CLIRole:  getEnv("ATTEST_ROLE", "attestation_coordinator"),
		CLIEmail: getEnv("ATTEST_EMAIL", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		ActionsQueue: getEnv("ACTIONS_QUEUE", "attestation_actions"),

		DBHost:     getEnv("DB_HOST", ""),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),
	}, loaded
}

// ActionLogEnabled reports whether a database is configured for the action log.
func (c *Config) ActionLogEnabled() bool {
	return c.DBHost != "" && c.DBName != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
