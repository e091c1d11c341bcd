package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	RedisAddress  string
	RedisPassword string
	RedisPrefix   string

	JWTSecret string
	APIPort   string

	// MaxPageLimit caps the page size of every generated list endpoint
	MaxPageLimit int

	// GinMode selects gin's run mode (debug, release, test)
	GinMode string
)

// Load reads the .env file if present and resolves every setting from the
// environment. Missing optional settings fall back to development defaults.
func Load() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, relying on environment")
	}

	PostgresHost = getEnv("POSTGRES_HOST", "localhost")
	PostgresPort = getEnv("POSTGRES_PORT", "5432")
	PostgresUser = getEnv("POSTGRES_USER", "postgres")
	PostgresPassword = getEnv("POSTGRES_PASSWORD", "postgres")
	PostgresDB = getEnv("POSTGRES_DB", "crudapi")

	RedisAddress = getEnv("REDIS_ADDRESS", "localhost:6379")
	RedisPassword = getEnv("REDIS_PASSWORD", "")
	RedisPrefix = getEnv("REDIS_PREFIX", "crud")

	JWTSecret = getEnv("JWT_SECRET", "dev-secret-change-me")
	APIPort = getEnv("API_PORT", "8080")
	GinMode = getEnv("GIN_MODE", "debug")

	MaxPageLimit = getEnvInt("MAX_PAGE_LIMIT", 1000)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		logrus.Warnf("ignoring invalid %s=%q", key, value)
		return fallback
	}
	return n
}
