package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port         string
	Environment  string
	DatabaseURL  string // empty selects the in-memory store
	CORSOrigins  string
	TablePrefix  string
	// Auth: JWKSURL takes precedence over JWTSecret when both are set
	JWKSURL      string
	JWTSecret    string
	// Snapshot cache (disabled when RedisURL is empty)
	RedisURL     string
	SnapshotTTL  time.Duration
	// Log file output (stdout only when LogDir is empty)
	LogDir       string
	LogMaxFiles  int
	// Development identity used by cmd/seed and the in-memory server
	DevUserID    string
	DevUserEmail string
	// Client settings used by cmd/annotate
	APIBaseURL   string
	APIToken     string
	APITimeout   time.Duration
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:         getEnv("PORT", "8080"),
		Environment:  env,
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:  getTablePrefix(env),
		JWKSURL:      getEnv("AUTH_JWKS_URL", ""),
		JWTSecret:    getEnv("AUTH_JWT_SECRET", getDefaultSecret(env)),
		RedisURL:     getEnv("REDIS_URL", ""),
		SnapshotTTL:  time.Duration(getEnvInt("SNAPSHOT_TTL_SECONDS", 300)) * time.Second,
		LogDir:       getEnv("LOG_DIR", ""),
		LogMaxFiles:  getEnvInt("LOG_MAX_FILES", 10),
		DevUserID:    getEnv("DEV_USER_ID", "00000000-0000-0000-0000-000000000001"),
		DevUserEmail: getEnv("DEV_USER_EMAIL", "researcher@example.com"),
		APIBaseURL:   getEnv("QUALCODE_API_URL", "http://localhost:8080"),
		APIToken:     getEnv("QUALCODE_API_TOKEN", ""),
		APITimeout:   time.Duration(getEnvInt("QUALCODE_API_TIMEOUT_SECONDS", 30)) * time.Second,
	}
}

// getDefaultSecret returns a development-only signing secret.
// Production must configure AUTH_JWT_SECRET or AUTH_JWKS_URL explicitly.
func getDefaultSecret(env string) string {
	if env == "prod" {
		return ""
	}
	return "qualcode-dev-secret"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
