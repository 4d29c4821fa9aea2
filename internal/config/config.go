package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	HTTPAddr     string
	LogLevel     string

	// Storage
	StoreBackend    string
	DBDSN           string
	DBRunMigrations bool
	SeedFixtures    bool

	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnIdleTime time.Duration

	// Redis backs the vendor location index when set.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// MediaDir holds vendor photos; empty keeps them in memory.
	MediaDir string

	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	BcryptCost        int

	CompletionSweepSchedule string
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// Application environment (default: dev)
	appEnvStr := getEnv("APP_ENV", "dev")
	cfg.IsProduction = appEnvStr == PROD_STRING

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	// Storage backend (default: memory)
	cfg.StoreBackend = strings.ToLower(getEnv("STORE_BACKEND", BackendMemory))
	switch cfg.StoreBackend {
	case BackendMemory, BackendPostgres:
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: want %s or %s", cfg.StoreBackend, BackendMemory, BackendPostgres)
	}

	// Database DSN is required for the postgres backend
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.StoreBackend == BackendPostgres && cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required when STORE_BACKEND=%s", BackendPostgres)
	}

	cfg.DBRunMigrations, err = getEnvAsBool("DB_RUN_MIGRATIONS", true)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_RUN_MIGRATIONS: %w", err)
	}

	maxConns, err := getEnvAsInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := getEnvAsInt("DB_MIN_CONNS", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}
	if maxConns < 1 || minConns < 0 || minConns > maxConns {
		return nil, fmt.Errorf("DB_MIN_CONNS=%d and DB_MAX_CONNS=%d must satisfy 0 <= min <= max, max >= 1", minConns, maxConns)
	}
	cfg.DBMaxConns = int32(maxConns)
	cfg.DBMinConns = int32(minConns)

	cfg.DBMaxConnIdleTime, err = getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONN_IDLE_TIME: %w", err)
	}

	cfg.SeedFixtures, err = getEnvAsBool("SEED_FIXTURES", !cfg.IsProduction)
	if err != nil {
		return nil, fmt.Errorf("invalid SEED_FIXTURES: %w", err)
	}

	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB, err = getEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg.MediaDir = getEnv("MEDIA_DIR", "")

	// JWT secret is required for signing tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// JWT access token TTL, parse as time.Duration (e.g. "15m", "1h").
	cfg.JWTAccessTokenTTL, err = getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_TTL: %w", err)
	}

	// Bcrypt cost for password hashing (default: 12)
	cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", 12)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	// Cron spec for completing elapsed bookings (robfig/cron syntax)
	cfg.CompletionSweepSchedule = getEnv("COMPLETION_SWEEP_SCHEDULE", "@every 10m")

	return cfg, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		// Return 0 and a wrapped error to provide context
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(valStr)
	if err != nil {
		return false, fmt.Errorf("env %s value %q is not a valid boolean: %w", key, valStr, err)
	}

	return val, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid duration: %w", key, valStr, err)
	}

	return val, nil
}
