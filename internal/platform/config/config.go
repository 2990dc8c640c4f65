package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ConsoleAddr       string
	GatewayURL        string
	GatewayTimeout    time.Duration
	SessionSecret     string
	SessionTTL        time.Duration
	NotificationTTL   time.Duration
	Environment       string
	GatewayAddr       string
	DatabaseURL       string
	GatewayJWTSecret  string
	GatewayTokenTTL   time.Duration
	DoubleEncode      bool
	RunMigrations     bool
	RunSeed           bool
	MigrationsDir     string
	SeedAdminUsername string
	SeedAdminPassword string
	MaxBodyBytes      int64
	RateLimitPerMin   int
	SweepInterval     time.Duration
}

// DefaultSeedPassword is only acceptable outside production.
const DefaultSeedPassword = "ChangeMe123!"

// Load reads the environment, after merging a .env file from the working
// directory when one exists. Variables already set win over the file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("dotenv load failed", "err", err)
	}
	return Config{
		ConsoleAddr:       getEnv("CONSOLE_ADDR", ":8080"),
		GatewayURL:        getEnv("GATEWAY_URL", "http://localhost:8090"),
		GatewayTimeout:    getEnvDuration("GATEWAY_TIMEOUT", 15*time.Second),
		SessionSecret:     getEnv("SESSION_SECRET", ""),
		SessionTTL:        getEnvDuration("SESSION_TTL", 8*time.Hour),
		NotificationTTL:   getEnvDuration("NOTIFICATION_TTL", 4*time.Second),
		Environment:       getEnv("APP_ENV", "development"),
		GatewayAddr:       getEnv("GATEWAY_ADDR", ":8090"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		GatewayJWTSecret:  getEnv("GATEWAY_JWT_SECRET", ""),
		GatewayTokenTTL:   getEnvDuration("GATEWAY_TOKEN_TTL", 12*time.Hour),
		DoubleEncode:      getEnvBool("GATEWAY_DOUBLE_ENCODE", false),
		RunMigrations:     getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:           getEnvBool("RUN_SEED", true),
		MigrationsDir:     getEnv("MIGRATIONS_DIR", "migrations"),
		SeedAdminUsername: getEnv("SEED_ADMIN_USERNAME", "admin"),
		SeedAdminPassword: getEnv("SEED_ADMIN_PASSWORD", DefaultSeedPassword),
		MaxBodyBytes:      int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMin:   getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		SweepInterval:     getEnvDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// ValidateConsole checks the settings the console server needs.
func (c Config) ValidateConsole() error {
	if strings.TrimSpace(c.GatewayURL) == "" {
		return fmt.Errorf("GATEWAY_URL is required")
	}
	if _, err := url.ParseRequestURI(c.GatewayURL); err != nil {
		return fmt.Errorf("GATEWAY_URL is not a valid url: %w", err)
	}
	if c.Environment == "production" && strings.TrimSpace(c.SessionSecret) == "" {
		return fmt.Errorf("SESSION_SECRET must be set to a strong value in production")
	}
	if c.GatewayTimeout <= 0 {
		return fmt.Errorf("GATEWAY_TIMEOUT must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	return nil
}

// ValidateGateway checks the settings the reference gateway needs.
func (c Config) ValidateGateway() error {
	if c.Environment == "production" {
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required in production")
		}
		if strings.TrimSpace(c.GatewayJWTSecret) == "" {
			return fmt.Errorf("GATEWAY_JWT_SECRET must be set to a strong value in production")
		}
		if c.RunSeed && (strings.TrimSpace(c.SeedAdminPassword) == "" || c.SeedAdminPassword == DefaultSeedPassword) {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed or RUN_SEED disabled in production")
		}
	}
	if c.GatewayTokenTTL <= 0 {
		return fmt.Errorf("GATEWAY_TOKEN_TTL must be positive")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}
