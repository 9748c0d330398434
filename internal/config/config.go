package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// EnvFileLoaded is false when no .env was found and only the process environment applies.
	EnvFileLoaded     bool
	Port              string
	DatabaseURL       string
	JWTSecret         string
	TokenTTL          time.Duration
	LogLevel          string
	SeedAdminEmail    string
	SeedAdminPassword string
}

// Load reads .env when present and then the process environment.
func Load() *Config {
	envFileLoaded := godotenv.Load() == nil

	ttlHours, err := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "24"))
	if err != nil || ttlHours <= 0 {
		ttlHours = 24
	}

	return &Config{
		EnvFileLoaded:     envFileLoaded,
		Port:              getEnv("PORT", "3000"),
		DatabaseURL:       databaseURL(),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		TokenTTL:          time.Duration(ttlHours) * time.Hour,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		SeedAdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@example.com"),
		SeedAdminPassword: getEnv("SEED_ADMIN_PASSWORD", ""),
	}
}

func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		getEnv("DB_NAME", "hotel_portfolio"),
		getEnv("DB_PORT", "5432"),
	)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
