package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is everything the server reads from the environment.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	Auth   AuthConfig
	Redis  RedisConfig
	Shop   ShopConfig
	Sales  SalesConfig
}

// ServerConfig holds HTTP server options.
type ServerConfig struct {
	Port          string
	BaseURL       string
	AllowedOrigin string
}

// DBConfig holds the MySQL connection string.
type DBConfig struct {
	DSN string
}

// AuthConfig holds the JWT secret and the registration feature flag.
type AuthConfig struct {
	JWTSecret         string
	AllowRegistration bool
}

// RedisConfig holds the report-cache connection details.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// ShopConfig is the header printed on every receipt.
type ShopConfig struct {
	Name  string
	Place string
	Phone string
	GSTIN string
}

// SalesConfig holds the reporting knobs.
type SalesConfig struct {
	RetentionDays int    // trailing window of per-day totals to keep
	PruneSchedule string // cron spec for the nightly compaction
}

// Load reads .env (if present) and assembles the configuration.
func Load() (Config, error) {
	// A missing .env is fine in production; real env vars win either way
	_ = godotenv.Load()

	cfg := Config{
		Server: ServerConfig{
			Port:          getenv("PORT", "8080"),
			BaseURL:       getenv("BASE_URL", "http://localhost:8080"),
			AllowedOrigin: getenv("ALLOWED_ORIGIN", "http://localhost:5173"),
		},
		DB: DBConfig{
			DSN: os.Getenv("DB_DSN"),
		},
		Auth: AuthConfig{
			JWTSecret:         os.Getenv("JWT_SECRET"),
			AllowRegistration: os.Getenv("ALLOW_REGISTRATION") == "true",
		},
		Redis: RedisConfig{
			Host:     getenv("REDIS_SERVICE_HOST", "redis"),
			Port:     getenv("REDIS_SERVICE_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Shop: ShopConfig{
			Name:  getenv("SHOP_NAME", "WUROUD"),
			Place: getenv("SHOP_PLACE", "Puthirikal"),
			Phone: getenv("SHOP_PHONE", "+91 9061706318"),
			GSTIN: getenv("SHOP_GSTIN", "33AAAGP0685F1ZH"),
		},
		Sales: SalesConfig{
			RetentionDays: getenvInt("SALES_RETENTION_DAYS", 30),
			PruneSchedule: getenv("SALES_PRUNE_SCHEDULE", "30 0 * * *"),
		},
	}

	if cfg.DB.DSN == "" {
		return cfg, errors.New("DB_DSN is not set")
	}
	if cfg.Auth.JWTSecret == "" {
		return cfg, errors.New("JWT_SECRET is not set")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
