package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string

	// DATABASE_URL takes precedence over the discrete DB_* fields when set
	// (hosted Postgres convenience).
	DatabaseURL string

	DB DBConfig

	// JWTSecret signs and verifies bearer tokens. Must be set in prod.
	JWTSecret string

	// AdminSecretKey, when supplied at registration and matching, grants
	// the ADMIN role. Leave empty to disable admin self-registration.
	AdminSecretKey string

	// TokenTTL controls issued token lifetime (default 168h = 7 days).
	TokenTTL time.Duration

	// UploadDir is where uploaded documents/avatars are stored on disk.
	UploadDir string

	// PublicBaseURL is the externally reachable URL of this backend, used
	// to build served upload URLs. Example: https://booking.example.edu
	PublicBaseURL string

	// AllowedOrigins is the CORS allowlist for the browser frontend.
	AllowedOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":4000"
		}
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "roombooking"),
			User:     env("DB_USER", "roombooking"),
			Password: env("DB_PASSWORD", "roombooking"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		JWTSecret:      env("JWT_SECRET", "dev-secret-change-in-production"),
		AdminSecretKey: os.Getenv("ADMIN_SECRET_KEY"),
		TokenTTL:       envDuration("TOKEN_TTL", 168*time.Hour),
		UploadDir:      env("UPLOAD_DIR", "./uploads"),
		PublicBaseURL:  env("PUBLIC_BASE_URL", "http://localhost:4000"),
		AllowedOrigins: envList("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
	}
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
