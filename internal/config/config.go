package config

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env  string
	Port int

	DBURL string

	// SessionSecret signs session tokens. Required outside dev: a weak
	// default in production would let anyone mint sessions.
	SessionSecret  string
	SessionTTLDays int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTLPEndpoint   string
	AllowedOrigins []string
	MaxBodyBytes   int64

	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// devFallbackSecret is only ever used when APP_ENV=dev.
const devFallbackSecret = "dev-only-insecure-secret"

var ErrMissingSessionSecret = errors.New("SESSION_JWT_SECRET must be set outside dev")

func Load() (Config, error) {
	env := getEnv("APP_ENV", "dev")

	secret := os.Getenv("SESSION_JWT_SECRET")

	if secret == "" {
		if env != "dev" {
			return Config{}, ErrMissingSessionSecret
		}
		secret = devFallbackSecret
	}

	cfg := Config{
		Env:            env,
		Port:           getEnvInt("PORT", 8080),
		DBURL:          buildDBURL(),
		SessionSecret:  secret,
		SessionTTLDays: getEnvInt("SESSION_TTL_DAYS", 7),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		AllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		MaxBodyBytes:   int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		AdminEmail:     getEnv("ADMIN_EMAIL", ""),
		AdminPassword:  getEnv("ADMIN_PASSWORD", ""),
		AdminName:      getEnv("ADMIN_NAME", "Administrator"),
	}

	return cfg, nil
}

func (c Config) SessionTTL() time.Duration {
	days := c.SessionTTLDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "sevenai")
	pass := getEnv("DB_PASSWORD", "sevenai")
	name := getEnv("DB_NAME", "sevenai")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			return fallback
		}

		return num
	}
	return fallback
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
