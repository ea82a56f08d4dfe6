package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// defaultJWTSecret keeps local setups working without a .env file. Load
// warns loudly when it is used; production must set JWT_SECRET.
const defaultJWTSecret = "your-secret-key-change-in-production"

const defaultTokenTTL = 24 * time.Hour

type Config struct {
	ServerPort   int
	DatabaseURL  string
	JWTSecret    []byte
	TokenTTL     time.Duration
	KafkaAddress string
	LogLevel     string
}

func Load(l *slog.Logger) *Config {
	if err := godotenv.Load(".env"); err != nil {
		l.Info("no .env file, using system environment", "error", err)
	}

	cfg := &Config{
		ServerPort:   EnvIntDefault("SERVER_PORT", 3000),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		JWTSecret:    []byte(os.Getenv("JWT_SECRET")),
		TokenTTL:     envDuration(l, "JWT_EXPIRES_IN", defaultTokenTTL),
		KafkaAddress: os.Getenv("KAFKA_ADDRESS"),
		LogLevel:     EnvDefault("LOG_LEVEL", "info"),
	}

	if len(cfg.JWTSecret) == 0 {
		l.Warn("JWT_SECRET is not set, falling back to the built-in development secret; do not run this in production")
		cfg.JWTSecret = []byte(defaultJWTSecret)
	}

	return cfg
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(l *slog.Logger, key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		l.Warn("cannot parse duration env, using default", "env", key, "value", v, "default", def)
		return def
	}
	return d
}
