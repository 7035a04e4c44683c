package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env                string
	HTTPAddr           string
	DatabaseURL        string
	JWTSecret          string
	RabbitMQURL        string
	RabbitMQWorkerMode string
	CorsAllowedOrigins []string

	WSHeartbeatInterval   time.Duration
	WSKitchenPollInterval time.Duration

	ReservationMaxAdvanceDays int
	ReservationGraceMinutes   int
}

func Load() Config {
	cfg := Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		RabbitMQWorkerMode: getEnv("RABBITMQ_WORKER_MODE", "daemon"),
		CorsAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),

		WSHeartbeatInterval:   getEnvDuration("WS_HEARTBEAT_INTERVAL", 30*time.Second),
		WSKitchenPollInterval: getEnvDuration("WS_KITCHEN_POLL_INTERVAL", 5*time.Second),

		ReservationMaxAdvanceDays: getEnvInt("RESERVATION_MAX_ADVANCE_DAYS", 7),
		ReservationGraceMinutes:   getEnvInt("RESERVATION_GRACE_MINUTES", 30),
	}

	if cfg.ReservationMaxAdvanceDays < 0 {
		cfg.ReservationMaxAdvanceDays = 7
	}
	if cfg.ReservationGraceMinutes < 0 {
		cfg.ReservationGraceMinutes = 30
	}

	return cfg
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
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
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
