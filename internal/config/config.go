package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string
	DBMaxConns  int

	// Redis
	RedisURL      string
	RedisPoolSize int

	// JWT
	JWTSecret string

	// Gemini AI (optional; empty key enables fallback-only insights)
	GeminiAPIKey         string
	GeminiConcurrentReqs int

	// Detection tunables
	EARThreshold      float64
	ConsecutiveFrames int
	HistoryCap        int

	// Workers
	WorkerCount int

	// Auth endpoint rate limit (requests per minute per IP)
	AuthRateLimit int

	// Notification webhook
	WebhookURL string

	// SMTP
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		DatabaseURL:          mustGetEnv("DATABASE_URL"),
		DBMaxConns:           getEnvAsIntOrDefault("DB_MAX_CONNS", 25),
		RedisURL:             mustGetEnv("REDIS_URL"),
		RedisPoolSize:        getEnvAsIntOrDefault("REDIS_POOL_SIZE", 10),
		JWTSecret:            mustGetEnv("JWT_SECRET"),
		GeminiAPIKey:         getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		EARThreshold:         getEnvAsFloatOrDefault("EAR_THRESHOLD", 0.23),
		ConsecutiveFrames:    getEnvAsIntOrDefault("BLINK_CONSECUTIVE_FRAMES", 1),
		HistoryCap:           getEnvAsIntOrDefault("HISTORY_CAP", 1000),
		WorkerCount:          getEnvAsIntOrDefault("WORKER_COUNT", 5),
		AuthRateLimit:        getEnvAsIntOrDefault("AUTH_RATE_LIMIT", 10),
		WebhookURL:           getEnvOrDefault("WEBHOOK_URL", ""),
		SMTPHost:             getEnvOrDefault("SMTP_HOST", ""),
		SMTPPort:             getEnvOrDefault("SMTP_PORT", "587"),
		SMTPUser:             getEnvOrDefault("SMTP_USER", ""),
		SMTPPass:             getEnvOrDefault("SMTP_PASS", ""),
		SMTPFrom:             getEnvOrDefault("SMTP_FROM", "noreply@moodlens.app"),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}
