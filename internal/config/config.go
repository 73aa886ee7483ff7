package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the process's runtime configuration, loaded once at startup
// from the environment (with .env as a local-dev convenience).
type Config struct {
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	ServerPort string
	ServerHost string

	JWTSecret string
	JWTExpiry string

	LogLevel string

	// Scheduler (C5)
	TickIntervalSeconds   int
	ShutdownGraceSeconds  int

	// Notifier (C7)
	NotifierMaxConcurrency int

	// EventBus / SSE (C6)
	SSEQueueDepth int

	// Telegram/Email adapter credentials
	TelegramBotToken string
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPassword     string
	SMTPFrom         string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	port, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %v", err)
	}

	tickInterval, err := strconv.Atoi(getEnv("TICK_INTERVAL_SECONDS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid TICK_INTERVAL_SECONDS: %v", err)
	}

	shutdownGrace, err := strconv.Atoi(getEnv("SHUTDOWN_GRACE_SECONDS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_GRACE_SECONDS: %v", err)
	}

	notifierConcurrency, err := strconv.Atoi(getEnv("NOTIFIER_MAX_CONCURRENCY", "16"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFIER_MAX_CONCURRENCY: %v", err)
	}

	sseQueueDepth, err := strconv.Atoi(getEnv("SSE_QUEUE_DEPTH", "64"))
	if err != nil {
		return nil, fmt.Errorf("invalid SSE_QUEUE_DEPTH: %v", err)
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %v", err)
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     port,
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "reminder_engine"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),

		ServerPort: getEnv("SERVER_PORT", "8080"),
		ServerHost: getEnv("SERVER_HOST", "localhost"),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-here"),
		JWTExpiry: getEnv("JWT_EXPIRY", "24h"),

		LogLevel: getEnv("LOG_LEVEL", "debug"),

		TickIntervalSeconds:  tickInterval,
		ShutdownGraceSeconds: shutdownGrace,

		NotifierMaxConcurrency: notifierConcurrency,

		SSEQueueDepth: sseQueueDepth,

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         smtpPort,
		SMTPUser:         getEnv("SMTP_USER", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:         getEnv("SMTP_FROM", "reminders@example.com"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}
