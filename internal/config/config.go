package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Budget window modes.
const (
	// BudgetWindowPeriod derives each budget's window from its period.
	BudgetWindowPeriod = "period"
	// BudgetWindowCalendarMonth evaluates every budget against the current calendar month.
	BudgetWindowCalendarMonth = "calendar_month"
)

// Config holds application configuration
type Config struct {
	// Runtime
	Env      string
	LogLevel string

	// Server
	Port string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// SMTP delivery; mail is logged instead of sent when SMTPHost is empty
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	// Expo push delivery
	PushEnabled bool

	// Notification queue
	NotifyWorkers   int
	NotifyQueueSize int
	NotifyTimeout   time.Duration

	// RabbitMQ; the in-process queue is used when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Budget evaluation
	BudgetWindow string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", ""),

		Port: getEnv("PORT", "8080"),

		JWTSecret:        getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		JWTExpirationDur: getDuration("JWT_EXPIRES_IN", 24*time.Hour),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),

		PushEnabled: getBool("PUSH_ENABLED", false),

		NotifyWorkers:   getInt("NOTIFY_WORKERS", 4),
		NotifyQueueSize: getInt("NOTIFY_QUEUE_SIZE", 100),
		NotifyTimeout:   getDuration("NOTIFY_TIMEOUT", 10*time.Second),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "expensetracker"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "notifications"),

		BudgetWindow: getEnv("BUDGET_WINDOW", BudgetWindowPeriod),
	}

	if config.SMTPFrom == "" {
		config.SMTPFrom = config.SMTPUser
	}
	if config.BudgetWindow != BudgetWindowPeriod && config.BudgetWindow != BudgetWindowCalendarMonth {
		log.Printf("Warning: invalid BUDGET_WINDOW value '%s', falling back to %s\n", config.BudgetWindow, BudgetWindowPeriod)
		config.BudgetWindow = BudgetWindowPeriod
	}
	if config.NotifyWorkers < 1 {
		config.NotifyWorkers = 1
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// MailConfigured reports whether SMTP delivery is possible.
func (c *Config) MailConfigured() bool {
	return c.SMTPHost != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return n
}

func getBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %t\n", key, raw, defaultValue)
		return defaultValue
	}
	return b
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}
