package database

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds database configuration
type Config struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// Path is the sqlite database file, used when Driver is sqlite.
	Path string
	// MigrationsURL is the golang-migrate source for postgres schemas.
	MigrationsURL string
}

// NewConfig creates a new database configuration
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist, we'll use defaults or environment variables
		fmt.Println("Warning: .env file not found")
	}

	cfg := &Config{
		Driver:        getEnv("DB_DRIVER", DriverPostgres),
		Host:          getEnv("DB_HOST", "localhost"),
		Port:          getEnv("DB_PORT", "5432"),
		User:          getEnv("DB_USER", "expensetracker"),
		Password:      getEnv("DB_PASSWORD", "expensetracker"),
		DBName:        getEnv("DB_NAME", "expensetracker"),
		SSLMode:       getEnv("DB_SSLMODE", "disable"),
		Path:          getEnv("DB_PATH", "expensetracker.db"),
		MigrationsURL: getEnv("DB_MIGRATIONS", "file://migrations"),
	}

	if cfg.Driver != DriverPostgres && cfg.Driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (use %s or %s)", cfg.Driver, DriverPostgres, DriverSQLite)
	}
	return cfg, nil
}

// DSN returns the gorm connection string for the configured driver
func (c *Config) DSN() string {
	if c.Driver == DriverSQLite {
		return c.Path
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL returns the postgres URL form used by golang-migrate
func (c *Config) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
