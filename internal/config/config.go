package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Payment  PaymentConfig
	Jobs     JobsConfig
	Address  AddressConfig
	Logger   LoggerConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// RedisConfig holds cache-related configuration. An empty Addr disables the
// cache entirely; the no-op store is selected instead.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      int // seconds
}

// PaymentConfig holds payment processor configuration.
type PaymentConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	MinimumAmount decimal.Decimal
}

// JobsConfig holds background job dispatch configuration. Empty Brokers
// disables dispatch; enqueues become logged no-ops.
type JobsConfig struct {
	Brokers      string // comma-separated Kafka brokers
	OrderTopic   string
	ClientID     string
	WriteTimeout int // seconds
}

// AddressConfig holds postal-code pattern table configuration. If
// PatternFile is empty the built-in table is used.
type AddressConfig struct {
	PatternFile string
	S3Enabled   bool
	S3Bucket    string
	S3Region    string
	S3Prefix    string
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	minAmount, err := decimal.NewFromString(getEnv("PAYMENT_MIN_AMOUNT", "50"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYMENT_MIN_AMOUNT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "storefront"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      getEnvAsInt("CACHE_TTL", 60),
		},
		Payment: PaymentConfig{
			SecretKey:     getEnv("PAYMENT_SECRET_KEY", ""),
			WebhookSecret: getEnv("PAYMENT_WEBHOOK_SECRET", ""),
			Currency:      getEnv("PAYMENT_CURRENCY", "inr"),
			MinimumAmount: minAmount,
		},
		Jobs: JobsConfig{
			Brokers:      getEnv("KAFKA_BROKERS", ""),
			OrderTopic:   getEnv("KAFKA_ORDER_TOPIC", "order.created"),
			ClientID:     getEnv("KAFKA_CLIENT_ID", "storefront-api"),
			WriteTimeout: getEnvAsInt("KAFKA_WRITE_TIMEOUT", 10),
		},
		Address: AddressConfig{
			PatternFile: getEnv("POSTAL_PATTERN_FILE", ""),
			S3Enabled:   getEnvAsBool("POSTAL_PATTERN_S3_ENABLED", false),
			S3Bucket:    getEnv("POSTAL_PATTERN_S3_BUCKET", ""),
			S3Region:    getEnv("POSTAL_PATTERN_S3_REGION", "ap-south-1"),
			S3Prefix:    getEnv("POSTAL_PATTERN_S3_PREFIX", "config/"),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Payment.SecretKey == "" {
		return fmt.Errorf("payment secret key is required")
	}

	if c.Payment.WebhookSecret == "" {
		return fmt.Errorf("payment webhook secret is required")
	}

	if c.Payment.Currency == "" {
		return fmt.Errorf("payment currency is required")
	}

	if c.Payment.MinimumAmount.IsNegative() {
		return fmt.Errorf("payment minimum amount cannot be negative")
	}

	if c.Redis.TTL < 1 {
		return fmt.Errorf("cache TTL must be at least 1 second")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Address.S3Enabled {
		if c.Address.S3Bucket == "" {
			return fmt.Errorf("postal pattern S3 bucket is required when S3 is enabled")
		}
		if c.Address.S3Region == "" {
			return fmt.Errorf("postal pattern S3 region is required when S3 is enabled")
		}
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
