package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	environment := GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(logrus.DebugLevel)
	case "production":
		log.SetLevel(logrus.ErrorLevel)
	default:
		// Default to info level for other environments
		log.SetLevel(logrus.InfoLevel)
	}
}

const defaultJWTSecret = "secret"

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Port        int      `json:"port"`
	Host        string   `json:"host"`
	Environment string   `json:"environment"`
	ClientURL   string   `json:"client_url"`
	CORSOrigins []string `json:"cors_origins"`

	// Database configuration
	DBDriver    string `json:"db_driver"`
	DatabaseURL string `json:"database_url"`
	DBHost      string `json:"db_host"`
	DBPort      string `json:"db_port"`
	DBName      string `json:"db_name"`
	DBUser      string `json:"db_user"`
	DBPassword  string `json:"db_password"`
	DBSSLMode   string `json:"db_sslmode"`
	DBPath      string `json:"db_path"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Security Configuration
	JWTSecret    string `json:"jwt_secret"`
	JWTTTLHours  int    `json:"jwt_ttl_hours"`
	CookieSecure bool   `json:"cookie_secure"`

	// Payment configuration
	RazorpayKeyID        string `json:"razorpay_key_id"`
	RazorpayKeySecret    string `json:"razorpay_key_secret"`
	PaymentCurrency      string `json:"payment_currency"`
	PaymentAllowUnsigned bool   `json:"payment_allow_unsigned"`

	// Mail configuration
	SMTPHost     string `json:"smtp_host"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPUser     string `json:"smtp_user"`
	SMTPPassword string `json:"smtp_password"`
	MailFrom     string `json:"mail_from"`
	AdminEmail   string `json:"admin_email"`

	// Scheduled jobs
	InventoryDigestCron string `json:"inventory_digest_cron"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %d, Host: %s, Environment: %s, ClientURL: %s, DBDriver: %s, DatabaseURL: %s, DBHost: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], DBPath: %s, LogLevel: %s, JWTSecret: [REDACTED], RazorpayKeyID: %s, RazorpayKeySecret: [REDACTED], SMTPHost: %s, SMTPUser: %s, SMTPPassword: [REDACTED], AdminEmail: %s}",
		c.Port, c.Host, c.Environment, c.ClientURL, c.DBDriver, maskDatabaseURL(c.DatabaseURL), c.DBHost, c.DBName, c.DBUser, c.DBPath,
		c.LogLevel, c.RazorpayKeyID, c.SMTPHost, c.SMTPUser, c.AdminEmail)
}

// IsProduction reports whether the app runs with APP_ENV=production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// maskDatabaseURL masks password in database URL
func maskDatabaseURL(dbURL string) string {
	if dbURL == "" {
		return ""
	}

	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "[REDACTED_INVALID_URL]"
	}

	if parsed.User != nil {
		// Replace password with [REDACTED]
		parsed.User = url.UserPassword(parsed.User.Username(), "[REDACTED]")
	}

	return parsed.String()
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// It also validates formats like DatabaseURL, the database driver and JWTSecret
// Returns an error if any environment variable is invalid
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	smtpPort, err := strconv.Atoi(GetEnvWithDefault("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	dbURL := GetEnvWithDefault("DATABASE_URL", "")
	if dbURL != "" {
		if _, err := url.ParseRequestURI(dbURL); err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL format: %w", err)
		}
	}

	driver := strings.ToLower(GetEnvWithDefault("DB_DRIVER", "sqlite"))
	switch driver {
	case "sqlite", "postgres", "postgresql":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (supported: sqlite, postgres)", driver)
	}

	config := &Config{
		Port:        port,
		Host:        GetEnvWithDefault("APP_HOST", "localhost"),
		Environment: GetEnvWithDefault("APP_ENV", "development"),
		ClientURL:   GetEnvWithDefault("CLIENT_URL", "http://localhost:5173"),
		CORSOrigins: splitList(GetEnvWithDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),

		DBDriver:    driver,
		DatabaseURL: dbURL,
		DBHost:      GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:      GetEnvWithDefault("DB_PORT", "5432"),
		DBName:      GetEnvWithDefault("DB_NAME", "pizzeria"),
		DBUser:      GetEnvWithDefault("DB_USER", "user"),
		DBPassword:  GetEnvWithDefault("DB_PASSWORD", "password"),
		DBSSLMode:   GetEnvWithDefault("DB_SSLMODE", "disable"),
		DBPath:      GetEnvWithDefault("DB_PATH", "pizzeria.sqlite"),

		LogLevel: GetEnvWithDefault("LOG_LEVEL", "info"),

		JWTSecret:    GetEnvWithDefault("JWT_SECRET", defaultJWTSecret),
		JWTTTLHours:  GetEnvAsType("JWT_TTL_HOURS", 7*24),
		CookieSecure: GetEnvAsType("COOKIE_SECURE", false),

		RazorpayKeyID:        GetEnvWithDefault("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret:    GetEnvWithDefault("RAZORPAY_KEY_SECRET", ""),
		PaymentCurrency:      GetEnvWithDefault("PAYMENT_CURRENCY", "INR"),
		PaymentAllowUnsigned: GetEnvAsType("PAYMENT_ALLOW_UNSIGNED", false),

		SMTPHost:     GetEnvWithDefault("SMTP_HOST", ""),
		SMTPPort:     smtpPort,
		SMTPUser:     GetEnvWithDefault("SMTP_USER", ""),
		SMTPPassword: GetEnvWithDefault("SMTP_PASSWORD", ""),
		MailFrom:     GetEnvWithDefault("MAIL_FROM", "Pizza App <no-reply@localhost>"),
		AdminEmail:   GetEnvWithDefault("ADMIN_EMAIL", ""),

		InventoryDigestCron: GetEnvWithDefault("INVENTORY_DIGEST_CRON", "0 8 * * *"),
	}

	if config.IsProduction() {
		config.CookieSecure = true
		if config.JWTSecret == defaultJWTSecret {
			return nil, errors.New("JWT_SECRET must be set in production")
		}
	}
	if config.JWTTTLHours <= 0 {
		return nil, errors.New("JWT_TTL_HOURS must be positive")
	}
	if config.RazorpayKeyID == "" || config.RazorpayKeySecret == "" {
		log.Warn("Razorpay credentials not set, payment endpoints will fail")
	}

	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value", key)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
