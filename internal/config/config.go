package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	OAuth2Google OAuth2GoogleConfig
	Compliance   ComplianceConfig
	Notification NotificationConfig
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Version        string
	Port           int
	Env            string
	LogLevel       string
	FrontendURL    string
	AllowedOrigins []string
	Timezone       string
	Location       *time.Location
}

type OAuth2GoogleConfig struct {
	ClientID      string
	ClientSecret  string
	RedirectURL   string
	Scopes        []string
	AllowedDomain string
	AdminEmails   []string
}

type NotificationConfig struct {
	Workers   int
	QueueSize int
}

type ComplianceConfig struct {
	PolicyFile string
	DigestCron string
}

// Load reads configuration from the environment, seeded from a .env file
// when one exists.
func Load() (*Config, error) {
	config, err := load()
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadStore is Load for tools that only touch the store: sign-in settings
// are read but not required.
func LoadStore() (*Config, error) {
	config, err := load()
	if err != nil {
		return nil, err
	}

	if err := config.ValidateStore(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Driver:   getEnv("STORE_DRIVER", StoreDriverPostgres),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "meeting_attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "meeting-attendance"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
		Timezone:       getEnv("APP_TIMEZONE", "America/New_York"),
	}
	if len(config.App.AllowedOrigins) == 0 {
		config.App.AllowedOrigins = []string{config.App.FrontendURL}
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "24h"),
	}

	// OAuth2 Google Configuration
	config.OAuth2Google = OAuth2GoogleConfig{
		ClientID:      getEnv("CLIENT_ID", ""),
		ClientSecret:  getEnv("CLIENT_SECRET", ""),
		RedirectURL:   getEnv("REDIRECT_URL", ""),
		Scopes:        getEnvSlice("SCOPES"),
		AllowedDomain: getEnv("GOOGLE_ALLOWED_DOMAIN", ""),
		AdminEmails:   getEnvSlice("ADMIN_EMAILS"),
	}
	if len(config.OAuth2Google.Scopes) == 0 {
		config.OAuth2Google.Scopes = []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		}
	}

	config.Compliance = ComplianceConfig{
		PolicyFile: getEnv("COMPLIANCE_POLICY_FILE", ""),
		DigestCron: getEnv("DIGEST_CRON", "0 8 * * *"),
	}

	workers, err := strconv.Atoi(getEnv("NOTIFICATION_WORKERS", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_WORKERS: %w", err)
	}
	queueSize, err := strconv.Atoi(getEnv("NOTIFICATION_QUEUE_SIZE", "256"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_QUEUE_SIZE: %w", err)
	}
	config.Notification = NotificationConfig{
		Workers:   workers,
		QueueSize: queueSize,
	}

	return config, nil
}

// Validate validates the configuration and resolves the timezone.
func (c *Config) Validate() error {
	if err := c.ValidateStore(); err != nil {
		return err
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if c.OAuth2Google.ClientID == "" {
		return fmt.Errorf("CLIENT_ID is required")
	}
	if c.OAuth2Google.ClientSecret == "" {
		return fmt.Errorf("CLIENT_SECRET is required")
	}
	if c.OAuth2Google.RedirectURL == "" {
		return fmt.Errorf("REDIRECT_URL is required")
	}
	return nil
}

// ValidateStore checks the store settings and resolves the timezone.
func (c *Config) ValidateStore() error {
	switch c.Database.Driver {
	case StoreDriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q", StoreDriverPostgres, StoreDriverMemory)
	}

	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	c.App.Location = loc
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
