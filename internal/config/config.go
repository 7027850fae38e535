package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	ReadinessSourceLocal  = "local"
	ReadinessSourceRemote = "remote"
)

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	App       AppConfig
	Storage   StorageConfig
	Readiness ReadinessConfig
	CORS      CORSConfig
}

type DatabaseConfig struct {
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
	Port     int
	Env      string
	LogLevel string
}

// StorageConfig selects the persistence backend. The memory driver keeps
// everything in process and is meant for demos and local front-end work.
type StorageConfig struct {
	Driver string
}

// ReadinessConfig selects the prerequisite-check collaborator. The remote
// source authenticates with the client credentials grant when ClientID is set.
type ReadinessConfig struct {
	Source       string
	URL          string
	Timeout      time.Duration
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() (*Config, error) {
	// .env is optional; the process environment wins
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	dbMaxConns, err := strconv.ParseInt(getEnv("DB_MAX_CONNS", "25"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	dbMinConns, err := strconv.ParseInt(getEnv("DB_MIN_CONNS", "5"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "cmlabs-hris"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(dbMaxConns),
		MinConns: int32(dbMinConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	config.Storage = StorageConfig{
		Driver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverPostgres)),
	}

	// Readiness configuration
	readinessTimeout, err := time.ParseDuration(getEnv("READINESS_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid READINESS_TIMEOUT: %w", err)
	}

	config.Readiness = ReadinessConfig{
		Source:       strings.ToLower(getEnv("READINESS_SOURCE", ReadinessSourceLocal)),
		URL:          getEnv("READINESS_URL", ""),
		Timeout:      readinessTimeout,
		ClientID:     getEnv("READINESS_CLIENT_ID", ""),
		ClientSecret: getEnv("READINESS_CLIENT_SECRET", ""),
		TokenURL:     getEnv("READINESS_TOKEN_URL", ""),
		Scopes:       getEnvSlice("READINESS_SCOPES"),
	}

	config.CORS = CORSConfig{
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}

	switch c.Readiness.Source {
	case ReadinessSourceLocal:
	case ReadinessSourceRemote:
		if c.Readiness.URL == "" {
			return fmt.Errorf("READINESS_URL is required for the remote readiness source")
		}
		if c.Readiness.ClientID != "" && (c.Readiness.ClientSecret == "" || c.Readiness.TokenURL == "") {
			return fmt.Errorf("READINESS_CLIENT_SECRET and READINESS_TOKEN_URL are required with READINESS_CLIENT_ID")
		}
	default:
		return fmt.Errorf("unsupported READINESS_SOURCE %q", c.Readiness.Source)
	}

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

// SlogLevel parses LOG_LEVEL, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
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
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
