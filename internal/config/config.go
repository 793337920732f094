package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config lead-service (HTTP API) configuration.
type Config struct {
	HTTP struct {
		Addr string
	}
	Env      string
	Database DatabaseConfig
	Redis    struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	UserService UserServiceConfig
	ChatService ChatServiceConfig
}

// DatabaseConfig Postgres connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN builds the lib/pq connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// UserServiceConfig identity-service client settings. Identity reads sit on
// the buy-lead path, so the timeout is short.
type UserServiceConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ChatServiceConfig chat-service client settings. Message delivery happens
// after commit and may take longer.
type ChatServiceConfig struct {
	BaseURL string
	Timeout time.Duration
}

// IsProduction reports whether error detail should be suppressed in responses.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":5007")
	cfg.Env = getEnv("APP_ENV", "development")

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "lead_service")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "20"), 20)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.UserService.BaseURL = getEnv("USER_SERVICE_URL", "http://user-service:5006")
	cfg.UserService.Timeout = parseDuration(getEnv("USER_SERVICE_TIMEOUT", "5s"), 5*time.Second)

	cfg.ChatService.BaseURL = getEnv("CHAT_SERVICE_URL", "http://chat-service:5008")
	cfg.ChatService.Timeout = parseDuration(getEnv("CHAT_SERVICE_TIMEOUT", "15s"), 15*time.Second)

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
