// Package config provides configuration management for the tipjar service.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Wallet    WalletConfig
	Price     PriceConfig
	Tip       TipConfig
	Reconcile ReconcileConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// StorageConfig selects and configures the job-ledger backend.
// Backend is one of "redis", "postgres" or "memory".
type StorageConfig struct {
	Backend  string
	Redis    RedisConfig
	Postgres PostgresConfig
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host           string
	Port           string
	Password       string
	DB             int
	MaxConnections int
}

// PostgresConfig holds Postgres configuration
type PostgresConfig struct {
	Host           string
	Port           string
	Database       string
	User           string
	Password       string
	MaxConnections int
}

// WalletConfig holds wallet-provider API configuration
type WalletConfig struct {
	BaseURL        string
	ClientAPIKey   string
	RequestTimeout time.Duration
	LookupRPS      int // order-history lookups per second
}

// PriceConfig holds price-quote endpoint configuration
type PriceConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// TipConfig holds tipping defaults: the target network and the message
// contract that receives raw-transaction tips.
type TipConfig struct {
	NetworkID       string // CAIP-2 id, e.g. "eip155:84532"
	NetworkName     string
	ContractAddress string
}

// ReconcileConfig holds the background reconciler configuration
type ReconcileConfig struct {
	Interval time.Duration
}

// RateLimitConfig holds API rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// .env file is optional - environment variables can be set directly
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", "redis"),
			Redis: RedisConfig{
				Host:           getEnv("REDIS_HOST", "localhost"),
				Port:           getEnv("REDIS_PORT", "6379"),
				Password:       getEnv("REDIS_PASSWORD", ""),
				DB:             getEnvAsInt("REDIS_DB", 0),
				MaxConnections: getEnvAsInt("REDIS_MAX_CONNECTIONS", 50),
			},
			Postgres: PostgresConfig{
				Host:           getEnv("POSTGRES_HOST", "localhost"),
				Port:           getEnv("POSTGRES_PORT", "5432"),
				Database:       getEnv("POSTGRES_DB", "tipjar"),
				User:           getEnv("POSTGRES_USER", "tipjar"),
				Password:       getEnv("POSTGRES_PASSWORD", ""),
				MaxConnections: getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 20),
			},
		},
		Wallet: WalletConfig{
			BaseURL:        getEnv("WALLET_API_BASE_URL", "https://sandbox-api.oktostage.com"),
			ClientAPIKey:   getEnv("WALLET_CLIENT_API_KEY", ""),
			RequestTimeout: getEnvAsDuration("WALLET_REQUEST_TIMEOUT", 30*time.Second),
			LookupRPS:      getEnvAsInt("WALLET_LOOKUP_RPS", 5),
		},
		Price: PriceConfig{
			BaseURL:        getEnv("PRICE_API_BASE_URL", "https://api.coingecko.com"),
			RequestTimeout: getEnvAsDuration("PRICE_REQUEST_TIMEOUT", 10*time.Second),
		},
		Tip: TipConfig{
			NetworkID:       getEnv("TIP_NETWORK_ID", "eip155:84532"),
			NetworkName:     getEnv("TIP_NETWORK_NAME", "BASE_TESTNET"),
			ContractAddress: getEnv("TIP_CONTRACT_ADDRESS", "0xf4fAA46a2cb1afE7D50d314A3464556d89a81015"),
		},
		Reconcile: ReconcileConfig{
			Interval: getEnvAsDuration("RECONCILE_INTERVAL", 30*time.Second),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsInt("RATE_LIMIT_RPS", 20),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks configuration invariants that would otherwise only fail at
// first use.
func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "redis", "postgres", "memory":
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q: must be redis, postgres or memory", c.Storage.Backend)
	}
	if c.Wallet.BaseURL == "" {
		return fmt.Errorf("WALLET_API_BASE_URL must not be empty")
	}
	return nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
