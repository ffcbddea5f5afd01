package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Collaborator sources
	Aggregator   AggregatorConfig
	PriceHistory PriceHistoryConfig
	BSE          BSEConfig

	// Pipeline
	Pipeline PipelineConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// AggregatorConfig holds the market-data aggregator site configuration
type AggregatorConfig struct {
	BaseURL string
	Unit    string // million, crore (단위: 원천 데이터 기준)
}

// PriceHistoryConfig holds the stock-price service configuration
type PriceHistoryConfig struct {
	BaseURL   string
	APIKey    string
	RateLimit int // requests per second
}

// BSEConfig holds the exchange filings site configuration
type BSEConfig struct {
	BaseURL string
}

// PipelineConfig holds evaluation pipeline tuning
type PipelineConfig struct {
	Workers       int
	MaxRetries    int
	RetryDelay    time.Duration
	SmoothEPS     bool
	WatchlistPath string
}

// Unit values accepted by AGGREGATOR_UNIT
const (
	UnitMillion = "million"
	UnitCrore   = "crore"
)

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Aggregator: AggregatorConfig{
			BaseURL: getEnv("AGGREGATOR_BASE_URL", "https://www.marketsaggregator.in"),
			Unit:    getEnv("AGGREGATOR_UNIT", UnitMillion),
		},

		PriceHistory: PriceHistoryConfig{
			BaseURL:   getEnv("PRICE_BASE_URL", "https://prices.example-feed.in/api"),
			APIKey:    getEnv("PRICE_API_KEY", ""),
			RateLimit: getEnvAsInt("PRICE_RATE_LIMIT", 5),
		},

		BSE: BSEConfig{
			BaseURL: getEnv("BSE_BASE_URL", "https://api.bseindia.com/BseIndiaAPI/api"),
		},

		Pipeline: PipelineConfig{
			Workers:       getEnvAsInt("PIPELINE_WORKERS", 3),
			MaxRetries:    getEnvAsInt("PIPELINE_MAX_RETRIES", 2),
			RetryDelay:    getEnvAsDuration("PIPELINE_RETRY_DELAY", "2s"),
			SmoothEPS:     getEnvAsBool("PIPELINE_SMOOTH_EPS", true),
			WatchlistPath: getEnv("WATCHLIST_PATH", "watchlist.yaml"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// RequireDatabase checks that a database URL is configured.
// Only commands that persist results call this.
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Aggregator.Unit != UnitMillion && c.Aggregator.Unit != UnitCrore {
		return fmt.Errorf("AGGREGATOR_UNIT must be one of: %s, %s", UnitMillion, UnitCrore)
	}

	if c.Pipeline.Workers <= 0 {
		return fmt.Errorf("PIPELINE_WORKERS must be positive")
	}

	if c.Pipeline.MaxRetries < 0 {
		return fmt.Errorf("PIPELINE_MAX_RETRIES must not be negative")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
