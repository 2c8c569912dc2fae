package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Browser  BrowserConfig
	Crawler  CrawlerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type BrowserConfig struct {
	Headless          bool
	NavigationTimeout time.Duration
	ViewportWidth     int
	ViewportHeight    int
	BlockResources    bool
}

type CrawlerConfig struct {
	BaseURL        string
	SettleDelay    time.Duration
	FailFast       bool
	StaticFallback bool
	RunTimeout     time.Duration
	Workers        int
	MaxPagesLimit  int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int32
}

// Enabled reports whether product persistence is configured at all.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// ReportTTL bounds how long finished job reports are retained.
	ReportTTL time.Duration
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 5*time.Minute),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Browser: BrowserConfig{
			Headless:          getBoolOrDefault("BROWSER_HEADLESS", true),
			NavigationTimeout: getDurationOrDefault("BROWSER_NAVIGATION_TIMEOUT", 60*time.Second),
			ViewportWidth:     getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight:    getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			BlockResources:    getBoolOrDefault("BROWSER_BLOCK_RESOURCES", true),
		},
		Crawler: CrawlerConfig{
			BaseURL:        getEnvOrDefault("CRAWLER_BASE_URL", "https://www.marketglobal.example/wholesale"),
			SettleDelay:    getDurationOrDefault("CRAWLER_SETTLE_DELAY", 2*time.Second),
			FailFast:       getBoolOrDefault("CRAWLER_FAIL_FAST", false),
			StaticFallback: getBoolOrDefault("CRAWLER_STATIC_FALLBACK", true),
			RunTimeout:     getDurationOrDefault("CRAWLER_RUN_TIMEOUT", 5*time.Minute),
			Workers:        getIntOrDefault("CRAWLER_WORKERS", 2),
			MaxPagesLimit:  getIntOrDefault("CRAWLER_MAX_PAGES_LIMIT", 20),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", ""),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			Name:     getEnvOrDefault("DB_NAME", "catalog_scraper"),
			MaxConns: int32(getIntOrDefault("DB_MAX_CONNS", 10)),
		},
		Redis: RedisConfig{
			Addr:      getEnvOrDefault("REDIS_ADDR", ""),
			Password:  getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:        getIntOrDefault("REDIS_DB", 0),
			ReportTTL: getDurationOrDefault("REDIS_REPORT_TTL", 24*time.Hour),
		},
		Logging: LoggingConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Crawler.BaseURL == "" {
		return fmt.Errorf("CRAWLER_BASE_URL must not be empty")
	}
	if c.Crawler.Workers < 1 {
		return fmt.Errorf("CRAWLER_WORKERS must be at least 1")
	}
	if c.Crawler.MaxPagesLimit < 1 {
		return fmt.Errorf("CRAWLER_MAX_PAGES_LIMIT must be at least 1")
	}
	if c.Browser.NavigationTimeout <= 0 {
		return fmt.Errorf("BROWSER_NAVIGATION_TIMEOUT must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
