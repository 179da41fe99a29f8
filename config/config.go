package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Redis configuration (alert stream consumed by the notification fan-out)
	RedisAddr          string
	RedisDB            int
	RedisStream        string
	RedisStreamMaxLen  int

	// Memcache configuration (navigation-failure cooldown)
	MemcacheAddr string

	// Check loop configuration
	CheckInterval   time.Duration
	InterCheckDelay time.Duration
	SettleDelay     time.Duration
	FailureCooldown time.Duration

	// Watchlist
	WatchlistFile string

	// Renderer
	UserAgent      string
	ChromeHeadless bool

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAXLEN", "500"))
	checkInterval, _ := strconv.Atoi(getEnv("CHECK_INTERVAL_SECONDS", "300"))
	interCheckDelay, _ := strconv.Atoi(getEnv("INTER_CHECK_DELAY_MS", "2000"))
	settleDelay, _ := strconv.Atoi(getEnv("SETTLE_DELAY_MS", "3500"))
	failureCooldown, _ := strconv.Atoi(getEnv("FAILURE_COOLDOWN_SECONDS", "120"))
	headless, _ := strconv.ParseBool(getEnv("CHROME_HEADLESS", "true"))

	return &Config{
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:           redisDB,
		RedisStream:       getEnv("REDIS_STREAM", "restock_alerts"),
		RedisStreamMaxLen: streamMaxLen,
		MemcacheAddr:      getEnv("MEMCACHE_ADDR", "localhost:11211"),
		CheckInterval:     time.Duration(checkInterval) * time.Second,
		InterCheckDelay:   time.Duration(interCheckDelay) * time.Millisecond,
		SettleDelay:       time.Duration(settleDelay) * time.Millisecond,
		FailureCooldown:   time.Duration(failureCooldown) * time.Second,
		WatchlistFile:     getEnv("WATCHLIST_FILE", "watchlist.json"),
		UserAgent:         getEnv("USER_AGENT", ""),
		ChromeHeadless:    headless,
		Environment:       getEnv("RESTOCKWATCH_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the process cannot run with
func (c *Config) Validate() error {
	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR must not be empty")
	}
	if c.RedisStream == "" {
		return fmt.Errorf("REDIS_STREAM must not be empty")
	}
	if c.WatchlistFile == "" {
		return fmt.Errorf("WATCHLIST_FILE must not be empty")
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("CHECK_INTERVAL_SECONDS must be positive")
	}
	if c.InterCheckDelay < 0 {
		return fmt.Errorf("INTER_CHECK_DELAY_MS must not be negative")
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("SETTLE_DELAY_MS must not be negative")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
