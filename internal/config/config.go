package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration from environment.
type Config struct {
	HTTPPort        string
	GinMode         string
	LogLevel        string
	DatabaseURL     string
	DBPoolSize      int
	RedisURL        string
	RedisPoolSize   int
	CacheTTL        int // seconds
	LocalCacheSize  int
	KafkaBrokers    []string
	KafkaTopic      string
	KafkaPartitions int
	InstanceID      string
	RequestTimeout  int // seconds
	RateLimitRPS    float64
	RateLimitBurst  int
}

var (
	cfg     *Config
	cfgErr  error
	cfgOnce sync.Once
)

// Get returns the application config (loads once from env).
func Get() (*Config, error) {
	cfgOnce.Do(func() {
		cfg, cfgErr = Load()
	})
	return cfg, cfgErr
}

// Load reads the environment into a fresh Config.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	c := &Config{
		HTTPPort:        v.GetString("HTTP_PORT"),
		GinMode:         v.GetString("GIN_MODE"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		DBPoolSize:      v.GetInt("DB_POOL_SIZE"),
		RedisURL:        v.GetString("REDIS_URL"),
		RedisPoolSize:   v.GetInt("REDIS_POOL_SIZE"),
		CacheTTL:        v.GetInt("CACHE_TTL_SEC"),
		LocalCacheSize:  v.GetInt("LOCAL_CACHE_SIZE"),
		KafkaBrokers:    splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:      v.GetString("KAFKA_ANIME_TOPIC"),
		KafkaPartitions: v.GetInt("KAFKA_PARTITIONS"),
		InstanceID:      v.GetString("INSTANCE_ID"),
		RequestTimeout:  v.GetInt("REQUEST_TIMEOUT_SEC"),
		RateLimitRPS:    v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:  v.GetInt("RATE_LIMIT_BURST"),
	}
	if c.InstanceID == "" {
		c.InstanceID, _ = os.Hostname()
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_POOL_SIZE", 25)
	v.SetDefault("REDIS_POOL_SIZE", 50)
	v.SetDefault("CACHE_TTL_SEC", 300)
	v.SetDefault("LOCAL_CACHE_SIZE", 1024)
	v.SetDefault("KAFKA_ANIME_TOPIC", "anime-events")
	v.SetDefault("KAFKA_PARTITIONS", 3)
	v.SetDefault("REQUEST_TIMEOUT_SEC", 10)
	v.SetDefault("RATE_LIMIT_RPS", 0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	if c.DBPoolSize <= 0 {
		return fmt.Errorf("DB_POOL_SIZE must be positive, got %d", c.DBPoolSize)
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("GIN_MODE must be debug, release or test, got %q", c.GinMode)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL_SEC must be positive, got %d", c.CacheTTL)
	}
	if c.LocalCacheSize <= 0 {
		return fmt.Errorf("LOCAL_CACHE_SIZE must be positive, got %d", c.LocalCacheSize)
	}
	return nil
}

// CacheTTLDuration returns CacheTTL as a time.Duration.
func (c *Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// RequestTimeoutDuration returns RequestTimeout as a time.Duration; zero disables it.
func (c *Config) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// EventsEnabled reports whether Kafka brokers are configured.
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
