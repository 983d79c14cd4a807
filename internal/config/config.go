package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Advice cache backends
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds application configuration
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	OpenAIAPIKey  string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1/"`
	OpenAIModel   string        `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	OpenAITimeout time.Duration `env:"OPENAI_TIMEOUT" envDefault:"30s"`

	// Empty KeyRateURL disables the reference rate feed
	KeyRateURL      string `env:"KEY_RATE_URL"`
	KeyRateSchedule string `env:"KEY_RATE_SCHEDULE" envDefault:"@every 1h"`

	AdviceCache    string        `env:"ADVICE_CACHE" envDefault:"none"`
	AdviceCacheTTL time.Duration `env:"ADVICE_CACHE_TTL" envDefault:"1h"`
	RedisAddr      string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	// Empty SMTPHost disables email summaries
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SenderEmail  string `env:"SENDER_EMAIL" envDefault:"Financial Time Machine <noreply@localhost>"`

	RateLimit       int           `env:"RATE_LIMIT" envDefault:"20"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	switch c.AdviceCache {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when ADVICE_CACHE=redis")
		}
	default:
		return fmt.Errorf("ADVICE_CACHE must be one of %s, %s, %s: got %q", CacheNone, CacheMemory, CacheRedis, c.AdviceCache)
	}
	if c.AdviceCacheTTL <= 0 {
		return fmt.Errorf("ADVICE_CACHE_TTL must be positive")
	}
	if c.OpenAITimeout <= 0 {
		return fmt.Errorf("OPENAI_TIMEOUT must be positive")
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT must be positive")
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// KeyRateEnabled reports whether the reference rate feed is configured
func (c *Config) KeyRateEnabled() bool {
	return c.KeyRateURL != ""
}

// EmailEnabled reports whether SMTP delivery is configured
func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != ""
}
