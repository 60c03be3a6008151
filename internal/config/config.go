package config

import (
	"fmt"
	"time"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"` // key namespace, e.g. "mailmerge"
}

// CRMConfig points at the CRM REST API.
// A static token wins over username/password login.
type CRMConfig struct {
	BaseURL      string  `mapstructure:"base_url"` // e.g. https://crm.example.com/rest/v11
	Token        string  `mapstructure:"token"`
	Username     string  `mapstructure:"username"`
	Password     string  `mapstructure:"password"`
	ClientID     string  `mapstructure:"client_id"`
	ClientSecret string  `mapstructure:"client_secret"`
	Timeout      string  `mapstructure:"timeout"`    // duration string, e.g. "15s"
	RateLimit    float64 `mapstructure:"rate_limit"` // requests per second, 0 = unlimited
	RateBurst    int     `mapstructure:"rate_burst"`
}

// CacheConfig controls the metadata cache in redis.
type CacheConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetadataTTL string `mapstructure:"metadata_ttl"` // duration string, e.g. "6h"
}

// ComposeConfig tunes placeholder resolution.
type ComposeConfig struct {
	RelatedLimit       int    `mapstructure:"related_limit"`
	BaseCurrencySymbol string `mapstructure:"base_currency_symbol"`
	TemplatesDir       string `mapstructure:"templates_dir"`
}

// WarmerConfig controls the background metadata warmer run by serve.
type WarmerConfig struct {
	Interval string   `mapstructure:"interval"` // duration string, e.g. "30m"
	Schedule string   `mapstructure:"schedule"` // cron expression, overrides interval
	Modules  []string `mapstructure:"modules"`
}

// Config is the top-level configuration structure.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Redis   RedisConfig   `mapstructure:"redis"`
	CRM     CRMConfig     `mapstructure:"crm"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Compose ComposeConfig `mapstructure:"compose"`
	Warmer  WarmerConfig  `mapstructure:"warmer"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "mailmerge"
	}
	if c.CRM.ClientID == "" {
		c.CRM.ClientID = "sugar"
	}
	if c.CRM.Timeout == "" {
		c.CRM.Timeout = "15s"
	}
	if c.Cache.MetadataTTL == "" {
		c.Cache.MetadataTTL = "6h"
	}
	if c.Compose.RelatedLimit <= 0 {
		c.Compose.RelatedLimit = 1
	}
	if c.Compose.BaseCurrencySymbol == "" {
		c.Compose.BaseCurrencySymbol = "$"
	}
	if c.Compose.TemplatesDir == "" {
		c.Compose.TemplatesDir = "./templates"
	}
	if c.Warmer.Interval == "" {
		c.Warmer.Interval = "30m"
	}
}

// Durations parses the duration strings of the config.
type Durations struct {
	CRMTimeout  time.Duration
	MetadataTTL time.Duration
	Warmer      time.Duration
}

// ParseDurations validates and parses every duration setting.
func (c Config) ParseDurations() (Durations, error) {
	var d Durations
	var err error
	if d.CRMTimeout, err = time.ParseDuration(c.CRM.Timeout); err != nil {
		return d, fmt.Errorf("invalid crm.timeout: %w", err)
	}
	if d.MetadataTTL, err = time.ParseDuration(c.Cache.MetadataTTL); err != nil {
		return d, fmt.Errorf("invalid cache.metadata_ttl: %w", err)
	}
	if d.Warmer, err = time.ParseDuration(c.Warmer.Interval); err != nil {
		return d, fmt.Errorf("invalid warmer.interval: %w", err)
	}
	return d, nil
}
