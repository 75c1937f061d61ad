package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var validate = validator.New()

// Config holds every setting read from the environment (or a .env file).
type Config struct {
	Port           string `mapstructure:"PORT" validate:"required"`
	DatabaseURL    string `mapstructure:"DATABASE_URL" validate:"required"`
	ServiceToken   string `mapstructure:"GYM_SERVICE_TOKEN" validate:"required"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	IdentityURL   string `mapstructure:"IDENTITY_URL" validate:"omitempty,url"`
	IdentityToken string `mapstructure:"IDENTITY_TOKEN"`

	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB" validate:"gte=0"`
	ProfileCacheTTL time.Duration `mapstructure:"PROFILE_CACHE_TTL" validate:"gt=0"`

	Timezone       string `mapstructure:"TIMEZONE" validate:"required"`
	SnapshotCron   string `mapstructure:"SNAPSHOT_CRON"`
	AllowDemoReset bool   `mapstructure:"ALLOW_DEMO_RESET"`
	DBLog          bool   `mapstructure:"DB_LOG"`

	R2AccountID       string `mapstructure:"CLOUDFLARE_ACCOUNT_ID"`
	R2AccessKeyID     string `mapstructure:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `mapstructure:"R2_ACCESS_KEY_SECRET"`
	R2Bucket          string `mapstructure:"R2_BUCKET_NAME"`
	CDNBaseURL        string `mapstructure:"CDN_BASE_URL"`

	Location *time.Location `mapstructure:"-"`
}

var defaults = map[string]any{
	"PORT":                  "5300",
	"DATABASE_URL":          "",
	"GYM_SERVICE_TOKEN":     "",
	"ALLOWED_ORIGINS":       "http://localhost:3000",
	"IDENTITY_URL":          "",
	"IDENTITY_TOKEN":        "",
	"REDIS_ADDR":            "",
	"REDIS_PASSWORD":        "",
	"REDIS_DB":              0,
	"PROFILE_CACHE_TTL":     "10m",
	"TIMEZONE":              "UTC",
	"SNAPSHOT_CRON":         "0 3 * * 1",
	"ALLOW_DEMO_RESET":      false,
	"DB_LOG":                false,
	"CLOUDFLARE_ACCOUNT_ID": "",
	"R2_ACCESS_KEY_ID":      "",
	"R2_ACCESS_KEY_SECRET":  "",
	"R2_BUCKET_NAME":        "",
	"CDN_BASE_URL":          "",
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc
	return &cfg, nil
}

// Origins returns ALLOWED_ORIGINS trimmed and re-joined the way fiber's cors expects.
func (c *Config) Origins() string {
	parts := strings.Split(c.AllowedOrigins, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}

func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2Bucket != ""
}
