package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string `mapstructure:"STAYGROW_ENV"`
	HTTPAddr string `mapstructure:"STAYGROW_HTTP_ADDR"`
	LogLevel string `mapstructure:"STAYGROW_LOG_LEVEL"`

	Database DBConfig       `mapstructure:",squash"`
	Auth     AuthConfig     `mapstructure:",squash"`
	Storage  StorageConfig  `mapstructure:",squash"`
	Security SecurityConfig `mapstructure:",squash"`
}

type DBConfig struct {
	URL string `mapstructure:"DATABASE_URL"`
}

type AuthConfig struct {
	JWTSecret   string `mapstructure:"STAYGROW_JWT_SECRET"`
	TokenCookie string `mapstructure:"STAYGROW_TOKEN_COOKIE"`
}

// StorageConfig configures image uploads. An empty endpoint disables uploads.
type StorageConfig struct {
	Endpoint        string `mapstructure:"STAYGROW_MINIO_ENDPOINT"`
	AccessKeyID     string `mapstructure:"STAYGROW_MINIO_ACCESS_KEY"`
	SecretAccessKey string `mapstructure:"STAYGROW_MINIO_SECRET_KEY"`
	Bucket          string `mapstructure:"STAYGROW_MINIO_BUCKET"`
	UseSSL          bool   `mapstructure:"STAYGROW_MINIO_USE_SSL"`
	PublicURL       string `mapstructure:"STAYGROW_MINIO_PUBLIC_URL"`
}

type SecurityConfig struct {
	RateLimitRPM   int           `mapstructure:"STAYGROW_RATE_LIMIT_RPM"`
	RateLimitBurst int           `mapstructure:"STAYGROW_RATE_LIMIT_BURST"`
	RequestTimeout time.Duration `mapstructure:"STAYGROW_REQUEST_TIMEOUT"`
}

var keys = []string{
	"STAYGROW_ENV", "STAYGROW_HTTP_ADDR", "STAYGROW_LOG_LEVEL",
	"DATABASE_URL",
	"STAYGROW_JWT_SECRET", "STAYGROW_TOKEN_COOKIE",
	"STAYGROW_MINIO_ENDPOINT", "STAYGROW_MINIO_ACCESS_KEY", "STAYGROW_MINIO_SECRET_KEY",
	"STAYGROW_MINIO_BUCKET", "STAYGROW_MINIO_USE_SSL", "STAYGROW_MINIO_PUBLIC_URL",
	"STAYGROW_RATE_LIMIT_RPM", "STAYGROW_RATE_LIMIT_BURST", "STAYGROW_REQUEST_TIMEOUT",
}

// Load reads .env (if present) and the environment. Variables already set in
// the environment win over .env.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("STAYGROW_ENV", "dev")
	v.SetDefault("STAYGROW_HTTP_ADDR", ":8080")
	v.SetDefault("STAYGROW_LOG_LEVEL", "info")
	v.SetDefault("STAYGROW_TOKEN_COOKIE", "token")
	v.SetDefault("STAYGROW_MINIO_BUCKET", "showcase-images")
	v.SetDefault("STAYGROW_MINIO_USE_SSL", false)
	v.SetDefault("STAYGROW_RATE_LIMIT_RPM", 60)
	v.SetDefault("STAYGROW_RATE_LIMIT_BURST", 10)
	v.SetDefault("STAYGROW_REQUEST_TIMEOUT", "15s")

	// Unmarshal only sees keys viper knows about
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.Storage.PublicURL = strings.TrimRight(cfg.Storage.PublicURL, "/")

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("STAYGROW_JWT_SECRET is required")
	}
	if c.IsProd() && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("STAYGROW_JWT_SECRET must be at least 32 bytes in prod")
	}
	switch c.Env {
	case "dev", "test", "prod":
	default:
		return fmt.Errorf("invalid STAYGROW_ENV %q (must be dev, test, or prod)", c.Env)
	}
	if c.Security.RateLimitRPM <= 0 {
		return fmt.Errorf("STAYGROW_RATE_LIMIT_RPM must be positive")
	}
	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("STAYGROW_RATE_LIMIT_BURST must be positive")
	}
	if c.Storage.Endpoint != "" && (c.Storage.AccessKeyID == "" || c.Storage.SecretAccessKey == "") {
		return fmt.Errorf("STAYGROW_MINIO_ACCESS_KEY and STAYGROW_MINIO_SECRET_KEY are required when STAYGROW_MINIO_ENDPOINT is set")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}
