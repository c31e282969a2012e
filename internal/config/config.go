// Package config loads runtime settings from .env and the process environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultSessionSecret = "secret_key_change_me"
	defaultJWTSecret     = "jwt_secret_change_me"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Env             string        `mapstructure:"APP_ENV"`
	Port            string        `mapstructure:"PORT"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	SessionSecret   string        `mapstructure:"SESSION_SECRET"`
	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	JWTTTL          time.Duration `mapstructure:"JWT_TTL"`
	SiteURL         string        `mapstructure:"SITE_URL"`
	GeminiAPIKey    string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel     string        `mapstructure:"GEMINI_MODEL"`
	GeminiBaseURL   string        `mapstructure:"GEMINI_BASE_URL"`
	PushGatewayURL  string        `mapstructure:"PUSH_GATEWAY_URL"`
	PushConcurrency int           `mapstructure:"PUSH_CONCURRENCY"`
	StorageDriver   string        `mapstructure:"STORAGE_DRIVER"`
	StorageDir      string        `mapstructure:"STORAGE_DIR"`
	StoragePublic   string        `mapstructure:"STORAGE_PUBLIC_URL"`
	StorageRemote   string        `mapstructure:"STORAGE_REMOTE_URL"`
	StorageKey      string        `mapstructure:"STORAGE_REMOTE_KEY"`
	AdminEmail      string        `mapstructure:"ADMIN_EMAIL"`
	AdminPassword   string        `mapstructure:"ADMIN_PASSWORD"`
}

var keys = []string{
	"APP_ENV", "PORT", "DATABASE_URL", "SESSION_SECRET", "JWT_SECRET", "JWT_TTL", "SITE_URL",
	"GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_BASE_URL", "PUSH_GATEWAY_URL", "PUSH_CONCURRENCY",
	"STORAGE_DRIVER", "STORAGE_DIR", "STORAGE_PUBLIC_URL", "STORAGE_REMOTE_URL", "STORAGE_REMOTE_KEY",
	"ADMIN_EMAIL", "ADMIN_PASSWORD",
}

// Load reads .env (if present) and the environment into a validated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	v := viper.New()
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=campusfeed port=5432 sslmode=disable TimeZone=UTC")
	v.SetDefault("SESSION_SECRET", defaultSessionSecret)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_TTL", "720h")
	v.SetDefault("SITE_URL", "http://localhost:8080")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("PUSH_GATEWAY_URL", "https://exp.host/--/api/v2/push/send")
	v.SetDefault("PUSH_CONCURRENCY", 8)
	v.SetDefault("STORAGE_DRIVER", "local")
	v.SetDefault("STORAGE_DIR", "./uploads")
	v.SetDefault("STORAGE_PUBLIC_URL", "")
	v.SetDefault("STORAGE_REMOTE_URL", "")
	v.SetDefault("STORAGE_REMOTE_KEY", "")
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")

	// AutomaticEnv only resolves keys viper already knows about when unmarshalling
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if cfg.StoragePublic == "" {
		cfg.StoragePublic = cfg.SiteURL + "/files"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate checks required values and rejects default secrets in production.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	switch c.StorageDriver {
	case "local":
	case "remote":
		if c.StorageRemote == "" {
			return errors.New("STORAGE_REMOTE_URL is required for the remote storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.PushConcurrency < 1 {
		c.PushConcurrency = 1
	}

	if c.IsProduction() {
		if c.SessionSecret == defaultSessionSecret {
			return errors.New("SESSION_SECRET must be changed from the default value in production")
		}
		if c.JWTSecret == defaultJWTSecret || len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be a non-default value of at least 32 characters in production")
		}
	} else if c.GeminiAPIKey == "" {
		log.Println("⚠️ GEMINI_API_KEY not set: AI note generation disabled.")
	}
	return nil
}
