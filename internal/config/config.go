// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables and an optional YAML file. It provides a centralized Config
// struct used across the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Development fallbacks that must not reach production.
const (
	defaultDBPassword = "changeme"
	defaultSecretKey  = "yamdb-development-secret"
)

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable only behind a reverse proxy that overwrites those headers.
	TrustProxy bool

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible store for rate-limit counters)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	ValkeyDB       int

	// Authentication
	SecretKey           string
	AccessTokenTTL      time.Duration
	ConfirmationCodeTTL time.Duration
	AuthRateLimit       int // requests per window and client; 0 disables
	AuthRateWindow      time.Duration

	// API
	PageSize int

	// Outgoing mail. An empty SMTPHost logs messages instead of sending.
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
}

// source resolves a key from the environment first, then from the YAML
// file values.
type source struct {
	file map[string]string
	errs []error
}

// loadFile reads a flat YAML mapping of the same keys as the environment.
func loadFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return values, nil
}

func (s *source) str(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if v := s.file[key]; v != "" {
		return v
	}
	return fallback
}

func (s *source) int(key string, fallback int) int {
	raw := s.str(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		s.errs = append(s.errs, fmt.Errorf("%s: %q is not an integer", key, raw))
		return fallback
	}
	return n
}

func (s *source) boolean(key string, fallback bool) bool {
	raw := s.str(key, "")
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		s.errs = append(s.errs, fmt.Errorf("%s: %q is not a boolean", key, raw))
		return fallback
	}
	return b
}

func (s *source) duration(key string, fallback time.Duration) time.Duration {
	raw := s.str(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		s.errs = append(s.errs, fmt.Errorf("%s: %q is not a positive duration", key, raw))
		return fallback
	}
	return d
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. When YAMDB_CONFIG names a YAML file,
// its values apply where the environment has none. Returns an error if
// critical values are missing in production mode.
func Load() (*Config, error) {
	src := &source{}
	if path := os.Getenv("YAMDB_CONFIG"); path != "" {
		values, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		src.file = values
	}

	cfg := &Config{
		Host: src.str("APP_HOST", "0.0.0.0"),
		Port: src.str("APP_PORT", "8080"),
		Env:  src.str("APP_ENV", "development"),

		TrustProxy: src.boolean("TRUST_PROXY", false),

		DBHost:     src.str("POSTGRES_HOST", "localhost"),
		DBPort:     src.str("POSTGRES_PORT", "5432"),
		DBUser:     src.str("POSTGRES_USER", "yamdb"),
		DBPassword: src.str("POSTGRES_PASSWORD", defaultDBPassword),
		DBName:     src.str("POSTGRES_DB", "yamdb"),

		ValkeyHost:     src.str("VALKEY_HOST", "localhost"),
		ValkeyPort:     src.str("VALKEY_PORT", "6379"),
		ValkeyPassword: src.str("VALKEY_PASSWORD", ""),
		ValkeyDB:       src.int("VALKEY_DB", 0),

		SecretKey:           src.str("SECRET_KEY", defaultSecretKey),
		AccessTokenTTL:      src.duration("ACCESS_TOKEN_TTL", 24*time.Hour),
		ConfirmationCodeTTL: src.duration("CONFIRMATION_CODE_TTL", time.Hour),
		AuthRateLimit:       src.int("AUTH_RATE_LIMIT", 10),
		AuthRateWindow:      src.duration("AUTH_RATE_WINDOW", time.Minute),

		PageSize: src.int("PAGE_SIZE", 10),

		SMTPHost:     src.str("SMTP_HOST", ""),
		SMTPPort:     src.int("SMTP_PORT", 587),
		SMTPUser:     src.str("SMTP_USER", ""),
		SMTPPassword: src.str("SMTP_PASSWORD", ""),
		MailFrom:     src.str("MAIL_FROM", "noreply@yamdb.local"),
	}

	if len(src.errs) > 0 {
		return nil, errors.Join(src.errs...)
	}
	if cfg.PageSize < 1 {
		return nil, fmt.Errorf("PAGE_SIZE must be positive")
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == defaultDBPassword {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.SecretKey == defaultSecretKey {
			return nil, fmt.Errorf("SECRET_KEY must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}
