// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"SP_DB_PATH" envDefault:"./data/sitepanel.db"`
	SessionSecret string `env:"SP_SESSION_SECRET,required"`
	ServerHost    string `env:"SP_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"SP_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"SP_ENV" envDefault:"development"`

	LogLevel   string `env:"SP_LOG_LEVEL" envDefault:"info"`
	UploadsDir string `env:"SP_UPLOADS_DIR" envDefault:"./uploads"`

	// Localization configuration
	Locales         []string          `env:"SP_LOCALES" envDefault:"en"`                // Supported locales, first one is the default
	LocaleFallbacks map[string]string `env:"SP_LOCALE_FALLBACKS" envSeparator:","`      // Per-locale fallback, e.g. "uk:ru,be:ru"
	DefaultLocale   string            `env:"SP_DEFAULT_LOCALE"`                         // Overrides the first entry of SP_LOCALES

	// Cache configuration
	RedisURL     string `env:"SP_REDIS_URL"`                              // Optional Redis URL for distributed caching
	CachePrefix  string `env:"SP_CACHE_PREFIX" envDefault:"sitepanel:"`   // Redis key prefix
	CacheTTL     int    `env:"SP_CACHE_TTL" envDefault:"3600"`            // Default cache TTL in seconds
	CacheMaxSize int    `env:"SP_CACHE_MAX_SIZE" envDefault:"10000"`      // Max memory cache entries

	// Tenancy configuration
	TenancyEnabled bool   `env:"SP_TENANCY_ENABLED" envDefault:"false"`
	TenancyColumn  string `env:"SP_TENANCY_COLUMN" envDefault:"tenant_id"`

	// Trash retention for soft-deleted menu items, in days. 0 disables purging.
	TrashRetentionDays int `env:"SP_TRASH_RETENTION_DAYS" envDefault:"30"`

	// Seeding configuration
	DoSeed bool `env:"SP_DO_SEED" envDefault:"false"` // Enable database seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// EffectiveLocales returns the supported locale list with the default locale
// moved to the front.
func (c Config) EffectiveLocales() []string {
	locales := make([]string, 0, len(c.Locales))
	if c.DefaultLocale != "" {
		locales = append(locales, c.DefaultLocale)
	}
	for _, l := range c.Locales {
		if l != "" && l != c.DefaultLocale {
			locales = append(locales, l)
		}
	}
	if len(locales) == 0 {
		locales = []string{"en"}
	}
	return locales
}

// MinSessionSecretLength is the minimum required length for the session secret.
// AES-256 requires 32 bytes minimum for secure encryption.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("SP_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("SP_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("SP_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
