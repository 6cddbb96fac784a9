package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Site layout
	SiteRoot       string
	DictionaryFile string
	SiteConfig     string

	// Auth
	APIKey string

	// Upload limits
	MaxUploadBytes int64

	// Job queue
	MaxQueueSize int
	JobTTL       time.Duration

	LogLevel slog.Level
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		SiteRoot:       envOr("SITE_ROOT", "."),
		DictionaryFile: envOr("DICTIONARY_FILE", "dictionary.json"),
		SiteConfig:     os.Getenv("SITE_CONFIG"),

		APIKey: os.Getenv("COPYWRITE_API_KEY"),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),
		JobTTL:       envDuration("JOB_TTL", 1*time.Hour),

		LogLevel: envLevel("LOG_LEVEL", slog.LevelInfo),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("COPYWRITE_API_KEY is required")
	}
	if info, err := os.Stat(c.SiteRoot); err != nil || !info.IsDir() {
		return fmt.Errorf("SITE_ROOT %q is not a directory", c.SiteRoot)
	}
	return nil
}

// DictionaryPath resolves the dictionary file against the site root.
func (c Config) DictionaryPath() string {
	return resolve(c.SiteRoot, c.DictionaryFile)
}

// SiteConfigPath returns the configured site config file, or the first known
// config file present in the site root. It returns "" if there is none.
func (c Config) SiteConfigPath() string {
	if c.SiteConfig != "" {
		return resolve(c.SiteRoot, c.SiteConfig)
	}
	return DetectSiteConfig(c.SiteRoot)
}

func resolve(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		if l, err := ParseLevel(v); err == nil {
			return l
		}
	}
	return fallback
}

// ParseLevel accepts debug, info, warn or error in any case.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}
