package config

import (
	"os"
	"path/filepath"
	"time"
)

// Defaults.
const (
	DefaultProvider          = "claude"
	DefaultLocale            = "en"
	DefaultTimeout           = 30 * time.Second
	DefaultMaxRetries        = 3
	DefaultBaseDelay         = time.Second
	DefaultDebounce          = 100 * time.Millisecond
	DefaultRetentionDays     = 90
	DefaultRetentionSchedule = "0 3 * * *"
	DefaultCacheTTL          = time.Hour
	DefaultCacheSize         = 100
	DefaultSweepInterval     = 5 * time.Minute
	DefaultMinCommentLength  = 8
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
)

// DefaultDataDir returns "~/.aiduino", falling back to the current
// directory when the home directory cannot be resolved.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".aiduino"
	}
	return filepath.Join(home, ".aiduino")
}

// ApplyDefaults fills zero values with the package defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}
	if cfg.Locale == "" {
		cfg.Locale = DefaultLocale
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}

	if cfg.Client.Timeout == 0 {
		cfg.Client.Timeout = DefaultTimeout
	}
	if cfg.Client.MaxRetries == 0 {
		cfg.Client.MaxRetries = DefaultMaxRetries
	}
	if cfg.Client.BaseDelay == 0 {
		cfg.Client.BaseDelay = DefaultBaseDelay
	}

	if cfg.Usage.Debounce == 0 {
		cfg.Usage.Debounce = DefaultDebounce
	}
	if cfg.Usage.RetentionDays == 0 {
		cfg.Usage.RetentionDays = DefaultRetentionDays
	}
	if cfg.Usage.RetentionSchedule == "" {
		cfg.Usage.RetentionSchedule = DefaultRetentionSchedule
	}

	if cfg.Completion.CacheTTL == 0 {
		cfg.Completion.CacheTTL = DefaultCacheTTL
	}
	if cfg.Completion.CacheSize == 0 {
		cfg.Completion.CacheSize = DefaultCacheSize
	}
	if cfg.Completion.SweepInterval == 0 {
		cfg.Completion.SweepInterval = DefaultSweepInterval
	}
	if cfg.Completion.MinCommentLength == 0 {
		cfg.Completion.MinCommentLength = DefaultMinCommentLength
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
}

// StatsPath is the usage stats file inside the data directory.
func (c *Config) StatsPath() string {
	return filepath.Join(c.DataDir, "usage.json")
}

// HistoryPath is the usage history database inside the data directory.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "history.db")
}
