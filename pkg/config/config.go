// Package config defines the application configuration: a YAML file
// with defaults applied, validated, and overridable through AIDUINO_*
// environment variables.
package config

import "time"

// Config is the root configuration.
type Config struct {
	// Provider is the default provider id when none is selected.
	Provider string `yaml:"provider"`

	// Locale selects the message catalog ("en" built in).
	Locale string `yaml:"locale"`

	// DataDir holds credentials, the usage stats file, and the usage
	// history database. Empty means "~/.aiduino".
	DataDir string `yaml:"data_dir"`

	Client     ClientConfig     `yaml:"client"`
	Usage      UsageConfig      `yaml:"usage"`
	Completion CompletionConfig `yaml:"completion"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ClientConfig tunes the provider client.
type ClientConfig struct {
	// Timeout is the per-attempt request timeout.
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the total number of attempts per call.
	MaxRetries int `yaml:"max_retries"`

	// BaseDelay is the linear backoff unit between attempts.
	BaseDelay time.Duration `yaml:"base_delay"`
}

// UsageConfig tunes usage metering and persistence.
type UsageConfig struct {
	// Debounce is the save-coalescing window.
	Debounce time.Duration `yaml:"debounce"`

	// RetentionDays is how long archived days are kept.
	RetentionDays int `yaml:"retention_days"`

	// RetentionSchedule is the cron expression for pruning.
	RetentionSchedule string `yaml:"retention_schedule"`
}

// CompletionConfig tunes the inline-completion cache and triggers.
type CompletionConfig struct {
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	CacheSize     int           `yaml:"cache_size"`
	SweepInterval time.Duration `yaml:"sweep_interval"`

	// MinCommentLength is the shortest comment text that triggers
	// comment-to-code completion.
	MinCommentLength int `yaml:"min_comment_length"`
}

// LoggingConfig tunes slog output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}
