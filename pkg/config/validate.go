package config

import (
	"fmt"
	"time"
)

// Validate checks the configuration for values the application cannot
// run with. It is called after defaults and again after environment
// overrides.
func Validate(cfg *Config) error {
	if cfg.Client.Timeout < time.Second {
		return fmt.Errorf("client.timeout must be at least 1s, got %s", cfg.Client.Timeout)
	}
	if cfg.Client.MaxRetries < 1 || cfg.Client.MaxRetries > 10 {
		return fmt.Errorf("client.max_retries must be between 1 and 10, got %d", cfg.Client.MaxRetries)
	}
	if cfg.Client.BaseDelay < 0 {
		return fmt.Errorf("client.base_delay cannot be negative, got %s", cfg.Client.BaseDelay)
	}

	if cfg.Usage.Debounce < 0 {
		return fmt.Errorf("usage.debounce cannot be negative, got %s", cfg.Usage.Debounce)
	}
	if cfg.Usage.RetentionDays < 0 {
		return fmt.Errorf("usage.retention_days cannot be negative, got %d", cfg.Usage.RetentionDays)
	}

	if cfg.Completion.CacheTTL < time.Minute {
		return fmt.Errorf("completion.cache_ttl must be at least 1m, got %s", cfg.Completion.CacheTTL)
	}
	if cfg.Completion.CacheSize < 1 {
		return fmt.Errorf("completion.cache_size must be positive, got %d", cfg.Completion.CacheSize)
	}
	if cfg.Completion.SweepInterval < time.Second {
		return fmt.Errorf("completion.sweep_interval must be at least 1s, got %s", cfg.Completion.SweepInterval)
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", cfg.Logging.Format)
	}

	return nil
}
