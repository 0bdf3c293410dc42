package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file, applies defaults and
// AIDUINO_* environment overrides, and validates the result. An empty
// path or a missing file yields the pure default configuration.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults only.
		case err != nil:
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
			}
		}
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// applyEnvOverrides applies AIDUINO_* environment variables on top of
// the file configuration. Environment always wins.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("AIDUINO_PROVIDER"); val != "" {
		cfg.Provider = val
	}
	if val := os.Getenv("AIDUINO_LOCALE"); val != "" {
		cfg.Locale = val
	}
	if val := os.Getenv("AIDUINO_DATA_DIR"); val != "" {
		cfg.DataDir = val
	}

	if val := os.Getenv("AIDUINO_CLIENT_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Client.Timeout = d
		}
	}
	if val := os.Getenv("AIDUINO_CLIENT_MAX_RETRIES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Client.MaxRetries = n
		}
	}
	if val := os.Getenv("AIDUINO_CLIENT_BASE_DELAY"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Client.BaseDelay = d
		}
	}

	if val := os.Getenv("AIDUINO_USAGE_DEBOUNCE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Usage.Debounce = d
		}
	}
	if val := os.Getenv("AIDUINO_USAGE_RETENTION_DAYS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Usage.RetentionDays = n
		}
	}

	if val := os.Getenv("AIDUINO_COMPLETION_CACHE_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Completion.CacheTTL = d
		}
	}
	if val := os.Getenv("AIDUINO_COMPLETION_CACHE_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Completion.CacheSize = n
		}
	}

	if val := os.Getenv("AIDUINO_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("AIDUINO_LOG_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
}
