package config

import (
	"fmt"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Store.Type != "mongo" && cfg.Store.Type != "memory" {
		return fmt.Errorf("store.type must be 'mongo' or 'memory', got %q", cfg.Store.Type)
	}
	if cfg.Store.Type == "mongo" && cfg.Store.URI == "" {
		return fmt.Errorf("store.uri is required for the mongo store")
	}

	if cfg.Browser.NavTimeout <= 0 {
		return fmt.Errorf("browser.nav_timeout must be > 0")
	}

	if cfg.Collect.MaxCycles < 1 {
		return fmt.Errorf("collect.max_cycles must be >= 1, got %d", cfg.Collect.MaxCycles)
	}
	if cfg.Collect.MaxIdle < 1 {
		return fmt.Errorf("collect.max_idle must be >= 1, got %d", cfg.Collect.MaxIdle)
	}
	if cfg.Collect.ScrollStep <= 0 {
		return fmt.Errorf("collect.scroll_step must be > 0")
	}
	if cfg.Collect.SettleMax < cfg.Collect.SettleMin {
		return fmt.Errorf("collect.settle_max must be >= collect.settle_min")
	}

	switch cfg.Media.Backend {
	case "bucket", "cdn":
		if cfg.Media.Endpoint == "" {
			return fmt.Errorf("media.endpoint is required for the %s backend", cfg.Media.Backend)
		}
	case "local", "":
	default:
		return fmt.Errorf("media.backend %q is not supported (valid: bucket, cdn, local)", cfg.Media.Backend)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level %q is not supported (valid: debug, info, warn, error)", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}
