package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file and environment.
// Priority (highest to lowest): env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("CURATIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("curatist")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".curatist"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("store.type", cfg.Store.Type)
	v.SetDefault("store.uri", cfg.Store.URI)
	v.SetDefault("store.database", cfg.Store.Database)
	v.SetDefault("store.collection", cfg.Store.Collection)

	v.SetDefault("browser.headless", cfg.Browser.Headless)
	v.SetDefault("browser.nav_timeout", cfg.Browser.NavTimeout)
	v.SetDefault("browser.window_size", cfg.Browser.WindowSize)
	v.SetDefault("browser.cookie_dir", cfg.Browser.CookieDir)

	v.SetDefault("collect.max_cycles", cfg.Collect.MaxCycles)
	v.SetDefault("collect.max_idle", cfg.Collect.MaxIdle)
	v.SetDefault("collect.scroll_step", cfg.Collect.ScrollStep)
	v.SetDefault("collect.settle_min", cfg.Collect.SettleMin)
	v.SetDefault("collect.settle_max", cfg.Collect.SettleMax)

	v.SetDefault("media.backend", cfg.Media.Backend)
	v.SetDefault("media.local_dir", cfg.Media.LocalDir)
	v.SetDefault("media.local_base", cfg.Media.LocalBase)
	v.SetDefault("media.max_size_mb", cfg.Media.MaxSizeMB)

	v.SetDefault("ai.model", cfg.AI.Model)
	v.SetDefault("ai.target_lang", cfg.AI.TargetLang)

	v.SetDefault("platforms.reddit.subreddits", cfg.Platforms.Reddit.Subreddits)
	v.SetDefault("platforms.reddit.limit", cfg.Platforms.Reddit.Limit)
	v.SetDefault("platforms.youtube.min_seconds", cfg.Platforms.YouTube.MinSeconds)
	v.SetDefault("platforms.x.feed_url", cfg.Platforms.X.FeedURL)
	v.SetDefault("platforms.x.limit", cfg.Platforms.X.Limit)
	v.SetDefault("platforms.x.delay_min", cfg.Platforms.X.DelayMin)
	v.SetDefault("platforms.x.delay_max", cfg.Platforms.X.DelayMax)
	v.SetDefault("platforms.threads.feed_url", cfg.Platforms.Threads.FeedURL)
	v.SetDefault("platforms.threads.limit", cfg.Platforms.Threads.Limit)
	v.SetDefault("platforms.threads.delay_min", cfg.Platforms.Threads.DelayMin)
	v.SetDefault("platforms.threads.delay_max", cfg.Platforms.Threads.DelayMax)
	v.SetDefault("platforms.linkedin.feed_url", cfg.Platforms.LinkedIn.FeedURL)
	v.SetDefault("platforms.linkedin.limit", cfg.Platforms.LinkedIn.Limit)
	v.SetDefault("platforms.linkedin.delay_min", cfg.Platforms.LinkedIn.DelayMin)
	v.SetDefault("platforms.linkedin.delay_max", cfg.Platforms.LinkedIn.DelayMax)

	v.SetDefault("schedule.jitter_max", cfg.Schedule.JitterMax)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.output", cfg.Logging.Output)
}
