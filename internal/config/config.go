package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for the crawl pipeline.
type Config struct {
	Store     StoreConfig     `mapstructure:"store"     yaml:"store"`
	Browser   BrowserConfig   `mapstructure:"browser"   yaml:"browser"`
	Collect   CollectConfig   `mapstructure:"collect"   yaml:"collect"`
	Media     MediaConfig     `mapstructure:"media"     yaml:"media"`
	AI        AIConfig        `mapstructure:"ai"        yaml:"ai"`
	Platforms PlatformsConfig `mapstructure:"platforms" yaml:"platforms"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"  yaml:"schedule"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// StoreConfig controls the persistent store.
type StoreConfig struct {
	Type       string `mapstructure:"type"       yaml:"type"` // mongo, memory
	URI        string `mapstructure:"uri"        yaml:"uri"`
	Database   string `mapstructure:"database"   yaml:"database"`
	Collection string `mapstructure:"collection" yaml:"collection"`
}

// BrowserConfig controls the headless browser sessions.
type BrowserConfig struct {
	Headless    bool          `mapstructure:"headless"     yaml:"headless"`
	NavTimeout  time.Duration `mapstructure:"nav_timeout"  yaml:"nav_timeout"`
	UserDataDir string        `mapstructure:"user_data_dir" yaml:"user_data_dir"`
	WindowSize  string        `mapstructure:"window_size"  yaml:"window_size"`
	CookieDir   string        `mapstructure:"cookie_dir"   yaml:"cookie_dir"`
}

// CollectConfig bounds the scroll-and-collect loop.
type CollectConfig struct {
	MaxCycles  int           `mapstructure:"max_cycles"  yaml:"max_cycles"`
	MaxIdle    int           `mapstructure:"max_idle"    yaml:"max_idle"` // consecutive no-new cycles before exit
	ScrollStep int           `mapstructure:"scroll_step" yaml:"scroll_step"`
	SettleMin  time.Duration `mapstructure:"settle_min"  yaml:"settle_min"`
	SettleMax  time.Duration `mapstructure:"settle_max"  yaml:"settle_max"`
}

// MediaConfig controls media download and object storage upload.
type MediaConfig struct {
	Backend     string `mapstructure:"backend"      yaml:"backend"` // bucket, cdn, local
	Endpoint    string `mapstructure:"endpoint"     yaml:"endpoint"`
	Bucket      string `mapstructure:"bucket"       yaml:"bucket"`
	Token       string `mapstructure:"token"        yaml:"token"`
	PublicBase  string `mapstructure:"public_base"  yaml:"public_base"`
	LocalDir    string `mapstructure:"local_dir"    yaml:"local_dir"`
	LocalBase   string `mapstructure:"local_base"   yaml:"local_base"`
	MaxSizeMB   int64  `mapstructure:"max_size_mb"  yaml:"max_size_mb"`
}

// AIConfig controls the translation/summarization service.
type AIConfig struct {
	Endpoint   string `mapstructure:"endpoint"    yaml:"endpoint"`
	Model      string `mapstructure:"model"       yaml:"model"`
	APIKey     string `mapstructure:"api_key"     yaml:"api_key"`
	TargetLang string `mapstructure:"target_lang" yaml:"target_lang"`
}

// PlatformsConfig holds per-platform settings.
type PlatformsConfig struct {
	GitHub   GitHubConfig  `mapstructure:"github"   yaml:"github"`
	Reddit   RedditConfig  `mapstructure:"reddit"   yaml:"reddit"`
	YouTube  YouTubeConfig `mapstructure:"youtube"  yaml:"youtube"`
	X        FeedConfig    `mapstructure:"x"        yaml:"x"`
	Threads  FeedConfig    `mapstructure:"threads"  yaml:"threads"`
	LinkedIn FeedConfig    `mapstructure:"linkedin" yaml:"linkedin"`
}

// GitHubConfig configures the GitHub trending extractor.
type GitHubConfig struct {
	APIToken  string   `mapstructure:"api_token" yaml:"api_token"`
	Languages []string `mapstructure:"languages" yaml:"languages"`
}

// RedditConfig configures the Reddit extractor.
type RedditConfig struct {
	Subreddits []string `mapstructure:"subreddits" yaml:"subreddits"`
	Limit      int      `mapstructure:"limit"      yaml:"limit"`
}

// YouTubeConfig configures the YouTube extractor.
type YouTubeConfig struct {
	ClientID     string `mapstructure:"client_id"     yaml:"client_id"`
	ClientSecret string `mapstructure:"client_secret" yaml:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token" yaml:"refresh_token"`
	MinSeconds   int    `mapstructure:"min_seconds"   yaml:"min_seconds"`
}

// FeedConfig configures a cookie-authenticated feed platform (X, Threads).
type FeedConfig struct {
	CookieFile string        `mapstructure:"cookie_file" yaml:"cookie_file"`
	CookieEnv  string        `mapstructure:"cookie_env"  yaml:"cookie_env"`
	FeedURL    string        `mapstructure:"feed_url"    yaml:"feed_url"`
	Limit      int           `mapstructure:"limit"       yaml:"limit"`
	DelayMin   time.Duration `mapstructure:"delay_min"   yaml:"delay_min"`
	DelayMax   time.Duration `mapstructure:"delay_max"   yaml:"delay_max"`
}

// ScheduleConfig maps platforms to cron cadences.
type ScheduleConfig struct {
	Cadences  map[string]string `mapstructure:"cadences"   yaml:"cadences"`
	JitterMax time.Duration     `mapstructure:"jitter_max" yaml:"jitter_max"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Type:       "mongo",
			URI:        "mongodb://localhost:27017",
			Database:   "curatist",
			Collection: "crawled_items",
		},
		Browser: BrowserConfig{
			Headless:   true,
			NavTimeout: 45 * time.Second,
			WindowSize: "1280,900",
			CookieDir:  "./cookies",
		},
		Collect: CollectConfig{
			MaxCycles:  8,
			MaxIdle:    2,
			ScrollStep: 2000,
			SettleMin:  800 * time.Millisecond,
			SettleMax:  2 * time.Second,
		},
		Media: MediaConfig{
			Backend:   "local",
			LocalDir:  "./media",
			LocalBase: "/static/media",
			MaxSizeMB: 200,
		},
		AI: AIConfig{
			Model:      "gemini-2.0-flash",
			TargetLang: "ko",
		},
		Platforms: PlatformsConfig{
			Reddit: RedditConfig{
				Subreddits: []string{"programming"},
				Limit:      25,
			},
			YouTube: YouTubeConfig{
				MinSeconds: 180,
			},
			X: FeedConfig{
				FeedURL:  "https://x.com/home",
				Limit:    10,
				DelayMin: 500 * time.Millisecond,
				DelayMax: 2 * time.Second,
			},
			Threads: FeedConfig{
				FeedURL:  "https://www.threads.net/",
				Limit:    10,
				DelayMin: 500 * time.Millisecond,
				DelayMax: 2 * time.Second,
			},
			LinkedIn: FeedConfig{
				FeedURL:  "https://www.linkedin.com/feed/",
				Limit:    10,
				DelayMin: 500 * time.Millisecond,
				DelayMax: 2 * time.Second,
			},
		},
		Schedule: ScheduleConfig{
			Cadences: map[string]string{
				"github":     "0 */6 * * *",
				"trendshift": "30 */6 * * *",
				"reddit":     "*/30 * * * *",
				"youtube":    "15 * * * *",
				"x":          "45 */2 * * *",
				"threads":    "50 */2 * * *",
				"linkedin":   "10 */4 * * *",
			},
			JitterMax: 2 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}
