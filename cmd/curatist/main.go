// Command curatist crawls content platforms and reconciles the results into
// a single store. Each platform is a subcommand for one-shot runs; the
// schedule subcommand runs all of them on cron cadences.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/curatist/curatist/internal/ai"
	"github.com/curatist/curatist/internal/config"
	"github.com/curatist/curatist/internal/enrich"
	"github.com/curatist/curatist/internal/fetch"
	"github.com/curatist/curatist/internal/media"
	"github.com/curatist/curatist/internal/platforms"
	"github.com/curatist/curatist/internal/reconcile"
	"github.com/curatist/curatist/internal/store"
)

var configPath string

func main() {
	// A missing .env is fine; environment may come from the host.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "curatist",
		Short:         "Multi-platform content crawler and reconciler",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")

	root.AddCommand(
		crawlCmd("github", "Crawl GitHub trending leaderboards"),
		crawlCmd("trendshift", "Crawl Trendshift repository rankings"),
		crawlCmd("reddit", "Crawl configured subreddit listings"),
		crawlCmd("youtube", "Crawl recent uploads from subscribed channels"),
		crawlCmd("x", "Crawl the authenticated X home timeline"),
		crawlCmd("threads", "Crawl the authenticated Threads home feed"),
		crawlCmd("linkedin", "Capture LinkedIn feed posts as screenshots"),
		crawlAllCmd(),
		scheduleCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, setupLogger(cfg.Logging), nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	out := os.Stderr
	if cfg.Output == "stdout" {
		out = os.Stdout
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}

// buildDeps wires the shared collaborators every extractor needs. The
// returned cleanup closes the store.
func buildDeps(cfg *config.Config, logger *slog.Logger) (*platforms.Deps, func(), error) {
	var st store.Store
	switch cfg.Store.Type {
	case "memory":
		st = store.NewMemoryStore()
	default:
		ms, err := store.NewMongoStore(cfg.Store.URI, cfg.Store.Database, cfg.Store.Collection, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect store: %w", err)
		}
		st = ms
	}

	aiClient := ai.NewClient(cfg.AI, logger)
	uploader := media.NewUploader(cfg.Media, logger)

	enricher := enrich.New(st, logger).
		Use(&enrich.TranslateStage{Client: aiClient, TargetLang: cfg.AI.TargetLang}).
		Use(&enrich.AdvanceStage{})

	deps := &platforms.Deps{
		Cfg:        cfg,
		Fetch:      fetch.NewClient(30*time.Second, logger),
		Store:      st,
		Reconciler: reconcile.New(st, logger),
		AI:         aiClient,
		Downloader: media.NewDownloader(cfg.Media.MaxSizeMB, logger),
		Uploader:   uploader,
		Enricher:   enricher,
		Logger:     logger,
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := st.Close(ctx); err != nil {
			logger.Warn("store close failed", "error", err)
		}
	}
	return deps, cleanup, nil
}

// newExtractor maps a platform name to its extractor.
func newExtractor(name string, deps *platforms.Deps) (platforms.Extractor, error) {
	switch name {
	case "github":
		return platforms.NewGitHub(deps), nil
	case "trendshift":
		return platforms.NewTrendshift(deps), nil
	case "reddit":
		return platforms.NewReddit(deps, nil), nil
	case "youtube":
		return platforms.NewYouTube(deps), nil
	case "x":
		return platforms.NewX(deps), nil
	case "threads":
		return platforms.NewThreads(deps), nil
	case "linkedin":
		return platforms.NewLinkedIn(deps), nil
	}
	return nil, fmt.Errorf("unknown platform %q", name)
}

func allExtractors(deps *platforms.Deps) []platforms.Extractor {
	return []platforms.Extractor{
		platforms.NewGitHub(deps),
		platforms.NewTrendshift(deps),
		platforms.NewReddit(deps, nil),
		platforms.NewYouTube(deps),
		platforms.NewX(deps),
		platforms.NewThreads(deps),
		platforms.NewLinkedIn(deps),
	}
}
