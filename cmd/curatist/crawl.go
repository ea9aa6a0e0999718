package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/curatist/curatist/internal/platforms"
)

var (
	crawlLimit     int
	crawlSince     time.Duration
	crawlAll       bool
	crawlLanguages []string
)

func addCrawlFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&crawlLimit, "limit", "l", 0, "max items this run (0 = platform default)")
	cmd.Flags().DurationVar(&crawlSince, "since", 0, "lookback window where supported (e.g. 48h)")
	cmd.Flags().BoolVar(&crawlAll, "all", false, "crawl all time ranges instead of the default set")
	cmd.Flags().StringSliceVar(&crawlLanguages, "include-languages", nil, "extra language leaderboards (github)")
}

func crawlOptions() platforms.Options {
	return platforms.Options{
		Limit:            crawlLimit,
		Since:            crawlSince,
		All:              crawlAll,
		IncludeLanguages: crawlLanguages,
	}
}

// crawlCmd builds the one-shot subcommand for a single platform. Exit code 0
// means the crawl ran to completion, even when it stored nothing new.
func crawlCmd(platform, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   platform,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			deps, cleanup, err := buildDeps(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			ext, err := newExtractor(platform, deps)
			if err != nil {
				return err
			}

			ctx := signalContext(cmd.Context())
			res := ext.Crawl(ctx, crawlOptions())
			if !res.Success {
				return fmt.Errorf("%s crawl failed: %w", platform, res.Err)
			}
			logger.Info("crawl finished", "platform", platform, "count", res.Count)
			return nil
		},
	}
	addCrawlFlags(cmd)
	return cmd
}

// crawlAllCmd runs every platform once, sequentially. Individual failures
// are reported but do not stop the remaining platforms; the command fails if
// any platform failed.
func crawlAllCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl-all",
		Short: "Run every platform once, sequentially",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			deps, cleanup, err := buildDeps(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := signalContext(cmd.Context())
			opts := crawlOptions()

			failed := 0
			for _, ext := range allExtractors(deps) {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				res := ext.Crawl(ctx, opts)
				if res.Success {
					logger.Info("crawl finished", "platform", res.Platform, "count", res.Count)
				} else {
					failed++
					logger.Error("crawl failed", "platform", res.Platform, "error", res.Err)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d platform(s) failed", failed)
			}
			return nil
		},
	}
	addCrawlFlags(cmd)
	return cmd
}

// signalContext cancels on SIGINT/SIGTERM.
func signalContext(parent context.Context) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx
}
