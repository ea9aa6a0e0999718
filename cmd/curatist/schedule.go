package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/curatist/curatist/internal/schedule"
)

// scheduleCmd runs all platforms on their configured cron cadences until
// interrupted.
func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run all platforms on their cron cadences",
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

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sched := schedule.New(cfg.Schedule, allExtractors(deps), logger)
			if err := sched.Start(ctx, crawlOptions()); err != nil {
				return err
			}
			logger.Info("scheduler started", "cadences", len(cfg.Schedule.Cadences))

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig

			logger.Info("shutting down, waiting for running cycle")
			cancel()
			sched.Stop()
			return nil
		},
	}
	addCrawlFlags(cmd)
	return cmd
}
