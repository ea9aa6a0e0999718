// Package schedule runs extractors at configured cadences.
package schedule

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/curatist/curatist/internal/config"
	"github.com/curatist/curatist/internal/platforms"
)

// Scheduler invokes extractors on cron cadences. Cycles never overlap: a
// mutex serializes platforms so only one crawl talks to the outside world at
// a time, and each cycle is wrapped in a catch-all so one platform's panic
// cannot take down the long-running process.
type Scheduler struct {
	cfg        config.ScheduleConfig
	extractors map[string]platforms.Extractor
	cron       *cron.Cron
	runMu      sync.Mutex
	rng        *rand.Rand
	logger     *slog.Logger
}

// New creates a Scheduler over the given extractors.
func New(cfg config.ScheduleConfig, extractors []platforms.Extractor, logger *slog.Logger) *Scheduler {
	byName := make(map[string]platforms.Extractor, len(extractors))
	for _, e := range extractors {
		byName[string(e.Platform())] = e
	}
	return &Scheduler{
		cfg:        cfg,
		extractors: byName,
		cron:       cron.New(),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:     logger.With("component", "scheduler"),
	}
}

// Start registers the configured cadences and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context, opts platforms.Options) error {
	for name, spec := range s.cfg.Cadences {
		ext, ok := s.extractors[name]
		if !ok {
			s.logger.Warn("cadence configured for unknown platform", "platform", name)
			continue
		}

		_, err := s.cron.AddFunc(spec, func() {
			s.runCycle(ctx, ext, opts)
		})
		if err != nil {
			return err
		}
		s.logger.Info("cadence registered", "platform", name, "spec", spec)
	}

	s.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()

	// A cycle may still hold the run mutex; wait it out.
	s.runMu.Lock()
	s.runMu.Unlock() //nolint:staticcheck // lock/unlock pair used as a barrier

	s.logger.Info("scheduler stopped")
}

// runCycle executes one platform crawl with start jitter and full isolation.
func (s *Scheduler) runCycle(ctx context.Context, ext platforms.Extractor, opts platforms.Options) {
	if s.cfg.JitterMax > 0 {
		jitter := time.Duration(s.rng.Int63n(int64(s.cfg.JitterMax)))
		select {
		case <-time.After(jitter):
		case <-ctx.Done():
			return
		}
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("crawl cycle panicked", "platform", ext.Platform(), "panic", r)
		}
	}()

	start := time.Now()
	result := ext.Crawl(ctx, opts)
	if result.Success {
		s.logger.Info("crawl cycle complete",
			"platform", ext.Platform(),
			"count", result.Count,
			"duration", time.Since(start),
		)
	} else {
		s.logger.Error("crawl cycle failed",
			"platform", ext.Platform(),
			"error", result.Err,
			"duration", time.Since(start),
		)
	}
}
