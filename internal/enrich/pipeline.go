// Package enrich patches freshly stored items in place: translation,
// summaries, and the pending -> pending_analysis -> completed advance. Every
// stage is best-effort; enrichment failures are logged and never surface to
// the crawl that triggered them.
package enrich

import (
	"context"
	"log/slog"

	"github.com/curatist/curatist/internal/store"
	"github.com/curatist/curatist/internal/types"
)

// Stage mutates one item in place. Returning an error skips the remaining
// stages for that item but never fails the pass.
type Stage interface {
	Name() string
	Process(ctx context.Context, item *types.Item) error
}

// Pipeline chains stages over a batch and writes the results back.
type Pipeline struct {
	stages []Stage
	store  store.Store
	logger *slog.Logger
}

// New creates an enrichment pipeline.
func New(st store.Store, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		store:  st,
		logger: logger.With("component", "enrich_pipeline"),
	}
}

// Use appends a stage.
func (p *Pipeline) Use(s Stage) *Pipeline {
	p.stages = append(p.stages, s)
	return p
}

// Run enriches the batch and persists the patched items. Store errors are
// logged, not returned: the items were already upserted by the crawl and an
// unpatched row is acceptable.
func (p *Pipeline) Run(ctx context.Context, items []*types.Item) {
	if len(p.stages) == 0 || len(items) == 0 {
		return
	}

	var patched []*types.Item
	for _, item := range items {
		ok := true
		for _, stage := range p.stages {
			if err := stage.Process(ctx, item); err != nil {
				p.logger.Warn("enrichment stage failed",
					"stage", stage.Name(),
					"item", item.Key(),
					"error", err,
				)
				ok = false
				break
			}
		}
		if ok {
			patched = append(patched, item)
		}
	}

	if len(patched) == 0 {
		return
	}
	if err := p.store.Upsert(ctx, patched); err != nil {
		p.logger.Warn("enrichment write-back failed", "count", len(patched), "error", err)
	}
}
