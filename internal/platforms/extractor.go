// Package platforms holds one extractor per crawl source. Each extractor is
// a thin state machine: authenticate (cookies, if required), obtain the
// candidate list, resolve per-post detail where the platform needs it,
// annotate best-effort, and hand the batch to the reconciliation layer.
package platforms

import (
	"context"
	"log/slog"
	"time"

	"github.com/curatist/curatist/internal/ai"
	"github.com/curatist/curatist/internal/config"
	"github.com/curatist/curatist/internal/enrich"
	"github.com/curatist/curatist/internal/fetch"
	"github.com/curatist/curatist/internal/media"
	"github.com/curatist/curatist/internal/reconcile"
	"github.com/curatist/curatist/internal/store"
	"github.com/curatist/curatist/internal/types"
)

// Options are the per-run knobs exposed on every platform's CLI entry point.
type Options struct {
	Limit            int           // max items to resolve/store this run; 0 = platform default
	Since            time.Duration // lookback window where the platform supports one
	All              bool          // crawl all time ranges/pages instead of the default set
	IncludeLanguages []string      // extra language-scoped leaderboards (GitHub)
}

// Extractor is one platform's crawl entry point. Crawl returns a Result
// instead of raising; a failed platform waits for its next scheduled cycle.
type Extractor interface {
	Platform() types.Platform
	Crawl(ctx context.Context, opts Options) types.Result
}

// Deps bundles the shared collaborators handed to every extractor.
type Deps struct {
	Cfg        *config.Config
	Fetch      *fetch.Client
	Store      store.Store
	Reconciler *reconcile.Reconciler
	AI         *ai.Client
	Downloader *media.Downloader
	Uploader   media.Uploader
	Enricher   *enrich.Pipeline
	Logger     *slog.Logger
}

// enrichBatch runs the post-upsert enrichment pass. Best-effort by contract;
// the upsert's success is already decided.
func (d *Deps) enrichBatch(ctx context.Context, items []*types.Item) {
	if d.Enricher != nil {
		d.Enricher.Run(ctx, items)
	}
}
