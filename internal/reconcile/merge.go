// Package reconcile merges freshly crawled batches into the store: plain
// overwrite-upsert for feed platforms, ranking-history merge for leaderboard
// platforms.
package reconcile

import (
	"github.com/curatist/curatist/internal/types"
)

// MergeRawData shallow-merges incoming over existing: incoming wins per key,
// existing keys absent from incoming survive. Neither input is mutated.
func MergeRawData(existing, incoming map[string]any) map[string]any {
	if existing == nil && incoming == nil {
		return nil
	}
	out := make(map[string]any, len(existing)+len(incoming))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range incoming {
		out[k] = v
	}
	return out
}

// mergeInto folds the fresh item into the existing row. The existing row's
// status and lifecycle fields survive; content fields take the fresh values;
// raw_data and ranking merge.
func mergeInto(existing, fresh *types.Item) *types.Item {
	merged := *fresh

	merged.Status = existing.Status
	merged.CrawledAt = existing.CrawledAt
	merged.RawData = MergeRawData(existing.RawData, fresh.RawData)

	if existing.Ranking != nil || fresh.Ranking != nil {
		ranking := &types.Ranking{}
		if existing.Ranking != nil {
			ranking.Merge(existing.Ranking)
		}
		ranking.Merge(fresh.Ranking)
		merged.Ranking = ranking
	}

	// Enrichment fields are expensive to recompute; keep them unless the
	// fresh crawl produced its own.
	if merged.TitleKo == "" {
		merged.TitleKo = existing.TitleKo
	}
	if merged.DescriptionKo == "" {
		merged.DescriptionKo = existing.DescriptionKo
	}
	if merged.ContentKo == "" {
		merged.ContentKo = existing.ContentKo
	}
	if merged.ScreenshotURL == "" {
		merged.ScreenshotURL = existing.ScreenshotURL
	}

	return &merged
}
