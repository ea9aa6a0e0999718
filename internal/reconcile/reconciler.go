package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/curatist/curatist/internal/store"
	"github.com/curatist/curatist/internal/types"
)

// Reconciler applies the two upsert policies against the store.
//
// The ranked path is a fetch-then-merge-then-upsert sequence that is not
// transactional against concurrent writers; a single scheduler process is an
// explicit deployment precondition.
type Reconciler struct {
	store  store.Store
	logger *slog.Logger
}

// New creates a Reconciler.
func New(st store.Store, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		store:  st,
		logger: logger.With("component", "reconciler"),
	}
}

// UpsertPlain writes the batch with wholesale replacement semantics. Used by
// YouTube, Reddit, X, Threads and LinkedIn, whose items carry no ranking.
func (r *Reconciler) UpsertPlain(ctx context.Context, items []*types.Item) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	for _, item := range items {
		item.UpdatedAt = time.Now().UTC()
	}
	if err := r.store.Upsert(ctx, items); err != nil {
		return 0, err
	}

	r.logger.Debug("plain upsert complete", "count", len(items))
	return len(items), nil
}

// UpsertRanked merges the batch against existing rows before writing: raw_data
// shallow-merges, rankings fold together (daily collapses by date into the
// capped history; weekly/monthly overwrite; language buckets recurse). Items
// with no existing row pass through unmerged. A store error on the existing-row
// fetch aborts the whole batch with no partial merge.
func (r *Reconciler) UpsertRanked(ctx context.Context, platform types.Platform, items []*types.Item) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.PlatformID)
	}

	existing, err := r.store.FetchByPlatformIDs(ctx, platform, ids)
	if err != nil {
		return 0, fmt.Errorf("fetch existing rows: %w", err)
	}
	byID := make(map[string]*types.Item, len(existing))
	for _, item := range existing {
		byID[item.PlatformID] = item
	}

	merged := make([]*types.Item, 0, len(items))
	for _, fresh := range items {
		if prev, ok := byID[fresh.PlatformID]; ok {
			merged = append(merged, mergeInto(prev, fresh))
		} else {
			merged = append(merged, fresh)
		}
	}

	for _, item := range merged {
		item.UpdatedAt = time.Now().UTC()
	}
	if err := r.store.Upsert(ctx, merged); err != nil {
		return 0, err
	}

	r.logger.Debug("ranked upsert complete",
		"platform", platform,
		"count", len(merged),
		"merged_existing", len(byID),
	)
	return len(merged), nil
}

// Transition advances one stored item's status, rejecting moves outside the
// pending -> pending_analysis -> completed -> {published | ignored} machine.
func (r *Reconciler) Transition(ctx context.Context, item *types.Item, next types.Status) error {
	if !item.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", types.ErrInvalidStatus, item.Status, next)
	}
	item.Status = next
	item.UpdatedAt = time.Now().UTC()

	if next == types.StatusPublished {
		// Publishing moves the row out of the review table.
		return r.store.Delete(ctx, item.Platform, item.PlatformID)
	}
	return r.store.Upsert(ctx, []*types.Item{item})
}
