// Package store persists crawled items with row-level uniqueness on the
// composite (platform, platform_id) key.
package store

import (
	"context"

	"github.com/curatist/curatist/internal/types"
)

// Store is the persistence contract consumed by the reconciliation layer.
// Implementations treat every error as a soft return value; nothing across
// this boundary panics.
type Store interface {
	// Upsert writes the batch, replacing any existing row with the same
	// (platform, platform_id) key.
	Upsert(ctx context.Context, items []*types.Item) error

	// FetchByPlatformIDs returns the existing rows for the given ids.
	// Missing ids are simply absent from the result.
	FetchByPlatformIDs(ctx context.Context, platform types.Platform, ids []string) ([]*types.Item, error)

	// ExistingIDs reports which of the given ids are already stored.
	ExistingIDs(ctx context.Context, platform types.Platform, ids []string) (map[string]bool, error)

	// Delete removes one row.
	Delete(ctx context.Context, platform types.Platform, id string) error

	// Close releases resources.
	Close(ctx context.Context) error
}
