package catalog

import (
	"context"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// ItemIterator walks the catalog in ID order with a forward-only cursor,
// one page at a time.
type ItemIterator struct {
	repo      storage.CatalogRepository
	batchSize int
}

// NewItemIterator creates a new item iterator.
// batchSize: number of items to fetch in each page (must be > 0)
func NewItemIterator(repo storage.CatalogRepository, batchSize int) *ItemIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &ItemIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach calls fn for each page of items.
// Iteration stops on first error from fn or when all items are processed.
// Context cancellation is checked between pages.
func (it *ItemIterator) ForEach(ctx context.Context, fn func([]*core.Item) error) error {
	var after core.ID
	for {
		// Check context before each page
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		items, err := it.repo.ScanItems(ctx, after, it.batchSize)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}

		if err := fn(items); err != nil {
			return err
		}

		if len(items) < it.batchSize {
			return nil
		}
		after = items[len(items)-1].ID
	}
}
