package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// VectorizeAll computes and stores a vector record for every catalog item
// whose vector record is missing or derived from an older payload. It pages
// through the catalog with a forward-only cursor and fans each page out to
// the worker pool. The first item failure cancels the remaining work and is
// returned. The result is the number of items embedded.
func (s *Store) VectorizeAll(ctx context.Context) (int, error) {
	total, err := s.catalog.CountItems(ctx)
	if err != nil {
		return 0, storeError(err)
	}
	if total == 0 {
		s.logger.Info("catalog is empty, nothing to vectorize")
		return 0, nil
	}

	s.logger.Info("starting vectorization", "items", total, "batchSize", s.batchSize)

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	tracker := NewProgressTracker(s.logger, s.progress, total, s.reportInterval)
	var embedded atomic.Int64

	iterator := NewItemIterator(s.catalog, s.batchSize)
	err = iterator.ForEach(ctx, func(items []*core.Item) error {
		var wg sync.WaitGroup
		for _, item := range items {
			wg.Add(1)
			task := func() {
				defer wg.Done()
				if ctx.Err() != nil {
					return
				}
				done, err := s.vectorizeItem(ctx, item)
				if err != nil {
					cancel(err)
					return
				}
				if done {
					embedded.Add(1)
				}
				tracker.Increment(1)
			}
			if err := s.pool.Submit(task); err != nil {
				wg.Done()
				cancel(err)
				break
			}
		}
		wg.Wait()
		return context.Cause(ctx)
	})

	count := int(embedded.Load())
	if err != nil {
		// Prefer the item failure over the cancellation it triggered.
		if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
			err = cause
		}
		s.logger.Error("vectorization stopped", "embedded", count, "err", err)
		return count, err
	}

	tracker.Finish()
	s.logger.Info("vectorization complete", "items", total, "embedded", count,
		"elapsed", tracker.Elapsed().Round(time.Millisecond))
	return count, nil
}

// vectorizeItem embeds one item unless its vector record is current.
// Reports whether an embedding was computed.
func (s *Store) vectorizeItem(ctx context.Context, item *core.Item) (bool, error) {
	existing, err := s.vectors.GetVector(ctx, item.ID)
	switch {
	case err == nil:
		if existing.SourceHash == item.SourceHash() && len(existing.Vector) > 0 {
			return false, nil
		}
	case !errors.Is(err, storage.ErrNotFound):
		s.logger.Error("failed to read vector record", "id", item.ID, "err", err)
		return false, storeError(err)
	}

	if err := s.embedItem(ctx, item); err != nil {
		// A newer write owns the vector record now, or the item is gone.
		if errors.Is(err, ErrItemChanged) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
