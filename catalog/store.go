package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

const (
	// DefaultBatchSize is the number of items read per cursor page.
	DefaultBatchSize = 100

	// DefaultReportInterval is how often VectorizeAll reports progress.
	DefaultReportInterval = 100

	// DefaultImportChunk bounds the items written per import transaction.
	DefaultImportChunk = 500

	embedTag = "catalog"
)

// ProgressFunc receives vectorization progress. It may be called from
// worker goroutines.
type ProgressFunc func(done, total int)

// Store keeps base catalog records and their vector records consistent.
type Store struct {
	catalog        storage.CatalogRepository
	vectors        storage.VectorRepository
	embedder       ai.Embedder
	pool           *ants.Pool
	batchSize      int
	reportInterval int
	importChunk    int
	progress       ProgressFunc
	logger         *slog.Logger
}

// Option configures a Store.
type Option func(*Store) error

// WithPoolSize sets the worker pool size used by VectorizeAll.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *Store) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if s.pool != nil {
			s.pool.Release()
		}
		s.pool = pool
		return nil
	}
}

// WithBatchSize sets the cursor page size used by VectorizeAll.
func WithBatchSize(size int) Option {
	return func(s *Store) error {
		if size <= 0 {
			return fmt.Errorf("%w: batch size must be greater than 0", core.ErrConfiguration)
		}
		s.batchSize = size
		return nil
	}
}

// WithReportInterval sets how many items pass between progress reports.
func WithReportInterval(n int) Option {
	return func(s *Store) error {
		if n <= 0 {
			return fmt.Errorf("%w: report interval must be greater than 0", core.ErrConfiguration)
		}
		s.reportInterval = n
		return nil
	}
}

// WithImportChunk sets the number of items written per import transaction.
func WithImportChunk(n int) Option {
	return func(s *Store) error {
		if n <= 0 {
			return fmt.Errorf("%w: import chunk must be greater than 0", core.ErrConfiguration)
		}
		s.importChunk = n
		return nil
	}
}

// WithProgress registers a callback for VectorizeAll progress.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Store) error {
		s.progress = fn
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewStore creates a catalog store.
func NewStore(
	catalog storage.CatalogRepository,
	vectors storage.VectorRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Store, error) {
	if catalog == nil {
		return nil, ErrCatalogRepositoryRequired
	}
	if vectors == nil {
		return nil, ErrVectorRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Store{
		catalog:        catalog,
		vectors:        vectors,
		embedder:       embedder,
		batchSize:      DefaultBatchSize,
		reportInterval: DefaultReportInterval,
		importChunk:    DefaultImportChunk,
		logger:         slog.Default().With("component", "catalog"),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.Release()
			return nil, err
		}
	}

	if s.pool == nil {
		poolSize := runtime.NumCPU() / 2
		if poolSize < 1 {
			poolSize = 1
		}
		pool, err := ants.NewPool(poolSize)
		if err != nil {
			return nil, err
		}
		s.pool = pool
	}

	return s, nil
}

// Release releases the worker pool.
// The store should not be used after calling Release.
func (s *Store) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// UpsertItem writes the base record, embeds it and writes its vector record,
// in that order. Each step is idempotent, so a failed upsert can simply be
// retried. An ID is derived from the title and year when the item has none.
// On embedding failure the base record stays written and the error is
// returned. If the base record is deleted or replaced while the embedding is
// computed, no vector record is written and the error wraps ErrItemChanged.
func (s *Store) UpsertItem(ctx context.Context, item *core.Item) (*core.Item, error) {
	if err := core.ValidateItem(item); err != nil {
		return nil, err
	}
	if item.ID == "" {
		item.ID = core.IDFromContent(item.IdentityKey())
	}

	if err := s.catalog.PutItem(ctx, item); err != nil {
		s.logger.Error("failed to write item", "id", item.ID, "err", err)
		return nil, storeError(err)
	}

	if err := s.embedItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Debug("item upserted", "id", item.ID, "title", item.Title)
	return item, nil
}

// embedItem computes the item's vector and writes its vector record.
func (s *Store) embedItem(ctx context.Context, item *core.Item) error {
	text := item.EmbeddingText()
	emb, err := s.embedder.Embed(ctx, embedTag, text)
	if err != nil {
		s.logger.Error("failed to embed item", "id", item.ID, "err", err)
		return err
	}
	item.Vector = emb.Vector

	record := &core.VectorRecord{
		ID:         item.ID,
		Payload:    item.Payload(),
		Vector:     emb.Vector,
		SourceHash: item.SourceHash(),
	}
	err = s.catalog.PutItemVector(ctx, record)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrStaleRecord):
		s.logger.Warn("item changed during embedding, vector discarded", "id", item.ID, "err", err)
		return fmt.Errorf("%w: %w", ErrItemChanged, err)
	default:
		s.logger.Error("failed to write vector record", "id", item.ID, "err", err)
		return storeError(err)
	}
}

// DeleteItem removes an item and its vector record. The item is addressed
// by ID, or by the ID derived from its title and year when ID is empty.
// Deleting a missing item by ID succeeds. A derived ID that matches nothing
// returns storage.ErrNotFound, since the item may exist under an explicit ID.
func (s *Store) DeleteItem(ctx context.Context, item *core.Item) error {
	if item == nil {
		return fmt.Errorf("%w: item cannot be nil", core.ErrInvalidArgument)
	}
	if item.ID != "" {
		return s.DeleteItemByID(ctx, item.ID)
	}

	id := core.IDFromContent(item.IdentityKey())
	removed, err := s.deleteItem(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: no item %q (%d)", storage.ErrNotFound, item.Title, item.Year)
	}
	return nil
}

// DeleteItemByID removes the base record and vector record for id in one
// transaction. Deleting a missing item succeeds.
func (s *Store) DeleteItemByID(ctx context.Context, id core.ID) error {
	if id == "" {
		return fmt.Errorf("%w: %w", core.ErrInvalidArgument, core.ErrEmptyID)
	}
	_, err := s.deleteItem(ctx, id)
	return err
}

func (s *Store) deleteItem(ctx context.Context, id core.ID) (bool, error) {
	removed, err := s.catalog.DeleteItem(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete item", "id", id, "err", err)
		return false, storeError(err)
	}
	if !removed {
		s.logger.Info("delete of missing item", "id", id)
	}
	return removed, nil
}

// GetItem returns the base record for id.
// Returns storage.ErrNotFound if it doesn't exist.
func (s *Store) GetItem(ctx context.Context, id core.ID) (*core.Item, error) {
	return s.catalog.GetItem(ctx, id)
}

// CountItems returns the number of base records.
func (s *Store) CountItems(ctx context.Context) (int, error) {
	return s.catalog.CountItems(ctx)
}

// Reconcile removes vector records whose base record no longer exists and
// returns how many were removed.
func (s *Store) Reconcile(ctx context.Context) (int, error) {
	ids, err := s.vectors.ListVectorIDs(ctx)
	if err != nil {
		return 0, storeError(err)
	}

	removed := 0
	for _, id := range ids {
		_, err := s.catalog.GetItem(ctx, id)
		if err == nil {
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return removed, storeError(err)
		}
		if err := s.vectors.DeleteVector(ctx, id); err != nil {
			return removed, storeError(err)
		}
		s.logger.Info("removed orphaned vector record", "id", id)
		removed++
	}
	return removed, nil
}

// storeError tags a repository failure as a store outage unless it already
// carries a more specific kind.
func storeError(err error) error {
	switch {
	case errors.Is(err, core.ErrInvalidArgument),
		errors.Is(err, core.ErrStoreUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
	}
}
