package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

const (
	// DefaultIndexName is the name of the vector index over the vector collection.
	DefaultIndexName = "vectorSearchIndex"

	indexPath       = "vector"
	indexKind       = "vector-ivf"
	indexNumLists   = 5
	indexSimilarity = "COS"
)

// IndexManager makes sure the vector index exists before search is served.
type IndexManager struct {
	indexes    storage.IndexRepository
	collection storage.Collection
	name       string
	dimensions int
	group      singleflight.Group
	logger     *slog.Logger
}

// IndexOption configures an IndexManager.
type IndexOption func(*IndexManager) error

// WithIndexLogger sets a custom logger.
// Default is slog.Default().
func WithIndexLogger(logger *slog.Logger) IndexOption {
	return func(m *IndexManager) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// WithIndexName overrides DefaultIndexName.
func WithIndexName(name string) IndexOption {
	return func(m *IndexManager) error {
		if name == "" {
			return fmt.Errorf("%w: index name cannot be empty", core.ErrConfiguration)
		}
		m.name = name
		return nil
	}
}

// NewIndexManager creates an index manager for the vector collection.
func NewIndexManager(indexes storage.IndexRepository, dimensions int, opts ...IndexOption) (*IndexManager, error) {
	if indexes == nil {
		return nil, ErrIndexRepositoryRequired
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, ErrInvalidDimensions)
	}

	m := &IndexManager{
		indexes:    indexes,
		collection: storage.CollectionVectors,
		name:       DefaultIndexName,
		dimensions: dimensions,
		logger:     slog.Default().With("component", "index-manager"),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Name returns the managed index name.
func (m *IndexManager) Name() string {
	return m.name
}

// Spec returns the descriptor EnsureIndex creates when the index is missing.
func (m *IndexManager) Spec() *storage.IndexSpec {
	return &storage.IndexSpec{
		Name:       m.name,
		Path:       indexPath,
		Kind:       indexKind,
		NumLists:   indexNumLists,
		Similarity: indexSimilarity,
		Dimensions: m.dimensions,
	}
}

// EnsureIndex creates the vector index if it is not yet defined. It is
// idempotent. Concurrent callers in this process share a single attempt;
// a creator in another process winning the race counts as success once
// the index is confirmed present.
func (m *IndexManager) EnsureIndex(ctx context.Context) error {
	_, err, shared := m.group.Do(m.name, func() (any, error) {
		return nil, m.ensure(ctx)
	})
	if shared {
		m.logger.Debug("joined in-flight index check", "index", m.name)
	}
	return err
}

func (m *IndexManager) ensure(ctx context.Context) error {
	existing, err := m.find(ctx)
	if err != nil {
		return err
	}
	if existing != nil {
		return m.check(existing)
	}

	spec := m.Spec()
	err = m.indexes.CreateIndex(ctx, m.collection, spec)
	switch {
	case err == nil:
		m.logger.Info("created vector index", "index", m.name, "dimensions", m.dimensions)
		return nil
	case errors.Is(err, storage.ErrIndexExists), errors.Is(err, storage.ErrTransactionFailed):
		m.logger.Debug("index created concurrently, re-listing", "index", m.name, "err", err)
		existing, lerr := m.find(ctx)
		if lerr != nil {
			return lerr
		}
		if existing == nil {
			return fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
		}
		return m.check(existing)
	default:
		m.logger.Error("failed to create vector index", "index", m.name, "err", err)
		return fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
	}
}

func (m *IndexManager) find(ctx context.Context) (*storage.IndexSpec, error) {
	specs, err := m.indexes.ListIndexes(ctx, m.collection)
	if err != nil {
		m.logger.Error("failed to list indexes", "collection", m.collection, "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
	}
	for _, spec := range specs {
		if spec.Name == m.name {
			return spec, nil
		}
	}
	return nil, nil
}

func (m *IndexManager) check(spec *storage.IndexSpec) error {
	if spec.Dimensions != m.dimensions {
		m.logger.Error("vector index has different dimensions",
			"index", m.name, "indexDimensions", spec.Dimensions, "configured", m.dimensions)
		return fmt.Errorf("%w: %w: index %q has %d, configured %d",
			core.ErrConfiguration, ErrDimensionMismatch, spec.Name, spec.Dimensions, m.dimensions)
	}
	return nil
}
