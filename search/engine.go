package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// DefaultMaxResults is the number of hits returned when k is not positive.
const DefaultMaxResults = 10

// Engine answers nearest-neighbour queries over the vector collection.
type Engine struct {
	vectors    storage.VectorRepository
	indexes    storage.IndexRepository
	indexName  string
	maxResults int
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithMaxResults sets the hit count used when Search is called with k <= 0.
func WithMaxResults(n int) Option {
	return func(e *Engine) error {
		if n <= 0 {
			return fmt.Errorf("%w: max results must be greater than 0", core.ErrConfiguration)
		}
		e.maxResults = n
		return nil
	}
}

// WithIndex names the index the engine requires. Default is DefaultIndexName.
func WithIndex(name string) Option {
	return func(e *Engine) error {
		if name == "" {
			return fmt.Errorf("%w: index name cannot be empty", core.ErrConfiguration)
		}
		e.indexName = name
		return nil
	}
}

// NewEngine creates a new search engine.
func NewEngine(vectors storage.VectorRepository, indexes storage.IndexRepository, opts ...Option) (*Engine, error) {
	if vectors == nil {
		return nil, ErrVectorRepositoryRequired
	}
	if indexes == nil {
		return nil, ErrIndexRepositoryRequired
	}

	e := &Engine{
		vectors:    vectors,
		indexes:    indexes,
		indexName:  DefaultIndexName,
		maxResults: DefaultMaxResults,
		logger:     slog.Default().With("component", "search"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Search returns the k vector records most similar to query, most similar
// first. k <= 0 selects the configured default.
func (e *Engine) Search(ctx context.Context, query []float32, k int) (Hits, error) {
	return e.SearchWithMonitor(ctx, query, k, nil)
}

// SearchWithMonitor is Search with callbacks at each stage.
func (e *Engine) SearchWithMonitor(ctx context.Context, query []float32, k int, monitor SearchMonitor) (Hits, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if k <= 0 {
		k = e.maxResults
	}
	monitor.Start(len(query), k)

	spec, err := e.indexes.GetIndex(ctx, storage.CollectionVectors, e.indexName)
	if err != nil {
		e.logger.Error("vector index unavailable", "index", e.indexName, "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrSearchUnavailable, err)
	}
	monitor.AfterIndexLookup(spec)

	if len(query) == 0 || len(query) != spec.Dimensions {
		return nil, fmt.Errorf("%w: %w: query has %d, index has %d",
			core.ErrInvalidArgument, ErrDimensionMismatch, len(query), spec.Dimensions)
	}

	matches, err := e.vectors.FindNearest(ctx, query, k)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		e.logger.Error("nearest neighbour query failed", "k", k, "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrSearchUnavailable, err)
	}

	hits := make(Hits, 0, len(matches))
	for _, match := range matches {
		hit := Hit{
			ID:      match.Record.ID,
			Score:   match.Score,
			Payload: match.Record.Payload,
		}
		monitor.Hit(hit)
		hits = append(hits, hit)
	}

	e.logger.Debug("search complete", "k", k, "hits", len(hits))
	monitor.Finish(hits)
	return hits, nil
}
