package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/recall/catalog"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// DefaultBlobName is the blob imported when Run is given no name.
const DefaultBlobName = "movies-2020s.json"

// Catalog is the part of catalog.Store the pipeline drives.
type Catalog interface {
	ImportBulk(ctx context.Context, collection storage.Collection, raw []byte) (catalog.ImportResult, error)
	VectorizeAll(ctx context.Context) (int, error)
}

// Report summarizes a pipeline run.
type Report struct {
	Blobs      []string `json:"blobs"`
	Imported   int      `json:"imported"`
	Duplicates int      `json:"duplicates"`
	Rejected   int      `json:"rejected"`
	Vectorized int      `json:"vectorized"`
}

// Pipeline stages blobs, imports them into the catalog and vectorizes the result.
type Pipeline struct {
	source     BlobSource
	catalog    Catalog
	collection storage.Collection
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithCollection sets the collection blobs are imported into.
// Default is storage.CollectionCatalog.
func WithCollection(collection storage.Collection) Option {
	return func(p *Pipeline) error {
		if collection == "" {
			return fmt.Errorf("%w: collection cannot be empty", core.ErrConfiguration)
		}
		p.collection = collection
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(source BlobSource, catalog Catalog, opts ...Option) (*Pipeline, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}
	if catalog == nil {
		return nil, ErrCatalogRequired
	}

	p := &Pipeline{
		source:     source,
		catalog:    catalog,
		collection: storage.CollectionCatalog,
		logger:     slog.Default().With("component", "ingestion"),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Run stages, imports and vectorizes. An empty name selects DefaultBlobName.
// The report reflects every stage that completed, even when a later one fails.
func (p *Pipeline) Run(ctx context.Context, name string) (Report, error) {
	var report Report
	if name == "" {
		name = DefaultBlobName
	}

	blobs, err := p.Stage(ctx, name)
	if err != nil {
		return report, err
	}
	for _, blob := range blobs {
		report.Blobs = append(report.Blobs, blob.Name)
	}

	result, err := p.Import(ctx, blobs)
	report.Imported = result.Imported
	report.Duplicates = len(result.Duplicates)
	report.Rejected = len(result.Rejected)
	if err != nil {
		return report, err
	}

	report.Vectorized, err = p.Vectorize(ctx)
	if err != nil {
		return report, err
	}

	p.logger.Info("ingestion complete", "blobs", len(report.Blobs), "imported", report.Imported,
		"duplicates", report.Duplicates, "rejected", report.Rejected, "vectorized", report.Vectorized)
	return report, nil
}

// Stage reads every blob selected by name.
func (p *Pipeline) Stage(ctx context.Context, name string) ([]Blob, error) {
	blobs, err := p.source.Fetch(ctx, name)
	if err != nil {
		p.logger.Error("failed to stage blobs", "blob", name, "err", err)
		return nil, err
	}
	p.logger.Info("staged blobs", "blob", name, "count", len(blobs))
	return blobs, nil
}

// Import bulk-inserts each blob into the catalog, stopping at the first
// blob that fails outright. Duplicates and rejected documents do not fail
// a blob.
func (p *Pipeline) Import(ctx context.Context, blobs []Blob) (catalog.ImportResult, error) {
	var total catalog.ImportResult
	for _, blob := range blobs {
		result, err := p.catalog.ImportBulk(ctx, p.collection, blob.Data)
		total.Add(result)
		if err != nil {
			p.logger.Error("failed to import blob", "blob", blob.Name, "err", err)
			return total, fmt.Errorf("importing %s: %w", blob.Name, err)
		}
		p.logger.Info("imported blob", "blob", blob.Name, "imported", result.Imported,
			"duplicates", len(result.Duplicates), "rejected", len(result.Rejected))
	}
	return total, nil
}

// Vectorize embeds every catalog item whose vector is missing or stale.
func (p *Pipeline) Vectorize(ctx context.Context) (int, error) {
	n, err := p.catalog.VectorizeAll(ctx)
	if err != nil {
		p.logger.Error("vectorization failed", "vectorized", n, "err", err)
		return n, err
	}
	return n, nil
}
