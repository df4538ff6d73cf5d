// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package recall

import (
	"context"
	"log/slog"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/ai/openai"
	"github.com/poiesic/recall/catalog"
	"github.com/poiesic/recall/chat"
	"github.com/poiesic/recall/config"
	"github.com/poiesic/recall/ingestion"
	"github.com/poiesic/recall/search"
	"github.com/poiesic/recall/storage/badger"
)

// Engine wires the document store, model provider, vector index and chat
// services into one handle.
type Engine struct {
	store        *badger.Store
	provider     ai.AIProvider
	indexes      *search.IndexManager
	searcher     *search.Engine
	catalog      *catalog.Store
	sessions     *chat.SessionStore
	orchestrator *chat.Orchestrator
	logger       *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig   *ai.Config
	provider   ai.AIProvider
	inMemory   bool
	maxResults int
	autoName   bool
	catalog    []catalog.Option
	logger     *slog.Logger
}

// WithAIConfig sets the model configuration used to build the provider.
func WithAIConfig(cfg *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider supplies a ready provider instead of building one. The
// engine takes ownership and closes it.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithInMemory keeps all data in memory. The path passed to Open is ignored.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithMaxResults sets how many catalog hits ground a chat turn.
func WithMaxResults(k int) EngineOption {
	return func(o *engineOptions) {
		o.maxResults = k
	}
}

// WithAutoName toggles naming new sessions from their first prompt.
func WithAutoName(enabled bool) EngineOption {
	return func(o *engineOptions) {
		o.autoName = enabled
	}
}

// WithCatalogOptions passes options through to the catalog store.
func WithCatalogOptions(opts ...catalog.Option) EngineOption {
	return func(o *engineOptions) {
		o.catalog = append(o.catalog, opts...)
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// Open opens or creates the store at path, connects the model provider and
// makes sure the vector index exists.
func Open(ctx context.Context, path string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig:   ai.DefaultConfig(),
		maxResults: chat.DefaultMaxResults,
		autoName:   true,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	logger := options.logger

	var store *badger.Store
	var err error
	if options.inMemory {
		store, err = badger.NewMemoryStore()
	} else {
		store, err = badger.OpenStore(path)
	}
	if err != nil {
		return nil, err
	}

	e := &Engine{store: store, provider: options.provider, logger: logger}
	if e.provider == nil {
		e.provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	if err := e.wire(ctx, options); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// OpenConfig opens an engine from a loaded service configuration.
func OpenConfig(ctx context.Context, cfg *config.Config, opts ...EngineOption) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	aiCfg, err := cfg.AIConfig()
	if err != nil {
		return nil, err
	}

	base := []EngineOption{
		WithAIConfig(aiCfg),
		WithMaxResults(cfg.Chat.MaxResults),
		WithAutoName(cfg.Chat.AutoName),
		WithCatalogOptions(
			catalog.WithPoolSize(cfg.Vectorize.PoolSize),
			catalog.WithBatchSize(cfg.Vectorize.BatchSize),
			catalog.WithReportInterval(cfg.Vectorize.ReportInterval),
		),
	}
	if cfg.Database.InMemory {
		base = append(base, WithInMemory())
	}
	return Open(ctx, cfg.Database.Path, append(base, opts...)...)
}

func (e *Engine) wire(ctx context.Context, options *engineOptions) error {
	var err error

	e.indexes, err = search.NewIndexManager(e.store.Indexes, options.aiConfig.Dimensions,
		search.WithIndexLogger(e.logger))
	if err != nil {
		return err
	}
	if err := e.indexes.EnsureIndex(ctx); err != nil {
		return err
	}

	e.searcher, err = search.NewEngine(e.store.Vectors, e.store.Indexes,
		search.WithLogger(e.logger), search.WithIndex(e.indexes.Name()))
	if err != nil {
		return err
	}

	catalogOpts := append([]catalog.Option{catalog.WithLogger(e.logger)}, options.catalog...)
	e.catalog, err = catalog.NewStore(e.store.Catalog, e.store.Vectors, e.provider.Embedder(), catalogOpts...)
	if err != nil {
		return err
	}

	e.sessions, err = chat.NewSessionStore(e.store.Sessions, e.logger)
	if err != nil {
		return err
	}

	e.orchestrator, err = chat.NewOrchestrator(e.sessions, e.provider, e.searcher,
		chat.WithLogger(e.logger),
		chat.WithMaxResults(options.maxResults),
		chat.WithAutoName(options.autoName))
	return err
}

// Close releases the worker pool, the provider and the store.
func (e *Engine) Close() error {
	if e.catalog != nil {
		e.catalog.Release()
	}
	if e.provider != nil {
		if err := e.provider.Close(); err != nil {
			e.logger.Error("error closing AI provider", "err", err)
		}
	}
	if err := e.store.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (e *Engine) Store() *badger.Store {
	return e.store
}

func (e *Engine) Provider() ai.AIProvider {
	return e.provider
}

func (e *Engine) Catalog() *catalog.Store {
	return e.catalog
}

func (e *Engine) Indexes() *search.IndexManager {
	return e.indexes
}

func (e *Engine) Searcher() *search.Engine {
	return e.searcher
}

func (e *Engine) Sessions() *chat.SessionStore {
	return e.sessions
}

func (e *Engine) Chat() *chat.Orchestrator {
	return e.orchestrator
}

// NewIngestionPipeline creates a pipeline that loads blobs from source
// into this engine's catalog.
func (e *Engine) NewIngestionPipeline(source ingestion.BlobSource, opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(source, e.catalog, append([]ingestion.Option{ingestion.WithLogger(e.logger)}, opts...)...)
}
