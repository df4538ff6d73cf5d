package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/core"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
type Embedder struct {
	embedder    embeddings.Embedder
	model       string
	dimensions  int
	retry       ai.RetryPolicy
	countTokens func(model, text string) int
	logger      *slog.Logger
}

// newEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEmbedder(config *ai.Config, client *openai.LLM) (*Embedder, error) {
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}

	return &Embedder{
		embedder:    embedder,
		model:       config.EmbeddingModel,
		dimensions:  config.Dimensions,
		retry:       config.Retry,
		countTokens: llms.CountTokens,
		logger:      slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config, opts ...Option) (ai.Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	client, err := newClient(config, opts...)
	if err != nil {
		return nil, err
	}
	return newEmbedder(config, client)
}

// Embed generates a vector embedding for text.
func (e *Embedder) Embed(ctx context.Context, tag, text string) (ai.Embedding, error) {
	if strings.TrimSpace(text) == "" {
		return ai.Embedding{}, fmt.Errorf("%w: %w", core.ErrInvalidArgument, core.ErrEmptyText)
	}

	e.logger.Debug("generating embedding", "tag", tag, "length", len(text))

	var vector []float32
	err := e.retry.Do(ctx, func() error {
		v, err := e.embedder.EmbedQuery(ctx, text)
		if err != nil {
			return err
		}
		vector = v
		return nil
	})
	if err != nil {
		e.logger.Error("failed to generate embedding", "tag", tag, "err", err)
		return ai.Embedding{}, fmt.Errorf("%w: %w", core.ErrModelUnavailable, err)
	}

	if len(vector) == 0 {
		e.logger.Error("embedder returned empty vector", "tag", tag)
		return ai.Embedding{}, fmt.Errorf("%w: %w", core.ErrModelUnavailable, ai.ErrEmptyResponse)
	}
	if e.dimensions > 0 && len(vector) != e.dimensions {
		e.logger.Error("embedding has wrong dimensions", "tag", tag, "expected", e.dimensions, "actual", len(vector))
		return ai.Embedding{}, fmt.Errorf("%w: %w: expected %d, got %d",
			core.ErrModelUnavailable, ai.ErrDimensionMismatch, e.dimensions, len(vector))
	}

	return ai.Embedding{
		Vector: vector,
		Tokens: e.countTokens(e.model, text),
	}, nil
}
