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


package openai

import (
	"log/slog"
	"net/http"

	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/recall/ai"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
// Embedder and Completer share one langchaingo client.
type Provider struct {
	config    *ai.Config
	embedder  *Embedder
	completer *Completer
	logger    *slog.Logger
}

// Option customizes the underlying client.
type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient sets the HTTP client used for every model request.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config, opts ...Option) (ai.AIProvider, error) {
	return newProvider(config, opts...)
}

func newProvider(config *ai.Config, opts ...Option) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := newClient(config, opts...)
	if err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config, client)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:    config,
		embedder:  embedder,
		completer: newCompleter(config, client),
		logger:    slog.Default().With("component", "openai-provider"),
	}, nil
}

// newClient builds the langchaingo client for the configured dialect.
// Azure addresses models as deployments under an API version.
func newClient(config *ai.Config, opts ...Option) (*openai.LLM, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	// Local servers ignore the token but the client refuses an empty one.
	token := config.Token
	if token == "" {
		token = "none"
	}

	clientOpts := []openai.Option{
		openai.WithBaseURL(config.Host),
		openai.WithToken(token),
		openai.WithModel(config.CompletionModel),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	}
	if config.APIType == ai.APITypeAzure {
		clientOpts = append(clientOpts,
			openai.WithAPIType(openai.APITypeAzure),
			openai.WithAPIVersion(config.APIVersion),
		)
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, openai.WithHTTPClient(o.httpClient))
	}
	return openai.New(clientOpts...)
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Completer returns the chat completion service.
func (p *Provider) Completer() ai.Completer {
	return p.completer
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
