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


package ai

import (
	"fmt"
	"strings"

	"github.com/poiesic/recall/core"
)

// APIType selects the wire dialect of the model endpoint.
type APIType string

const (
	// APITypeOpenAI is the plain OpenAI-compatible API (OpenAI, Ollama, vLLM, LocalAI).
	APITypeOpenAI APIType = "openai"
	// APITypeAzure is Azure OpenAI, where models are addressed as deployments.
	APITypeAzure APIType = "azure"
)

// Sampling holds the generation parameters for one kind of completion.
type Sampling struct {
	MaxTokens        int
	Temperature      float64
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
}

// Config holds configuration for AI service providers.
type Config struct {
	// Host is the base URL of the model API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	Host string

	// Token authenticates against the API. Local servers accept any value.
	Token string

	// APIType selects OpenAI or Azure request addressing.
	APIType APIType

	// APIVersion is required by Azure and ignored otherwise.
	APIVersion string

	// EmbeddingModel is the model (or Azure deployment) used for embeddings.
	// Example: "text-embedding-ada-002", "nomic-embed-text"
	EmbeddingModel string

	// CompletionModel is the model (or Azure deployment) used for chat.
	// Example: "gpt-35-turbo", "qwen2.5:3b"
	CompletionModel string

	// Dimensions is the expected embedding length. Every vector the embedder
	// returns and every vector index is checked against it.
	Dimensions int

	// SystemPrompt precedes the grounding documents in every completion.
	SystemPrompt string

	// SummarizePrompt instructs the model to produce a short session label.
	SummarizePrompt string

	// Completion is the sampling used to answer user prompts.
	Completion Sampling

	// Summary is the sampling used to label sessions.
	Summary Sampling

	// Retry bounds every remote model call.
	Retry RetryPolicy
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the model API host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithToken sets the API token.
func WithToken(token string) ConfigOption {
	return func(c *Config) {
		c.Token = token
	}
}

// WithAzure switches request addressing to Azure OpenAI deployments.
func WithAzure(apiVersion string) ConfigOption {
	return func(c *Config) {
		c.APIType = APITypeAzure
		c.APIVersion = apiVersion
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithCompletionModel sets the completion model identifier.
func WithCompletionModel(model string) ConfigOption {
	return func(c *Config) {
		c.CompletionModel = model
	}
}

// WithDimensions sets the expected embedding length.
func WithDimensions(dimensions int) ConfigOption {
	return func(c *Config) {
		c.Dimensions = dimensions
	}
}

// WithSystemPrompt overrides the grounding system prompt.
func WithSystemPrompt(prompt string) ConfigOption {
	return func(c *Config) {
		c.SystemPrompt = prompt
	}
}

// WithSummarizePrompt overrides the session labelling prompt.
func WithSummarizePrompt(prompt string) ConfigOption {
	return func(c *Config) {
		c.SummarizePrompt = prompt
	}
}

// WithMaxCompletionTokens caps the length of answers.
func WithMaxCompletionTokens(tokens int) ConfigOption {
	return func(c *Config) {
		c.Completion.MaxTokens = tokens
	}
}

// WithRetry replaces the retry policy for model calls.
func WithRetry(policy RetryPolicy) ConfigOption {
	return func(c *Config) {
		c.Retry = policy
	}
}

// DefaultConfig returns a Config with sensible defaults for a local
// OpenAI-compatible service.
func DefaultConfig() *Config {
	return &Config{
		Host:            "http://localhost:11434/v1",
		Token:           "none",
		APIType:         APITypeOpenAI,
		EmbeddingModel:  "text-embedding-ada-002",
		CompletionModel: "gpt-35-turbo",
		Dimensions:      1536,
		SystemPrompt:    DefaultSystemPrompt,
		SummarizePrompt: DefaultSummarizePrompt,
		Completion: Sampling{
			MaxTokens:   500,
			Temperature: 0.5,
			TopP:        0.95,
		},
		Summary: Sampling{
			MaxTokens:   200,
			Temperature: 0.0,
			TopP:        1.0,
		},
		Retry: DefaultRetryPolicy(),
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434/v1"),
//	    WithEmbeddingModel("nomic-embed-text"),
//	    WithDimensions(768),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// OpenAI-compatible hosts get a /v1 suffix; Azure endpoints are left as
// given because the client builds deployment paths itself.
func (c *Config) Normalize() {
	if c.APIType == "" {
		c.APIType = APITypeOpenAI
	}
	c.Host = strings.TrimSuffix(c.Host, "/")
	if c.APIType == APITypeOpenAI && c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = c.Host + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Host == "" {
		return fmt.Errorf("%w: ai config: Host is required", core.ErrConfiguration)
	}
	if c.APIType != APITypeOpenAI && c.APIType != APITypeAzure {
		return fmt.Errorf("%w: ai config: unknown APIType %q", core.ErrConfiguration, c.APIType)
	}
	if c.APIType == APITypeAzure && c.APIVersion == "" {
		return fmt.Errorf("%w: ai config: APIVersion is required for azure", core.ErrConfiguration)
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("%w: ai config: EmbeddingModel is required", core.ErrConfiguration)
	}
	if c.CompletionModel == "" {
		return fmt.Errorf("%w: ai config: CompletionModel is required", core.ErrConfiguration)
	}
	if c.Dimensions <= 0 {
		return fmt.Errorf("%w: ai config: Dimensions must be greater than 0", core.ErrConfiguration)
	}
	if c.Completion.MaxTokens <= 0 || c.Summary.MaxTokens <= 0 {
		return fmt.Errorf("%w: ai config: MaxTokens must be greater than 0", core.ErrConfiguration)
	}
	if err := c.Retry.Validate(); err != nil {
		return fmt.Errorf("%w: ai config: %w", core.ErrConfiguration, err)
	}
	return nil
}
