package ai

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/recall/core"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	assert.Equal(t, APITypeOpenAI, cfg.APIType)
	assert.Equal(t, "text-embedding-ada-002", cfg.EmbeddingModel)
	assert.Equal(t, "gpt-35-turbo", cfg.CompletionModel)
	assert.Equal(t, 1536, cfg.Dimensions)
	assert.Equal(t, 500, cfg.Completion.MaxTokens)
	assert.Equal(t, 0.5, cfg.Completion.Temperature)
	assert.Equal(t, 0.95, cfg.Completion.TopP)
	assert.Equal(t, 200, cfg.Summary.MaxTokens)
	assert.Equal(t, 0.0, cfg.Summary.Temperature)
	assert.Equal(t, DefaultSystemPrompt, cfg.SystemPrompt)
	assert.Equal(t, DefaultSummarizePrompt, cfg.SummarizePrompt)
	assert.Equal(t, 10, cfg.Retry.MaxAttempts)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with multiple options", func(t *testing.T) {
		policy := RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond}
		cfg := NewConfig(
			WithHost("http://custom:8080/v1"),
			WithToken("secret"),
			WithEmbeddingModel("nomic-embed-text"),
			WithCompletionModel("qwen2.5:3b"),
			WithDimensions(768),
			WithSystemPrompt("system"),
			WithSummarizePrompt("label"),
			WithMaxCompletionTokens(64),
			WithRetry(policy),
		)

		assert.Equal(t, "http://custom:8080/v1", cfg.Host)
		assert.Equal(t, "secret", cfg.Token)
		assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
		assert.Equal(t, "qwen2.5:3b", cfg.CompletionModel)
		assert.Equal(t, 768, cfg.Dimensions)
		assert.Equal(t, "system", cfg.SystemPrompt)
		assert.Equal(t, "label", cfg.SummarizePrompt)
		assert.Equal(t, 64, cfg.Completion.MaxTokens)
		assert.Equal(t, policy, cfg.Retry)
	})

	t.Run("with azure", func(t *testing.T) {
		cfg := NewConfig(WithAzure("2024-02-01"))
		assert.Equal(t, APITypeAzure, cfg.APIType)
		assert.Equal(t, "2024-02-01", cfg.APIVersion)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name     string
		apiType  APIType
		host     string
		expected string
	}{
		{"already has /v1", APITypeOpenAI, "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"missing /v1", APITypeOpenAI, "http://localhost:11434", "http://localhost:11434/v1"},
		{"has trailing slash", APITypeOpenAI, "http://localhost:11434/", "http://localhost:11434/v1"},
		{"empty host", APITypeOpenAI, "", ""},
		{"azure left alone", APITypeAzure, "https://acme.openai.azure.com/", "https://acme.openai.azure.com"},
		{"empty type defaults to openai", "", "http://embed:8080", "http://embed:8080/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Host: tt.host, APIType: tt.apiType}
			cfg.Normalize()
			assert.Equal(t, tt.expected, cfg.Host)
			assert.NotEmpty(t, cfg.APIType)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing host", func(c *Config) { c.Host = "" }, "Host"},
		{"unknown api type", func(c *Config) { c.APIType = "bedrock" }, "APIType"},
		{"azure without version", func(c *Config) { c.APIType = APITypeAzure }, "APIVersion"},
		{"missing embedding model", func(c *Config) { c.EmbeddingModel = "" }, "EmbeddingModel"},
		{"missing completion model", func(c *Config) { c.CompletionModel = "" }, "CompletionModel"},
		{"zero dimensions", func(c *Config) { c.Dimensions = 0 }, "Dimensions"},
		{"zero max tokens", func(c *Config) { c.Summary.MaxTokens = 0 }, "MaxTokens"},
		{"bad retry", func(c *Config) { c.Retry.MaxAttempts = 0 }, "maxAttempts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrConfiguration))
			assert.Contains(t, err.Error(), tt.field)
		})
	}

	t.Run("normalizes valid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Host = "http://localhost:11434"
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	})

	t.Run("azure with version", func(t *testing.T) {
		cfg := NewConfig(WithHost("https://acme.openai.azure.com"), WithAzure("2024-02-01"))
		require.NoError(t, cfg.Validate())
	})
}
