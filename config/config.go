package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/core"
)

// Config holds all configuration for the recall service.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Model     ModelConfig     `yaml:"model"`
	Chat      ChatConfig      `yaml:"chat"`
	Vectorize VectorizeConfig `yaml:"vectorize"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DatabaseConfig holds document store configuration.
type DatabaseConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

// ModelConfig holds embedding and completion model configuration.
type ModelConfig struct {
	Host            string  `yaml:"host"`
	APIType         string  `yaml:"api_type"`    // "openai" or "azure"
	APIVersion      string  `yaml:"api_version"` // azure only
	APIKeyEnv       string  `yaml:"api_key_env"` // environment variable holding the key
	EmbeddingModel  string  `yaml:"embedding_model"`
	CompletionModel string  `yaml:"completion_model"`
	Dimensions      int     `yaml:"dimensions"`
	MaxTokens       int     `yaml:"max_tokens"`
	Temperature     float64 `yaml:"temperature"`
	TopP            float64 `yaml:"top_p"`
	SystemPrompt    string  `yaml:"system_prompt"`
	MaxAttempts     int     `yaml:"max_attempts"`
	RetryDelay      string  `yaml:"retry_delay"`

	// APIKey is resolved from APIKeyEnv and never written to YAML.
	APIKey string `yaml:"-"`
}

// ChatConfig holds chat turn configuration.
type ChatConfig struct {
	MaxResults int  `yaml:"max_results"`
	AutoName   bool `yaml:"auto_name"`
}

// VectorizeConfig holds bulk vectorization configuration.
type VectorizeConfig struct {
	PoolSize       int `yaml:"pool_size"`
	BatchSize      int `yaml:"batch_size"`
	ReportInterval int `yaml:"report_interval"`
}

// IngestConfig holds blob source configuration. BaseURL takes precedence
// over Dir when both are set.
type IngestConfig struct {
	Dir     string `yaml:"dir"`
	BaseURL string `yaml:"base_url"`
	Blob    string `yaml:"blob"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		Database: DatabaseConfig{
			Path: "recall.db",
		},
		Model: ModelConfig{
			Host:            aiDefaults.Host,
			APIType:         string(aiDefaults.APIType),
			APIKeyEnv:       "OPENAI_API_KEY",
			EmbeddingModel:  aiDefaults.EmbeddingModel,
			CompletionModel: aiDefaults.CompletionModel,
			Dimensions:      aiDefaults.Dimensions,
			MaxTokens:       aiDefaults.Completion.MaxTokens,
			Temperature:     aiDefaults.Completion.Temperature,
			TopP:            aiDefaults.Completion.TopP,
			MaxAttempts:     aiDefaults.Retry.MaxAttempts,
			RetryDelay:      aiDefaults.Retry.BaseDelay.String(),
		},
		Chat: ChatConfig{
			MaxResults: 10,
			AutoName:   true,
		},
		Vectorize: VectorizeConfig{
			PoolSize:       4,
			BatchSize:      100,
			ReportInterval: 100,
		},
		Ingest: IngestConfig{
			Dir:  "data",
			Blob: "movies-2020s.json",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file and resolves environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("%w: parse %s: %w", core.ErrConfiguration, path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("%w: read %s: %w", core.ErrConfiguration, path, err)
		}
	}

	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// ApplyEnv resolves the model API key from the variable named by
// Model.APIKeyEnv. RECALL_DB_PATH and RECALL_MODEL_HOST override the file.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if c.Model.APIKeyEnv != "" {
		if key := getenv(c.Model.APIKeyEnv); key != "" {
			c.Model.APIKey = key
		}
	}
	if path := getenv("RECALL_DB_PATH"); path != "" {
		c.Database.Path = path
	}
	if host := getenv("RECALL_MODEL_HOST"); host != "" {
		c.Model.Host = host
	}
}

// Save writes the configuration to a YAML file. The API key is omitted.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Validate checks that every connection parameter is present.
func (c *Config) Validate() error {
	if !c.Database.InMemory && strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("%w: database.path is required", core.ErrConfiguration)
	}
	if c.Chat.MaxResults <= 0 {
		return fmt.Errorf("%w: chat.max_results must be greater than 0", core.ErrConfiguration)
	}
	if c.Vectorize.PoolSize <= 0 || c.Vectorize.BatchSize <= 0 {
		return fmt.Errorf("%w: vectorize.pool_size and vectorize.batch_size must be greater than 0", core.ErrConfiguration)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown logging.level %q", core.ErrConfiguration, c.Logging.Level)
	}
	_, err := c.AIConfig()
	return err
}

// AIConfig converts the model section into a validated ai.Config.
func (c *Config) AIConfig() (*ai.Config, error) {
	delay := ai.DefaultRetryPolicy().BaseDelay
	if c.Model.RetryDelay != "" {
		d, err := time.ParseDuration(c.Model.RetryDelay)
		if err != nil {
			return nil, fmt.Errorf("%w: model.retry_delay: %w", core.ErrConfiguration, err)
		}
		delay = d
	}

	cfg := ai.NewConfig(
		ai.WithHost(c.Model.Host),
		ai.WithEmbeddingModel(c.Model.EmbeddingModel),
		ai.WithCompletionModel(c.Model.CompletionModel),
		ai.WithDimensions(c.Model.Dimensions),
		ai.WithMaxCompletionTokens(c.Model.MaxTokens),
	)
	if c.Model.APIKey != "" {
		cfg.Token = c.Model.APIKey
	}
	cfg.APIType = ai.APIType(strings.ToLower(c.Model.APIType))
	cfg.APIVersion = c.Model.APIVersion
	cfg.Completion.Temperature = c.Model.Temperature
	cfg.Completion.TopP = c.Model.TopP
	if c.Model.SystemPrompt != "" {
		cfg.SystemPrompt = c.Model.SystemPrompt
	}
	cfg.Retry.MaxAttempts = c.Model.MaxAttempts
	cfg.Retry.BaseDelay = delay

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
