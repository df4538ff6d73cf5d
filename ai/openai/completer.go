package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/llms"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/core"
)

// Completer implements ai.Completer using OpenAI-compatible chat APIs.
type Completer struct {
	client          llms.Model
	model           string
	systemPrompt    string
	summarizePrompt string
	completion      ai.Sampling
	summary         ai.Sampling
	retry           ai.RetryPolicy
	countTokens     func(model, text string) int
	logger          *slog.Logger
}

func newCompleter(config *ai.Config, client llms.Model) *Completer {
	return &Completer{
		client:          client,
		model:           config.CompletionModel,
		systemPrompt:    config.SystemPrompt,
		summarizePrompt: config.SummarizePrompt,
		completion:      config.Completion,
		summary:         config.Summary,
		retry:           config.Retry,
		countTokens:     llms.CountTokens,
		logger:          slog.Default().With("component", "openai-completer"),
	}
}

// NewCompleter creates a new completer using the provided configuration.
//
// Returns ai.Completer interface to enforce abstraction.
func NewCompleter(config *ai.Config, opts ...Option) (ai.Completer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	client, err := newClient(config, opts...)
	if err != nil {
		return nil, err
	}
	return newCompleter(config, client), nil
}

// Complete answers prompt with the system prompt followed by documents as
// the system message.
func (c *Completer) Complete(ctx context.Context, tag, prompt, documents string) (ai.Completion, error) {
	if prompt == "" {
		return ai.Completion{}, fmt.Errorf("%w: %w", core.ErrInvalidArgument, core.ErrEmptyText)
	}

	system := c.systemPrompt + documents
	choice, err := c.generate(ctx, tag, system, prompt, c.completion)
	if err != nil {
		return ai.Completion{}, err
	}

	result := ai.Completion{
		Text:             choice.Content,
		PromptTokens:     intInfo(choice.GenerationInfo, "PromptTokens"),
		CompletionTokens: intInfo(choice.GenerationInfo, "CompletionTokens"),
	}
	// Some compatible servers omit usage; fall back to local counting.
	if result.PromptTokens == 0 {
		result.PromptTokens = c.countTokens(c.model, system+prompt)
	}
	if result.CompletionTokens == 0 {
		result.CompletionTokens = c.countTokens(c.model, choice.Content)
	}

	c.logger.Debug("completion generated", "tag", tag,
		"promptTokens", result.PromptTokens, "completionTokens", result.CompletionTokens)
	return result, nil
}

// Summarize returns a short label for text, sanitized with ai.SanitizeLabel.
func (c *Completer) Summarize(ctx context.Context, tag, text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("%w: %w", core.ErrInvalidArgument, core.ErrEmptyText)
	}

	choice, err := c.generate(ctx, tag, c.summarizePrompt, text, c.summary)
	if err != nil {
		return "", err
	}
	return ai.SanitizeLabel(choice.Content), nil
}

func (c *Completer) generate(ctx context.Context, tag, system, human string, sampling ai.Sampling) (*llms.ContentChoice, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, human),
	}
	callOpts := []llms.CallOption{
		llms.WithMaxTokens(sampling.MaxTokens),
		llms.WithTemperature(sampling.Temperature),
		llms.WithTopP(sampling.TopP),
		llms.WithFrequencyPenalty(sampling.FrequencyPenalty),
		llms.WithPresencePenalty(sampling.PresencePenalty),
	}

	var response *llms.ContentResponse
	err := c.retry.Do(ctx, func() error {
		r, err := c.client.GenerateContent(ctx, content, callOpts...)
		if err != nil {
			return err
		}
		if len(r.Choices) < 1 {
			return ai.ErrEmptyResponse
		}
		response = r
		return nil
	})
	if err != nil {
		c.logger.Error("failed to generate content", "tag", tag, "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrModelUnavailable, err)
	}
	return response.Choices[0], nil
}

// intInfo reads an integer entry from langchaingo generation info.
func intInfo(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
