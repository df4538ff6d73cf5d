package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/poiesic/recall/ai"
)

// CompleteCall records one Complete invocation.
type CompleteCall struct {
	Tag       string
	Prompt    string
	Documents string
}

// MockCompleter is a test double for ai.Completer.
// By default it echoes the first grounding document line and counts words
// as tokens.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	CompleteFunc func(ctx context.Context, tag, prompt, documents string) (ai.Completion, error)

	// SummarizeFunc is called by Summarize if set. Its result is still
	// sanitized, like a real completer.
	SummarizeFunc func(ctx context.Context, tag, text string) (string, error)

	mu             sync.Mutex
	completeCalls  []CompleteCall
	summarizeCalls int
}

// NewMockCompleter creates a mock completer with default behavior.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// Complete returns a deterministic answer built from prompt and documents.
func (m *MockCompleter) Complete(ctx context.Context, tag, prompt, documents string) (ai.Completion, error) {
	m.mu.Lock()
	m.completeCalls = append(m.completeCalls, CompleteCall{Tag: tag, Prompt: prompt, Documents: documents})
	fn := m.CompleteFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, tag, prompt, documents)
	}
	if err := ctx.Err(); err != nil {
		return ai.Completion{}, err
	}

	answer := "I don't know."
	if first, _, _ := strings.Cut(documents, "\n"); first != "" {
		answer = "Based on the catalog: " + first
	}
	return ai.Completion{
		Text:             answer,
		PromptTokens:     len(strings.Fields(prompt)) + len(strings.Fields(documents)),
		CompletionTokens: len(strings.Fields(answer)),
	}, nil
}

// Summarize returns the first two words of text as a sanitized label.
func (m *MockCompleter) Summarize(ctx context.Context, tag, text string) (string, error) {
	m.mu.Lock()
	m.summarizeCalls++
	fn := m.SummarizeFunc
	m.mu.Unlock()

	if fn != nil {
		label, err := fn(ctx, tag, text)
		if err != nil {
			return "", err
		}
		return ai.SanitizeLabel(label), nil
	}

	words := strings.Fields(text)
	if len(words) > 2 {
		words = words[:2]
	}
	return ai.SanitizeLabel(strings.Join(words, " ")), nil
}

// CompleteCalls returns every recorded Complete invocation.
func (m *MockCompleter) CompleteCalls() []CompleteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CompleteCall(nil), m.completeCalls...)
}

// SummarizeCount returns the number of times Summarize was called.
func (m *MockCompleter) SummarizeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summarizeCalls
}

// Reset clears recorded calls and injected behavior.
func (m *MockCompleter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completeCalls = nil
	m.summarizeCalls = 0
	m.CompleteFunc = nil
	m.SummarizeFunc = nil
}
