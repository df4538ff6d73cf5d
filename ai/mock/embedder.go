package mock

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/core"
)

// DefaultDimensions is the vector length produced by NewMockEmbedder.
const DefaultDimensions = 64

// MockEmbedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields.
type MockEmbedder struct {
	// EmbedFunc is called by Embed if set.
	// If nil, uses default bag-of-words behavior.
	EmbedFunc func(ctx context.Context, tag, text string) (ai.Embedding, error)

	dimensions int
	mu         sync.Mutex
	callCount  int
	tags       []string
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via GetMockEmbedder().
func NewMockEmbedder() *MockEmbedder {
	return NewMockEmbedderWithDimensions(DefaultDimensions)
}

// NewMockEmbedderWithDimensions creates a mock embedder producing vectors of dim length.
func NewMockEmbedderWithDimensions(dim int) *MockEmbedder {
	return &MockEmbedder{dimensions: dim}
}

// Dimensions returns the vector length the default behavior produces.
func (m *MockEmbedder) Dimensions() int {
	return m.dimensions
}

// Embed hashes each word of text into a bucket, so texts sharing words land
// close together under cosine similarity.
func (m *MockEmbedder) Embed(ctx context.Context, tag, text string) (ai.Embedding, error) {
	m.mu.Lock()
	m.callCount++
	m.tags = append(m.tags, tag)
	fn := m.EmbedFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, tag, text)
	}
	if err := ctx.Err(); err != nil {
		return ai.Embedding{}, err
	}
	if strings.TrimSpace(text) == "" {
		return ai.Embedding{}, fmt.Errorf("%w: %w", core.ErrInvalidArgument, core.ErrEmptyText)
	}

	words := tokenize(text)
	return ai.Embedding{
		Vector: bagOfWords(words, m.dimensions),
		Tokens: len(words),
	}, nil
}

// CallCount returns the number of times Embed was called.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Tags returns the tags passed to Embed in call order.
func (m *MockEmbedder) Tags() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tags...)
}

// Reset clears the call count and injected behavior.
func (m *MockEmbedder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.tags = nil
	m.EmbedFunc = nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// bagOfWords builds a unit vector from FNV hashes of words.
func bagOfWords(words []string, dim int) []float32 {
	vector := make([]float32, dim)
	for _, w := range words {
		h := fnv.New32a()
		h.Write([]byte(w))
		vector[h.Sum32()%uint32(dim)]++
	}

	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares > 0 {
		norm := float32(1 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= norm
		}
	}
	return vector
}
