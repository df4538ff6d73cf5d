package ai

import "context"

// Embedder turns text into a vector for similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// Embed returns the vector for text along with the number of tokens the
	// model consumed. tag attributes usage to a caller such as a session id.
	// Empty text is rejected without a remote call.
	Embed(ctx context.Context, tag, text string) (Embedding, error)
}

// Completer produces grounded answers and short conversation labels.
// Implementations must be thread-safe for concurrent use.
type Completer interface {
	// Complete answers prompt using documents as the only source of truth.
	Complete(ctx context.Context, tag, prompt, documents string) (Completion, error)

	// Summarize returns a short label for text with punctuation removed.
	Summarize(ctx context.Context, tag, text string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// Embedder and Completer share configuration and the underlying client.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Completer returns the chat completion service.
	Completer() Completer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
