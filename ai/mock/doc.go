// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Completer,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), mock.NewMockCompleter())
//	emb, err := provider.Embedder().Embed(ctx, "catalog", "test")
//
//	// Custom behavior injection
//	provider.GetMockEmbedder().EmbedFunc = func(ctx context.Context, tag, text string) (ai.Embedding, error) {
//	    return ai.Embedding{}, core.ErrModelUnavailable
//	}
//
//	// Check call counts
//	count := provider.GetMockEmbedder().CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: bag-of-words vectors, so texts sharing words score as similar
//   - MockCompleter: answers with the first grounding document and labels
//     sessions with the first two words of the prompt
//   - MockProvider: aggregates mock embedder and completer
//
// All mocks are safe for concurrent use.
package mock
