package chat

import "errors"

var (
	// ErrSessionRepositoryRequired is returned when a session repository is not provided.
	ErrSessionRepositoryRequired = errors.New("session repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrSearcherRequired is returned when a search engine is not provided.
	ErrSearcherRequired = errors.New("searcher required")

	// ErrEmptyPrompt is returned when a turn is requested with a blank prompt.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
)
