package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/search"
)

// DefaultMaxResults is the number of catalog documents that ground a turn.
const DefaultMaxResults = 10

// Searcher finds the catalog records nearest a query vector.
type Searcher interface {
	Search(ctx context.Context, query []float32, k int) (search.Hits, error)
}

// TurnResult is the outcome of one committed chat turn.
type TurnResult struct {
	Session    *core.Session `json:"session"`
	Prompt     *core.Message `json:"prompt"`
	Completion *core.Message `json:"completion"`
	Grounding  string        `json:"grounding"`
	Hits       search.Hits   `json:"hits"`
}

// Orchestrator runs retrieval-augmented chat turns against a session store.
type Orchestrator struct {
	sessions   *SessionStore
	embedder   ai.Embedder
	completer  ai.Completer
	searcher   Searcher
	maxResults int
	autoName   bool
	locks      *sessionLocks
	logger     *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithLogger sets the logger. A nil logger selects slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger.With("component", "chat")
		return nil
	}
}

// WithMaxResults sets how many hits ground each completion.
func WithMaxResults(k int) Option {
	return func(o *Orchestrator) error {
		if k <= 0 {
			return fmt.Errorf("%w: max results must be greater than 0", core.ErrInvalidArgument)
		}
		o.maxResults = k
		return nil
	}
}

// WithAutoName toggles naming a new session from its first prompt.
func WithAutoName(enabled bool) Option {
	return func(o *Orchestrator) error {
		o.autoName = enabled
		return nil
	}
}

// NewOrchestrator creates an orchestrator. Auto-naming is on by default.
func NewOrchestrator(sessions *SessionStore, provider ai.AIProvider, searcher Searcher, opts ...Option) (*Orchestrator, error) {
	if sessions == nil {
		return nil, ErrSessionRepositoryRequired
	}
	if provider == nil || provider.Embedder() == nil || provider.Completer() == nil {
		return nil, ErrAIProviderRequired
	}
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	o := &Orchestrator{
		sessions:   sessions,
		embedder:   provider.Embedder(),
		completer:  provider.Completer(),
		searcher:   searcher,
		maxResults: DefaultMaxResults,
		autoName:   true,
		locks:      newSessionLocks(),
		logger:     slog.Default().With("component", "chat"),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Sessions returns the underlying session store.
func (o *Orchestrator) Sessions() *SessionStore {
	return o.sessions
}

// Turn answers prompt within the session and commits the exchange. Turns on
// the same session run one at a time. On any error nothing is written.
func (o *Orchestrator) Turn(ctx context.Context, sessionID core.ID, prompt string) (*TurnResult, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidArgument, core.ErrEmptyID)
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidArgument, ErrEmptyPrompt)
	}

	unlock := o.locks.lock(sessionID)
	defer unlock()

	logger := o.logger.With("session", sessionID)

	session, err := o.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	tag := sessionID.String()
	embedding, err := o.embedder.Embed(ctx, tag, prompt)
	if err != nil {
		logger.Error("failed to embed prompt", "err", err)
		return nil, err
	}

	hits, err := o.searcher.Search(ctx, embedding.Vector, o.maxResults)
	if err != nil {
		logger.Error("failed to search catalog", "err", err)
		return nil, err
	}
	grounding := hits.Grounding()

	completion, err := o.completer.Complete(ctx, tag, prompt, grounding)
	if err != nil {
		logger.Error("failed to complete prompt", "err", err)
		return nil, err
	}

	updated := *session
	if session.State() == core.SessionNew && o.autoName {
		name, err := o.completer.Summarize(ctx, tag, prompt)
		if err != nil {
			logger.Error("failed to summarize prompt", "err", err)
			return nil, err
		}
		if name != "" {
			updated.Name = name
		}
	}

	promptAt := time.Now().UTC()
	completionAt := promptAt.Add(time.Microsecond)
	updated.Tokens += completion.TotalTokens()
	updated.CompletionTokens += completion.CompletionTokens
	updated.Turns++
	updated.UpdatedAt = completionAt

	turn := &core.Turn{
		Session: &updated,
		Prompt: &core.Message{
			ID:        core.ID(uuid.NewString()),
			SessionID: sessionID,
			Type:      core.DocumentTypeMessage,
			Role:      core.RoleUser,
			Text:      prompt,
			Tokens:    completion.PromptTokens,
			Timestamp: promptAt,
		},
		Completion: &core.Message{
			ID:        core.ID(uuid.NewString()),
			SessionID: sessionID,
			Type:      core.DocumentTypeMessage,
			Role:      core.RoleAssistant,
			Text:      completion.Text,
			Tokens:    completion.CompletionTokens,
			Timestamp: completionAt,
		},
	}

	if err := o.sessions.CommitTurn(ctx, turn); err != nil {
		logger.Error("failed to commit turn", "err", err)
		return nil, err
	}

	logger.Info("turn committed",
		"hits", len(hits),
		"prompt_tokens", completion.PromptTokens,
		"completion_tokens", completion.CompletionTokens,
		"turns", updated.Turns)

	return &TurnResult{
		Session:    turn.Session,
		Prompt:     turn.Prompt,
		Completion: turn.Completion,
		Grounding:  grounding,
		Hits:       hits,
	}, nil
}
