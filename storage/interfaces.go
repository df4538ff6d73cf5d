package storage

import (
	"context"
	"time"

	"github.com/poiesic/recall/core"
)

// Collection names a logical group of documents in the store.
type Collection string

const (
	// CollectionCatalog holds the base catalog records.
	CollectionCatalog Collection = "movies"
	// CollectionVectors holds one vector record per catalog item.
	CollectionVectors Collection = "vectors"
	// CollectionCompletions holds sessions and messages, told apart by type.
	CollectionCompletions Collection = "completions"
)

// IndexSpec describes a vector index over a collection.
type IndexSpec struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Kind       string    `json:"kind"`
	NumLists   int       `json:"num_lists"`
	Similarity string    `json:"similarity"`
	Dimensions int       `json:"dimensions"`
	CreatedAt  time.Time `json:"created_at"`
}

// VectorMatch is a vector record with its similarity to a query vector.
type VectorMatch struct {
	Record *core.VectorRecord
	Score  float32
}

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction. Repository
	// calls made with the ctx passed to fn join the transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close releases resources held by the repository.
	Close() error
}

// CatalogRepository manages base catalog records.
type CatalogRepository interface {
	Repository

	// PutItem replaces or inserts an item by ID. The stored record never
	// carries a vector; vectors live in the vector collection.
	PutItem(ctx context.Context, item *core.Item) error

	// InsertItems inserts items whose IDs are not yet present. IDs already
	// present are returned as duplicates and left untouched.
	InsertItems(ctx context.Context, items ...*core.Item) (inserted, duplicates []core.ID, err error)

	// GetItem retrieves an item by ID.
	// Returns ErrNotFound if the item doesn't exist.
	GetItem(ctx context.Context, id core.ID) (*core.Item, error)

	// DeleteItem removes the item and its vector record in one transaction.
	// Reports whether anything was removed; a missing item is not an error.
	DeleteItem(ctx context.Context, id core.ID) (bool, error)

	// PutItemVector writes the vector record for an existing item. The base
	// record is read in the same transaction and must still hash to
	// record.SourceHash; otherwise nothing is written and the error wraps
	// ErrStaleRecord. A concurrent write to the base record that commits
	// first also fails with ErrStaleRecord.
	PutItemVector(ctx context.Context, record *core.VectorRecord) error

	// ScanItems returns up to limit items with IDs strictly greater than
	// after, in ID order. An empty after starts from the beginning.
	ScanItems(ctx context.Context, after core.ID, limit int) ([]*core.Item, error)

	// CountItems returns the number of stored items.
	CountItems(ctx context.Context) (int, error)
}

// VectorRepository manages vector records and nearest-neighbour lookups.
type VectorRepository interface {
	Repository

	// PutVector replaces or inserts a vector record by ID.
	PutVector(ctx context.Context, record *core.VectorRecord) error

	// GetVector retrieves a vector record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetVector(ctx context.Context, id core.ID) (*core.VectorRecord, error)

	// DeleteVector removes a vector record. A missing record is not an error.
	DeleteVector(ctx context.Context, id core.ID) error

	// FindNearest returns the k records most similar to query by cosine
	// similarity, highest score first.
	FindNearest(ctx context.Context, query []float32, k int) ([]*VectorMatch, error)

	// ListVectorIDs returns the IDs of all vector records in ID order.
	ListVectorIDs(ctx context.Context) ([]core.ID, error)

	// CountVectors returns the number of stored vector records.
	CountVectors(ctx context.Context) (int, error)
}

// IndexRepository manages index descriptors per collection.
type IndexRepository interface {
	// ListIndexes returns every index defined on the collection.
	ListIndexes(ctx context.Context, collection Collection) ([]*IndexSpec, error)

	// GetIndex returns the named index.
	// Returns ErrIndexNotFound if it is not defined.
	GetIndex(ctx context.Context, collection Collection, name string) (*IndexSpec, error)

	// CreateIndex defines a new index.
	// Returns ErrIndexExists if an index with the same name is already defined.
	CreateIndex(ctx context.Context, collection Collection, spec *IndexSpec) error
}

// SessionRepository manages sessions and their messages.
type SessionRepository interface {
	Repository

	// CreateSession inserts a new session.
	// Returns ErrDuplicateKey if the ID is taken.
	CreateSession(ctx context.Context, session *core.Session) error

	// GetSession retrieves a session by ID.
	// Returns ErrNotFound if the session doesn't exist.
	GetSession(ctx context.Context, id core.ID) (*core.Session, error)

	// ListSessions returns all sessions, most recently updated first.
	ListSessions(ctx context.Context) ([]*core.Session, error)

	// UpdateSession replaces an existing session.
	// Returns ErrNotFound if the session doesn't exist.
	UpdateSession(ctx context.Context, session *core.Session) error

	// CreateMessage inserts a message.
	// Returns ErrDuplicateKey if the ID is taken.
	CreateMessage(ctx context.Context, message *core.Message) error

	// ListMessages returns a session's messages ordered by timestamp, then ID.
	ListMessages(ctx context.Context, sessionID core.ID) ([]*core.Message, error)

	// CommitTurn replaces the session and inserts both messages as one
	// atomic unit. On any failure nothing is written and the returned error
	// wraps core.ErrTransactionAborted.
	CommitTurn(ctx context.Context, turn *core.Turn) error

	// DeleteSessionAndMessages removes the session and every message that
	// references it. A missing session is not an error.
	DeleteSessionAndMessages(ctx context.Context, id core.ID) error
}
