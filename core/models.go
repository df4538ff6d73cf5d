package core

import (
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored documents.
// Catalog items use content-derived IDs; sessions and messages use UUIDs.
type ID string

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	return ID(hex.EncodeToString(h.Sum(nil)))
}

// String returns the identifier as a plain string.
func (id ID) String() string {
	return string(id)
}

// DocumentType discriminates sessions from messages in the completions collection.
type DocumentType string

const (
	DocumentTypeSession DocumentType = "Session"
	DocumentTypeMessage DocumentType = "Message"
)

// Role identifies the author of a chat message.
type Role string

const (
	// RoleUser marks a prompt written by a person.
	RoleUser Role = "User"
	// RoleAssistant marks a completion returned by the model.
	RoleAssistant Role = "Assistant"
)

// DefaultSessionName is the name given to sessions before their first turn.
const DefaultSessionName = "New Chat"

// Payload is the descriptive content of a catalog item, without its
// identifier or embedding. It is what gets embedded and what search returns.
type Payload struct {
	Title           string   `json:"title"`
	Year            int      `json:"year"`
	Cast            []string `json:"cast"`
	Genres          []string `json:"genres"`
	Href            string   `json:"href,omitempty"`
	Extract         string   `json:"extract,omitempty"`
	Thumbnail       string   `json:"thumbnail,omitempty"`
	ThumbnailWidth  int      `json:"thumbnail_width,omitempty"`
	ThumbnailHeight int      `json:"thumbnail_height,omitempty"`
}

// Item is a catalog entry as stored in the base collection.
type Item struct {
	ID              ID        `json:"id"`
	Title           string    `json:"title"`
	Year            int       `json:"year"`
	Cast            []string  `json:"cast"`
	Genres          []string  `json:"genres"`
	Href            string    `json:"href,omitempty"`
	Extract         string    `json:"extract,omitempty"`
	Thumbnail       string    `json:"thumbnail,omitempty"`
	ThumbnailWidth  int       `json:"thumbnail_width,omitempty"`
	ThumbnailHeight int       `json:"thumbnail_height,omitempty"`
	Vector          []float32 `json:"vector,omitempty"`
}

// Payload returns the item's content without id and vector.
func (i *Item) Payload() Payload {
	return Payload{
		Title:           i.Title,
		Year:            i.Year,
		Cast:            i.Cast,
		Genres:          i.Genres,
		Href:            i.Href,
		Extract:         i.Extract,
		Thumbnail:       i.Thumbnail,
		ThumbnailWidth:  i.ThumbnailWidth,
		ThumbnailHeight: i.ThumbnailHeight,
	}
}

// EmbeddingText is the canonical text fed to the embedding model.
// Field order is fixed by the Payload struct so the text is stable.
func (i *Item) EmbeddingText() string {
	data, _ := json.Marshal(i.Payload())
	return string(data)
}

// IdentityKey is the natural key used to derive an ID for items imported
// without one.
func (i *Item) IdentityKey() string {
	return i.Title + "|" + strconv.Itoa(i.Year)
}

// SourceHash fingerprints the embedding text so a vector can be checked
// against the payload it was derived from.
func (i *Item) SourceHash() string {
	return string(IDFromContent(i.EmbeddingText()))
}

// VectorRecord is the searchable form of an item. It shares the item's ID.
type VectorRecord struct {
	ID         ID        `json:"id"`
	Payload    Payload   `json:"payload"`
	Vector     []float32 `json:"vector"`
	SourceHash string    `json:"source_hash"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SessionState is the lifecycle state of a chat session.
type SessionState int

const (
	// SessionNew is a session with no committed turns.
	SessionNew SessionState = iota + 1
	// SessionActive is a session with at least one committed turn.
	SessionActive
)

// Session is a named, token-accounted conversation.
type Session struct {
	ID               ID           `json:"id"`
	Type             DocumentType `json:"type"`
	Name             string       `json:"name"`
	Tokens           int          `json:"tokens"`
	CompletionTokens int          `json:"completion_tokens"`
	Turns            int          `json:"turns"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// State reports whether the session has seen a committed turn.
func (s *Session) State() SessionState {
	if s.Turns == 0 {
		return SessionNew
	}
	return SessionActive
}

// Message is one side of a turn. Messages are immutable once written.
type Message struct {
	ID        ID           `json:"id"`
	SessionID ID           `json:"session_id"`
	Type      DocumentType `json:"type"`
	Role      Role         `json:"role"`
	Text      string       `json:"text"`
	Tokens    int          `json:"tokens"`
	Timestamp time.Time    `json:"timestamp"`
}

// Turn is the unit committed atomically: the updated session plus the
// prompt and completion messages that produced the update.
type Turn struct {
	Session    *Session
	Prompt     *Message
	Completion *Message
}
