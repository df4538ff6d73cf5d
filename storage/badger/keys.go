package badger

import (
	"encoding/binary"
	"time"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// Key prefixes for different document types
const (
	itemPrefix      = "movie:"
	vectorPrefix    = "vec:"
	indexPrefix     = "idx:"
	sessionPrefix   = "cmps:"
	messagePrefix   = "cmpm:"
	messageIDPrefix = "cmpi:"
)

// makeMessageIDKey generates the uniqueness key for a message ID.
// Its value is the message's composite key.
func makeMessageIDKey(id core.ID) []byte {
	return []byte(messageIDPrefix + string(id))
}

// messageIDFromKey extracts the message ID from a composite message key.
func messageIDFromKey(sessionID core.ID, key []byte) core.ID {
	return core.ID(key[len(makeSessionMessagePrefix(sessionID))+9:])
}

// makeItemKey generates a key for a catalog item by ID.
func makeItemKey(id core.ID) []byte {
	return []byte(itemPrefix + string(id))
}

// itemIDFromKey extracts the item ID from a catalog key.
func itemIDFromKey(key []byte) core.ID {
	return core.ID(key[len(itemPrefix):])
}

// makeVectorKey generates a key for a vector record by ID.
func makeVectorKey(id core.ID) []byte {
	return []byte(vectorPrefix + string(id))
}

// vectorIDFromKey extracts the record ID from a vector key.
func vectorIDFromKey(key []byte) core.ID {
	return core.ID(key[len(vectorPrefix):])
}

// makeIndexPrefix generates the prefix for all indexes of a collection.
// Format: prefix:collection:
func makeIndexPrefix(collection storage.Collection) []byte {
	return []byte(indexPrefix + string(collection) + ":")
}

// makeIndexKey generates a key for an index descriptor.
// Format: prefix:collection:name
func makeIndexKey(collection storage.Collection, name string) []byte {
	return append(makeIndexPrefix(collection), name...)
}

// makeSessionKey generates a key for a session by ID.
func makeSessionKey(id core.ID) []byte {
	return []byte(sessionPrefix + string(id))
}

// makeSessionMessagePrefix generates the prefix shared by all messages of a session.
// Format: prefix:sessionID:
func makeSessionMessagePrefix(sessionID core.ID) []byte {
	return []byte(messagePrefix + string(sessionID) + ":")
}

// makeMessageKey generates a composite key for a message.
// Format: prefix:sessionID:timestamp:messageID
func makeMessageKey(sessionID core.ID, timestamp time.Time, id core.ID) []byte {
	prefixBytes := makeSessionMessagePrefix(sessionID)
	buf := make([]byte, len(prefixBytes)+8+1+len(id))
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	buf[offset] = ':'
	offset++
	copy(buf[offset:], id)
	return buf
}
