package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// Rejection records a document that could not be imported.
type Rejection struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ImportResult summarizes one bulk import.
type ImportResult struct {
	Imported   int         `json:"imported"`
	Duplicates []core.ID   `json:"duplicates,omitempty"`
	Rejected   []Rejection `json:"rejected,omitempty"`
}

// Add folds other into r.
func (r *ImportResult) Add(other ImportResult) {
	r.Imported += other.Imported
	r.Duplicates = append(r.Duplicates, other.Duplicates...)
	r.Rejected = append(r.Rejected, other.Rejected...)
}

// ImportBulk inserts the documents of a JSON array into collection without
// embedding them. Documents without an id get one derived from their title
// and year. IDs that already exist are reported as duplicates and left
// untouched; malformed documents are reported as rejected. Neither stops
// the import.
func (s *Store) ImportBulk(ctx context.Context, collection storage.Collection, raw []byte) (ImportResult, error) {
	var result ImportResult
	if collection != storage.CollectionCatalog {
		return result, fmt.Errorf("%w: %w: %q", core.ErrInvalidArgument, ErrUnsupportedCollection, collection)
	}

	var docs []json.RawMessage
	if err := json.Unmarshal(raw, &docs); err != nil {
		return result, fmt.Errorf("%w: %w: %w", core.ErrInvalidArgument, ErrNotJSONArray, err)
	}

	items := make([]*core.Item, 0, len(docs))
	for i, doc := range docs {
		item, err := decodeItem(doc)
		if err != nil {
			s.logger.Warn("rejected import document", "index", i, "err", err)
			result.Rejected = append(result.Rejected, Rejection{Index: i, Reason: err.Error()})
			continue
		}
		items = append(items, item)
	}

	for start := 0; start < len(items); start += s.importChunk {
		end := min(start+s.importChunk, len(items))
		inserted, duplicates, err := s.catalog.InsertItems(ctx, items[start:end]...)
		if err != nil {
			s.logger.Error("bulk import failed", "collection", collection,
				"imported", result.Imported, "err", err)
			return result, storeError(err)
		}
		result.Imported += len(inserted)
		result.Duplicates = append(result.Duplicates, duplicates...)
	}

	if len(result.Duplicates) > 0 {
		s.logger.Info("bulk import skipped existing ids", "collection", collection, "duplicates", len(result.Duplicates))
	}
	s.logger.Info("bulk import complete", "collection", collection,
		"imported", result.Imported, "duplicates", len(result.Duplicates), "rejected", len(result.Rejected))
	return result, nil
}

func decodeItem(doc json.RawMessage) (*core.Item, error) {
	var item core.Item
	if err := json.Unmarshal(doc, &item); err != nil {
		return nil, err
	}
	if err := core.ValidateItem(&item); err != nil {
		return nil, err
	}
	if item.ID == "" {
		item.ID = core.IDFromContent(item.IdentityKey())
	}
	// Imported vectors are never trusted; VectorizeAll computes them.
	item.Vector = nil
	return &item, nil
}
