package badger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// CatalogRepository implements storage.CatalogRepository for BadgerDB.
type CatalogRepository struct {
	backend *Backend
}

var _ storage.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(backend *Backend) *CatalogRepository {
	return &CatalogRepository{backend: backend}
}

// Close is a no-op; the backend owns the database handle.
func (r *CatalogRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *CatalogRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutItem replaces or inserts an item by ID.
func (r *CatalogRepository) PutItem(ctx context.Context, item *core.Item) error {
	if item.ID == "" {
		return errMissingID
	}
	value, err := storage.MarshalItem(item)
	if err != nil {
		return err
	}
	return r.backend.update(ctx, func(tx *badger.Txn) error {
		return tx.Set(makeItemKey(item.ID), value)
	})
}

// InsertItems inserts items whose IDs are not yet present.
// Duplicates within the batch itself count as duplicates too.
func (r *CatalogRepository) InsertItems(ctx context.Context, items ...*core.Item) ([]core.ID, []core.ID, error) {
	var inserted, duplicates []core.ID
	err := r.backend.update(ctx, func(tx *badger.Txn) error {
		inserted, duplicates = nil, nil
		for _, item := range items {
			if item.ID == "" {
				return errMissingID
			}
			key := makeItemKey(item.ID)
			found, err := exists(tx, key)
			if err != nil {
				return err
			}
			if found {
				duplicates = append(duplicates, item.ID)
				continue
			}
			value, err := storage.MarshalItem(item)
			if err != nil {
				return err
			}
			if err := tx.Set(key, value); err != nil {
				return err
			}
			inserted = append(inserted, item.ID)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return inserted, duplicates, nil
}

// GetItem retrieves an item by ID.
func (r *CatalogRepository) GetItem(ctx context.Context, id core.ID) (*core.Item, error) {
	var result *core.Item
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		var err error
		result, err = getDocument(tx, makeItemKey(id), storage.UnmarshalItem)
		return err
	})
	return result, err
}

// DeleteItem removes the item and its vector record in one transaction.
func (r *CatalogRepository) DeleteItem(ctx context.Context, id core.ID) (bool, error) {
	removed := false
	err := r.backend.update(ctx, func(tx *badger.Txn) error {
		removed = false
		for _, key := range [][]byte{makeItemKey(id), makeVectorKey(id)} {
			found, err := exists(tx, key)
			if err != nil {
				return err
			}
			if !found {
				continue
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
			removed = true
		}
		return nil
	})
	return removed, err
}

// PutItemVector writes record only if the base record with the same ID
// exists and still hashes to record.SourceHash. Reading the base key puts it
// in the transaction's read set, so a delete or replace committing between
// the check and the write surfaces as a conflict.
func (r *CatalogRepository) PutItemVector(ctx context.Context, record *core.VectorRecord) error {
	if record.ID == "" {
		return errMissingID
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}
	err := r.backend.update(ctx, func(tx *badger.Txn) error {
		item, err := getDocument(tx, makeItemKey(record.ID), storage.UnmarshalItem)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: item %s: %w", storage.ErrStaleRecord, record.ID, err)
		}
		if err != nil {
			return err
		}
		if item.SourceHash() != record.SourceHash {
			return fmt.Errorf("%w: item %s was replaced", storage.ErrStaleRecord, record.ID)
		}
		return putDocument(tx, makeVectorKey(record.ID), record)
	})
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("%w: %w", storage.ErrStaleRecord, err)
	}
	return err
}

// ScanItems returns up to limit items with IDs strictly greater than after.
func (r *CatalogRepository) ScanItems(ctx context.Context, after core.ID, limit int) ([]*core.Item, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.Item
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(itemPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		start := makeItemKey(after)
		for iter.Seek(start); iter.Valid() && len(results) < limit; iter.Next() {
			item := iter.Item()
			if after != "" && bytes.Equal(item.Key(), start) {
				continue
			}
			var record *core.Item
			if err := item.Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalItem(val)
				return err
			}); err != nil {
				return err
			}
			if record.ID == "" {
				record.ID = itemIDFromKey(item.Key())
			}
			results = append(results, record)
		}
		return nil
	})
	return results, err
}

// CountItems returns the number of stored items.
func (r *CatalogRepository) CountItems(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		count = countPrefix(tx, []byte(itemPrefix))
		return nil
	})
	return count, err
}
