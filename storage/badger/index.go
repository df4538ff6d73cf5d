package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/recall/storage"
)

// IndexRepository implements storage.IndexRepository for BadgerDB.
// Descriptors are stored as documents; the vector collection is always
// searchable by scan, so a descriptor records the contract searches must
// honor (dimensions, similarity) rather than a physical structure.
type IndexRepository struct {
	backend *Backend
}

var _ storage.IndexRepository = (*IndexRepository)(nil)

// NewIndexRepository creates a new IndexRepository.
func NewIndexRepository(backend *Backend) *IndexRepository {
	return &IndexRepository{backend: backend}
}

// ListIndexes returns every index defined on the collection, ordered by name.
func (r *IndexRepository) ListIndexes(ctx context.Context, collection storage.Collection) ([]*storage.IndexSpec, error) {
	var specs []*storage.IndexSpec
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeIndexPrefix(collection)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var spec *storage.IndexSpec
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				spec, err = storage.UnmarshalIndexSpec(val)
				return err
			}); err != nil {
				return err
			}
			specs = append(specs, spec)
		}
		return nil
	})
	return specs, err
}

// GetIndex returns the named index.
func (r *IndexRepository) GetIndex(ctx context.Context, collection storage.Collection, name string) (*storage.IndexSpec, error) {
	var spec *storage.IndexSpec
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		var err error
		spec, err = getDocument(tx, makeIndexKey(collection, name), storage.UnmarshalIndexSpec)
		if errors.Is(err, storage.ErrNotFound) {
			return storage.ErrIndexNotFound
		}
		return err
	})
	return spec, err
}

// CreateIndex defines a new index. Two concurrent creators race on the same
// key; the loser sees either ErrIndexExists or a commit conflict.
func (r *IndexRepository) CreateIndex(ctx context.Context, collection storage.Collection, spec *storage.IndexSpec) error {
	if spec == nil || spec.Name == "" {
		return storage.ErrInvalidQuery
	}
	if spec.CreatedAt.IsZero() {
		spec.CreatedAt = time.Now().UTC()
	}
	return r.backend.update(ctx, func(tx *badger.Txn) error {
		key := makeIndexKey(collection, spec.Name)
		found, err := exists(tx, key)
		if err != nil {
			return err
		}
		if found {
			return storage.ErrIndexExists
		}
		return putDocument(tx, key, spec)
	})
}
