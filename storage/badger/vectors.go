package badger

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// VectorRepository implements storage.VectorRepository for BadgerDB.
// Similarity is computed by an exact cosine scan over the vector prefix.
type VectorRepository struct {
	backend *Backend
}

var _ storage.VectorRepository = (*VectorRepository)(nil)

// NewVectorRepository creates a new VectorRepository.
func NewVectorRepository(backend *Backend) *VectorRepository {
	return &VectorRepository{backend: backend}
}

// Close is a no-op; the backend owns the database handle.
func (r *VectorRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *VectorRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutVector replaces or inserts a vector record by ID.
func (r *VectorRepository) PutVector(ctx context.Context, record *core.VectorRecord) error {
	if record.ID == "" {
		return errMissingID
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}
	return r.backend.update(ctx, func(tx *badger.Txn) error {
		return putDocument(tx, makeVectorKey(record.ID), record)
	})
}

// GetVector retrieves a vector record by ID.
func (r *VectorRepository) GetVector(ctx context.Context, id core.ID) (*core.VectorRecord, error) {
	var result *core.VectorRecord
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		var err error
		result, err = getDocument(tx, makeVectorKey(id), storage.UnmarshalVectorRecord)
		return err
	})
	return result, err
}

// DeleteVector removes a vector record.
func (r *VectorRepository) DeleteVector(ctx context.Context, id core.ID) error {
	return r.backend.update(ctx, func(tx *badger.Txn) error {
		return tx.Delete(makeVectorKey(id))
	})
}

// FindNearest returns the k records most similar to query.
func (r *VectorRepository) FindNearest(ctx context.Context, query []float32, k int) ([]*storage.VectorMatch, error) {
	if k <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	queryNorm := norm(query)
	var results []*storage.VectorMatch

	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var record *core.VectorRecord
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalVectorRecord(val)
				return err
			}); err != nil {
				return err
			}

			// Records of another dimensionality cannot be compared
			if len(record.Vector) != len(query) {
				continue
			}

			results = append(results, &storage.VectorMatch{
				Record: record,
				Score:  cosineSimilarity(query, queryNorm, record.Vector),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending, ID ascending for stable ties
	slices.SortFunc(results, func(a, b *storage.VectorMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		if a.Record.ID < b.Record.ID {
			return -1
		}
		if a.Record.ID > b.Record.ID {
			return 1
		}
		return 0
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// ListVectorIDs returns the IDs of all vector records in ID order.
func (r *VectorRepository) ListVectorIDs(ctx context.Context) ([]core.ID, error) {
	var ids []core.ID
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			ids = append(ids, vectorIDFromKey(iter.Item().KeyCopy(nil)))
		}
		return nil
	})
	return ids, err
}

// CountVectors returns the number of stored vector records.
func (r *VectorRepository) CountVectors(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		count = countPrefix(tx, []byte(vectorPrefix))
		return nil
	})
	return count, err
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := min(len(a), len(b))
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// norm returns the Euclidean length of v.
func norm(v []float32) float32 {
	return float32(math.Sqrt(float64(dotProduct(v, v))))
}

// cosineSimilarity compares query (with precomputed norm) against v.
// Zero vectors have similarity 0 to everything.
func cosineSimilarity(query []float32, queryNorm float32, v []float32) float32 {
	vNorm := norm(v)
	if queryNorm == 0 || vNorm == 0 {
		return 0
	}
	return dotProduct(query, v) / (queryNorm * vNorm)
}
