package badger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogItemBasics(t *testing.T) {
	store, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	item := &core.Item{
		ID:     "grudge",
		Title:  "The Grudge",
		Year:   2020,
		Genres: []string{"Horror", "Supernatural"},
		Vector: []float32{0.1, 0.2},
	}

	if err := store.Catalog.PutItem(ctx, item); err != nil {
		t.Fatalf("Failed to put item: %v", err)
	}

	retrieved, err := store.Catalog.GetItem(ctx, "grudge")
	if err != nil {
		t.Fatalf("Failed to get item: %v", err)
	}
	if retrieved.Title != "The Grudge" {
		t.Fatalf("Expected 'The Grudge', got '%s'", retrieved.Title)
	}
	if len(retrieved.Vector) != 0 {
		t.Fatalf("Expected base record without vector, got %v", retrieved.Vector)
	}

	// Replace
	item.Year = 2019
	if err := store.Catalog.PutItem(ctx, item); err != nil {
		t.Fatalf("Failed to replace item: %v", err)
	}
	retrieved, _ = store.Catalog.GetItem(ctx, "grudge")
	if retrieved.Year != 2019 {
		t.Fatalf("Expected replaced year 2019, got %d", retrieved.Year)
	}

	count, err := store.Catalog.CountItems(ctx)
	if err != nil {
		t.Fatalf("Failed to count items: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 item, got %d", count)
	}
}

func TestCatalogGetItem_NotFound(t *testing.T) {
	store, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	_, err = store.Catalog.GetItem(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestCatalogPutItem_MissingID(t *testing.T) {
	store, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	err = store.Catalog.PutItem(context.Background(), &core.Item{Title: "No ID"})
	if !errors.Is(err, core.ErrInvalidArgument) {
		t.Fatalf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestCatalogInsertItems_Duplicates(t *testing.T) {
	store, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	if err := store.Catalog.PutItem(ctx, &core.Item{ID: "a", Title: "Original"}); err != nil {
		t.Fatalf("Failed to put item: %v", err)
	}

	inserted, duplicates, err := store.Catalog.InsertItems(ctx,
		&core.Item{ID: "a", Title: "Overwrite attempt"},
		&core.Item{ID: "b", Title: "B"},
		&core.Item{ID: "b", Title: "B again"},
		&core.Item{ID: "c", Title: "C"},
	)
	if err != nil {
		t.Fatalf("Failed to insert items: %v", err)
	}
	if len(inserted) != 2 {
		t.Fatalf("Expected 2 inserted, got %v", inserted)
	}
	if len(duplicates) != 2 {
		t.Fatalf("Expected 2 duplicates, got %v", duplicates)
	}

	original, _ := store.Catalog.GetItem(ctx, "a")
	if original.Title != "Original" {
		t.Fatalf("Existing item was overwritten: %s", original.Title)
	}
	b, _ := store.Catalog.GetItem(ctx, "b")
	if b.Title != "B" {
		t.Fatalf("Expected first copy of b to win, got %s", b.Title)
	}
}

func TestCatalogDeleteItem_RemovesVector(t *testing.T) {
	store, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	if err := store.Catalog.PutItem(ctx, &core.Item{ID: "x", Title: "X"}); err != nil {
		t.Fatalf("Failed to put item: %v", err)
	}
	if err := store.Vectors.PutVector(ctx, &core.VectorRecord{ID: "x", Vector: []float32{1, 0}}); err != nil {
		t.Fatalf("Failed to put vector: %v", err)
	}

	removed, err := store.Catalog.DeleteItem(ctx, "x")
	if err != nil {
		t.Fatalf("Failed to delete item: %v", err)
	}
	if !removed {
		t.Fatal("Expected removed = true")
	}

	if _, err := store.Catalog.GetItem(ctx, "x"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected item gone, got %v", err)
	}
	if _, err := store.Vectors.GetVector(ctx, "x"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected vector gone, got %v", err)
	}

	// Deleting again is idempotent
	removed, err = store.Catalog.DeleteItem(ctx, "x")
	if err != nil {
		t.Fatalf("Second delete failed: %v", err)
	}
	if removed {
		t.Fatal("Expected removed = false on second delete")
	}
}

func TestCatalogScanItems_Paging(t *testing.T) {
	store, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	for i := 0; i < 7; i++ {
		id := core.ID(fmt.Sprintf("item-%02d", i))
		if err := store.Catalog.PutItem(ctx, &core.Item{ID: id, Title: string(id)}); err != nil {
			t.Fatalf("Failed to put item: %v", err)
		}
	}

	var seen []core.ID
	var after core.ID
	for {
		page, err := store.Catalog.ScanItems(ctx, after, 3)
		if err != nil {
			t.Fatalf("Failed to scan: %v", err)
		}
		if len(page) == 0 {
			break
		}
		for _, item := range page {
			seen = append(seen, item.ID)
		}
		after = page[len(page)-1].ID
	}

	if len(seen) != 7 {
		t.Fatalf("Expected 7 items, got %d: %v", len(seen), seen)
	}
	for i := 1; i < len(seen); i++ {
		if seen[i-1] >= seen[i] {
			t.Fatalf("Items not in ID order: %v", seen)
		}
	}

	if _, err := store.Catalog.ScanItems(ctx, "", 0); !errors.Is(err, storage.ErrInvalidQuery) {
		t.Fatalf("Expected ErrInvalidQuery for zero limit, got %v", err)
	}
}

func TestPutItemVector(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	item := &core.Item{ID: "g1", Title: "The Grudge", Year: 2020, Extract: "A supernatural horror film."}
	record := func(from *core.Item) *core.VectorRecord {
		return &core.VectorRecord{
			ID:         from.ID,
			Payload:    from.Payload(),
			Vector:     []float32{0.3, 0.4},
			SourceHash: from.SourceHash(),
		}
	}

	t.Run("missing base record", func(t *testing.T) {
		err := store.Catalog.PutItemVector(ctx, record(item))
		assert.ErrorIs(t, err, storage.ErrStaleRecord)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		_, err = store.Vectors.GetVector(ctx, item.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("matching base record", func(t *testing.T) {
		require.NoError(t, store.Catalog.PutItem(ctx, item))
		require.NoError(t, store.Catalog.PutItemVector(ctx, record(item)))

		rec, err := store.Vectors.GetVector(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, item.SourceHash(), rec.SourceHash)
		assert.False(t, rec.UpdatedAt.IsZero())
	})

	t.Run("replaced base record", func(t *testing.T) {
		stale := record(item)
		replacement := *item
		replacement.Extract = "A completely different summary about cats."
		require.NoError(t, store.Catalog.PutItem(ctx, &replacement))

		err := store.Catalog.PutItemVector(ctx, stale)
		assert.ErrorIs(t, err, storage.ErrStaleRecord)

		rec, err := store.Vectors.GetVector(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, "A supernatural horror film.", rec.Payload.Extract, "earlier vector record untouched")
	})

	t.Run("missing id", func(t *testing.T) {
		err := store.Catalog.PutItemVector(ctx, &core.VectorRecord{})
		assert.ErrorIs(t, err, core.ErrInvalidArgument)
	})
}

func TestPutItemVector_ConcurrentDeleteConflicts(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	item := &core.Item{ID: "g1", Title: "The Grudge", Year: 2020}
	require.NoError(t, store.Catalog.PutItem(ctx, item))

	err = store.Catalog.WithTransaction(ctx, func(txCtx context.Context) error {
		require.NoError(t, store.Catalog.PutItemVector(txCtx, &core.VectorRecord{
			ID:         item.ID,
			Payload:    item.Payload(),
			Vector:     []float32{1, 0},
			SourceHash: item.SourceHash(),
		}))

		// A delete outside the transaction commits after the base record was read.
		removed, err := store.Catalog.DeleteItem(ctx, item.ID)
		require.NoError(t, err)
		require.True(t, removed)
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrTransactionFailed)
	assert.ErrorIs(t, err, badger.ErrConflict)

	_, err = store.Catalog.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.Vectors.GetVector(ctx, item.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound, "no dangling vector record")
}
