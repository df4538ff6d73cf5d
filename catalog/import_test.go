package catalog

import (
	"context"
	"testing"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMovies = `[
  {"title": "The Grudge", "year": 2020, "cast": ["Andrea Riseborough"], "genres": ["Horror"],
   "extract": "A house is cursed by a vengeful spirit."},
  {"title": "Dolittle", "year": 2020, "cast": ["Robert Downey Jr."], "genres": ["Family"],
   "extract": "A doctor who talks to animals."},
  {"id": "custom-id", "title": "Bad Boys for Life", "year": 2020, "cast": ["Will Smith"], "genres": ["Action"],
   "vector": [0.1, 0.2]}
]`

func TestImportBulk(t *testing.T) {
	s, db, embedder := setupStore(t)
	ctx := context.Background()

	result, err := s.ImportBulk(ctx, storage.CollectionCatalog, []byte(sampleMovies))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)
	assert.Empty(t, result.Duplicates)
	assert.Empty(t, result.Rejected)
	assert.Equal(t, 0, embedder.CallCount(), "import does not embed")

	item, err := db.Catalog.GetItem(ctx, core.IDFromContent("The Grudge|2020"))
	require.NoError(t, err)
	assert.Equal(t, "A house is cursed by a vengeful spirit.", item.Extract)

	custom, err := db.Catalog.GetItem(ctx, "custom-id")
	require.NoError(t, err)
	assert.Empty(t, custom.Vector)

	vectors, err := db.Vectors.CountVectors(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, vectors)
}

func TestImportBulk_DuplicatesAreNotFatal(t *testing.T) {
	s, _, _ := setupStore(t)
	ctx := context.Background()

	_, err := s.ImportBulk(ctx, storage.CollectionCatalog, []byte(sampleMovies))
	require.NoError(t, err)

	result, err := s.ImportBulk(ctx, storage.CollectionCatalog, []byte(sampleMovies))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.Len(t, result.Duplicates, 3)
	assert.Contains(t, result.Duplicates, core.ID("custom-id"))
}

func TestImportBulk_DuplicateWithinBatch(t *testing.T) {
	s, _, _ := setupStore(t)

	raw := `[{"title": "Twice", "year": 2001}, {"title": "Twice", "year": 2001}]`
	result, err := s.ImportBulk(context.Background(), storage.CollectionCatalog, []byte(raw))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Len(t, result.Duplicates, 1)
}

func TestImportBulk_RejectsMalformedDocuments(t *testing.T) {
	s, _, _ := setupStore(t)

	raw := `[{"title": "Good", "year": 1999}, {"year": 2000}, "not an object", {"title": "Neg", "year": -1}]`
	result, err := s.ImportBulk(context.Background(), storage.CollectionCatalog, []byte(raw))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Rejected, 3)
	assert.Equal(t, 1, result.Rejected[0].Index)
	assert.Equal(t, 2, result.Rejected[1].Index)
	assert.Equal(t, 3, result.Rejected[2].Index)
}

func TestImportBulk_Chunked(t *testing.T) {
	s, _, _ := setupStore(t, WithImportChunk(1))

	result, err := s.ImportBulk(context.Background(), storage.CollectionCatalog, []byte(sampleMovies))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)
}

func TestImportBulk_InvalidInput(t *testing.T) {
	s, _, _ := setupStore(t)
	ctx := context.Background()

	_, err := s.ImportBulk(ctx, storage.CollectionCatalog, []byte(`{"title": "x"}`))
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	assert.ErrorIs(t, err, ErrNotJSONArray)

	_, err = s.ImportBulk(ctx, storage.CollectionVectors, []byte(`[]`))
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	assert.ErrorIs(t, err, ErrUnsupportedCollection)
}

func TestImportResult_Add(t *testing.T) {
	var total ImportResult
	total.Add(ImportResult{Imported: 2, Duplicates: []core.ID{"a"}})
	total.Add(ImportResult{Imported: 1, Rejected: []Rejection{{Index: 0, Reason: "bad"}}})
	assert.Equal(t, 3, total.Imported)
	assert.Len(t, total.Duplicates, 1)
	assert.Len(t, total.Rejected, 1)
}
