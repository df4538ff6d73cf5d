package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/recall"
	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/ai/mock"
	"github.com/poiesic/recall/core"
)

func TestSamplesAreValid(t *testing.T) {
	seen := map[string]bool{}
	for _, item := range samples {
		require.NoError(t, core.ValidateItem(item), item.Title)
		assert.False(t, seen[item.IdentityKey()], "duplicate sample %s", item.IdentityKey())
		seen[item.IdentityKey()] = true
	}
}

func TestItemsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"title": "Soul", "year": 2020}, {"title": "Tenet", "year": 2020}]`), 0644))

	source, err := itemsFromFile(path)
	require.NoError(t, err)

	var titles []string
	for item := range source {
		titles = append(titles, item.Title)
	}
	assert.Equal(t, []string{"Soul", "Tenet"}, titles)

	_, err = itemsFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	engine, err := recall.Open(ctx, "", recall.WithInMemory(),
		recall.WithProvider(mock.NewMockProvider()),
		recall.WithAIConfig(ai.NewConfig(ai.WithDimensions(mock.DefaultDimensions))))
	require.NoError(t, err)
	defer engine.Close()

	n, err := seed(ctx, engine, itemsFromSlice(samples))
	require.NoError(t, err)
	assert.Equal(t, len(samples), n)

	count, err := engine.Store().Vectors.CountVectors(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(samples), count)

	grudge, err := engine.Catalog().GetItem(ctx, core.IDFromContent("The Grudge|2020"))
	require.NoError(t, err)
	assert.Equal(t, 220, grudge.ThumbnailWidth)
}
