package ingestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/recall/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestDirSource_SingleBlob(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "movies-2020s.json", `[]`)

	blobs, err := NewDirSource(root).Fetch(context.Background(), "movies-2020s.json")
	require.NoError(t, err)
	require.Len(t, blobs, 1)
	assert.Equal(t, "movies-2020s.json", blobs[0].Name)
	assert.Equal(t, "[]", string(blobs[0].Data))
}

func TestDirSource_Pattern(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "movies/2010s.json", `[1]`)
	writeFile(t, root, "movies/2020s.json", `[2]`)
	writeFile(t, root, "movies/archive/1990s.json", `[3]`)
	writeFile(t, root, "movies/readme.txt", `no`)

	blobs, err := NewDirSource(root).Fetch(context.Background(), "movies/**/*.json")
	require.NoError(t, err)
	names := make([]string, len(blobs))
	for i, b := range blobs {
		names[i] = b.Name
	}
	assert.Equal(t, []string{"movies/2010s.json", "movies/2020s.json", "movies/archive/1990s.json"}, names)
}

func TestDirSource_Errors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.json", `[1,2,3,4,5,6,7,8,9]`)
	src := NewDirSource(root)
	ctx := context.Background()

	_, err := src.Fetch(ctx, "missing.json")
	assert.ErrorIs(t, err, ErrBlobNotFound)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	for _, name := range []string{"", "/etc/passwd", "../secret.json", "a/../../b", "[unclosed"} {
		_, err := src.Fetch(ctx, name)
		assert.ErrorIs(t, err, core.ErrInvalidArgument, name)
	}

	src.MaxSize = 4
	_, err = src.Fetch(ctx, "big.json")
	assert.ErrorIs(t, err, ErrBlobTooLarge)
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movies/movies-2020s.json":
			w.Write([]byte(`[{"title":"The Grudge","year":2020}]`))
		case "/movies/broken.json":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/movies/", srv.Client())
	ctx := context.Background()

	blobs, err := src.Fetch(ctx, "movies-2020s.json")
	require.NoError(t, err)
	require.Len(t, blobs, 1)
	assert.Contains(t, string(blobs[0].Data), "The Grudge")

	_, err = src.Fetch(ctx, "missing.json")
	assert.ErrorIs(t, err, ErrBlobNotFound)

	_, err = src.Fetch(ctx, "broken.json")
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)

	_, err = src.Fetch(ctx, "../escape.json")
	assert.ErrorIs(t, err, ErrInvalidBlobName)
}
