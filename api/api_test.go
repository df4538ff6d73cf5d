package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/recall"
	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/ai/mock"
	"github.com/poiesic/recall/chat"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/ingestion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const movies = `[
  {"title": "The Grudge", "year": 2020, "cast": ["Andrea Riseborough", "Lin Shaye"],
   "genres": ["Horror", "Supernatural"], "extract": "A house is cursed by a vengeful ghost."},
  {"title": "Soul", "year": 2020, "cast": ["Jamie Foxx", "Tina Fey"],
   "genres": ["Animated", "Fantasy"], "extract": "A jazz musician's soul is separated from his body."}
]`

func setupHandler(t *testing.T) (http.Handler, *recall.Engine) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ingestion.DefaultBlobName), []byte(movies), 0644))

	engine, err := recall.Open(context.Background(), "",
		recall.WithInMemory(),
		recall.WithProvider(mock.NewMockProvider()),
		recall.WithAIConfig(ai.NewConfig(ai.WithDimensions(mock.DefaultDimensions))))
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	pipeline, err := engine.NewIngestionPipeline(ingestion.NewDirSource(dir))
	require.NoError(t, err)

	handler := NewHandler(Deps{
		Catalog:  engine.Catalog(),
		Sessions: engine.Sessions(),
		Chat:     engine.Chat(),
		Ingester: pipeline,
	})
	return handler, engine
}

func do(h http.Handler, method, url, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, url, reader)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body = %s", rr.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	h, _ := setupHandler(t)
	rr := do(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestIngest(t *testing.T) {
	h, engine := setupHandler(t)

	rr := do(h, http.MethodPost, "/ingest", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	report := decode[ingestion.Report](t, rr)
	assert.Equal(t, 2, report.Imported)
	assert.Equal(t, 2, report.Vectorized)

	count, err := engine.Catalog().CountItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestIngest_MissingBlob(t *testing.T) {
	h, _ := setupHandler(t)

	rr := do(h, http.MethodPost, "/ingest?blob=nothing-here.json", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode[map[string]string](t, rr)
	assert.Contains(t, body["error"], "nothing-here.json")
}

func TestIngest_NotConfigured(t *testing.T) {
	_, engine := setupHandler(t)
	h := NewHandler(Deps{Catalog: engine.Catalog(), Sessions: engine.Sessions(), Chat: engine.Chat()})

	rr := do(h, http.MethodPost, "/ingest", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, errNoIngester.Error(), decode[map[string]string](t, rr)["error"])
}

func TestItems(t *testing.T) {
	h, _ := setupHandler(t)

	rr := do(h, http.MethodPost, "/items", `{"title": "Tenet", "year": 2020, "genres": ["Science Fiction"]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	item := decode[core.Item](t, rr)
	assert.Equal(t, core.IDFromContent("Tenet|2020"), item.ID)
	assert.Empty(t, item.Vector)

	rr = do(h, http.MethodGet, "/items/"+item.ID.String(), "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Tenet", decode[core.Item](t, rr).Title)

	rr = do(h, http.MethodDelete, "/items/"+item.ID.String(), "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(h, http.MethodGet, "/items/"+item.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAddItem_Invalid(t *testing.T) {
	h, _ := setupHandler(t)

	rr := do(h, http.MethodPost, "/items", `{"year": 2020}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode[map[string]string](t, rr)["error"], core.ErrEmptyTitle.Error())

	rr = do(h, http.MethodPost, "/items", `not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSessionsLifecycle(t *testing.T) {
	h, _ := setupHandler(t)
	require.Equal(t, http.StatusOK, do(h, http.MethodPost, "/ingest", "").Code)

	rr := do(h, http.MethodPost, "/sessions", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	session := decode[core.Session](t, rr)
	assert.Equal(t, core.DefaultSessionName, session.Name)

	rr = do(h, http.MethodPost, "/sessions/"+session.ID.String()+"/turns", `{"prompt": "jazz musician soul"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	result := decode[chat.TurnResult](t, rr)
	assert.Contains(t, result.Grounding, "A jazz musician's soul")
	assert.Equal(t, 1, result.Session.Turns)
	assert.Equal(t, "jazz musician", result.Session.Name)

	rr = do(h, http.MethodGet, "/sessions/"+session.ID.String()+"/messages", "")
	require.Equal(t, http.StatusOK, rr.Code)
	messages := decode[[]core.Message](t, rr)
	require.Len(t, messages, 2)
	assert.Equal(t, core.RoleUser, messages[0].Role)
	assert.Equal(t, core.RoleAssistant, messages[1].Role)

	rr = do(h, http.MethodPatch, "/sessions/"+session.ID.String(), `{"name": "Jazz"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Jazz", decode[core.Session](t, rr).Name)

	rr = do(h, http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]core.Session](t, rr), 1)

	rr = do(h, http.MethodDelete, "/sessions/"+session.ID.String(), "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(h, http.MethodGet, "/sessions/"+session.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(h, http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())
}

func TestCreateSession_WithName(t *testing.T) {
	h, _ := setupHandler(t)

	rr := do(h, http.MethodPost, "/sessions", `{"name": "Weekend picks"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Weekend picks", decode[core.Session](t, rr).Name)
}

func TestTurn_Errors(t *testing.T) {
	h, _ := setupHandler(t)

	rr := do(h, http.MethodPost, "/sessions/missing/turns", `{"prompt": "hello"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(h, http.MethodPost, "/sessions", "")
	session := decode[core.Session](t, rr)

	rr = do(h, http.MethodPost, "/sessions/"+session.ID.String()+"/turns", `{"prompt": ""}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode[map[string]string](t, rr)["error"], chat.ErrEmptyPrompt.Error())
}
