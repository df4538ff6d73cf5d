package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/poiesic/recall/catalog"
	"github.com/poiesic/recall/chat"
	"github.com/poiesic/recall/ingestion"
	"github.com/poiesic/recall/storage"
)

const maxBodySize = 10 << 20 // 10MB

// Ingester loads a named blob into the catalog.
type Ingester interface {
	Run(ctx context.Context, name string) (ingestion.Report, error)
}

// Deps are the services behind the HTTP actions.
type Deps struct {
	Catalog  *catalog.Store
	Sessions *chat.SessionStore
	Chat     *chat.Orchestrator
	Ingester Ingester // optional; /ingest answers 400 without it
	Logger   *slog.Logger
}

// NewHandler returns the router for every entry action.
func NewHandler(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	deps.Logger = deps.Logger.With("component", "api")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(deps.Logger))

	r.Get("/health", handleHealth)
	r.Post("/ingest", handleIngest(deps))

	r.Route("/items", func(r chi.Router) {
		r.Post("/", handleAddItem(deps))
		r.Get("/{id}", handleGetItem(deps))
		r.Delete("/{id}", handleRemoveItem(deps))
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", handleCreateSession(deps))
		r.Get("/", handleListSessions(deps))
		r.Get("/{id}", handleGetSession(deps))
		r.Patch("/{id}", handleRenameSession(deps))
		r.Delete("/{id}", handleDeleteSession(deps))
		r.Get("/{id}/messages", handleListMessages(deps))
		r.Post("/{id}/turns", handleTurn(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// writeJSON answers 200 with v encoded as JSON.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

// writeError answers with the error message verbatim. Missing records map
// to 404, everything else to 400.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusBadRequest
	if errors.Is(err, storage.ErrNotFound) {
		code = http.StatusNotFound
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
