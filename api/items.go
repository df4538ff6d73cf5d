package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/ingestion"
)

var errNoIngester = errors.New("ingestion is not configured")

func handleIngest(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Ingester == nil {
			writeError(w, errNoIngester)
			return
		}
		blob := r.URL.Query().Get("blob")
		if blob == "" {
			blob = ingestion.DefaultBlobName
		}

		report, err := deps.Ingester.Run(r.Context(), blob)
		if err != nil {
			deps.Logger.Error("ingest failed", "blob", blob, "err", err)
			writeError(w, err)
			return
		}
		writeJSON(w, report)
	}
}

func handleAddItem(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var item core.Item
		if err := decodeBody(w, r, &item); err != nil {
			writeError(w, fmt.Errorf("%w: invalid request body: %w", core.ErrInvalidArgument, err))
			return
		}

		saved, err := deps.Catalog.UpsertItem(r.Context(), &item)
		if err != nil {
			writeError(w, err)
			return
		}
		saved.Vector = nil
		writeJSON(w, saved)
	}
}

func handleGetItem(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := deps.Catalog.GetItem(r.Context(), core.ID(chi.URLParam(r, "id")))
		if err != nil {
			writeError(w, err)
			return
		}
		item.Vector = nil
		writeJSON(w, item)
	}
}

func handleRemoveItem(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := core.ID(chi.URLParam(r, "id"))
		if err := deps.Catalog.DeleteItemByID(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]string{"deleted": id.String()})
	}
}
