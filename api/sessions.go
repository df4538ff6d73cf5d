package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/poiesic/recall/core"
)

// SessionRequest creates or renames a session.
type SessionRequest struct {
	Name string `json:"name"`
}

// TurnRequest carries one user prompt.
type TurnRequest struct {
	Prompt string `json:"prompt"`
}

func handleCreateSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SessionRequest
		if r.ContentLength != 0 {
			if err := decodeBody(w, r, &req); err != nil {
				writeError(w, fmt.Errorf("%w: invalid request body: %w", core.ErrInvalidArgument, err))
				return
			}
		}
		session, err := deps.Sessions.NewSession(r.Context(), req.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, session)
	}
}

func handleListSessions(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := deps.Sessions.ListSessions(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if sessions == nil {
			sessions = []*core.Session{}
		}
		writeJSON(w, sessions)
	}
}

func handleGetSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := deps.Sessions.GetSession(r.Context(), core.ID(chi.URLParam(r, "id")))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, session)
	}
}

func handleRenameSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SessionRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, fmt.Errorf("%w: invalid request body: %w", core.ErrInvalidArgument, err))
			return
		}
		session, err := deps.Sessions.Rename(r.Context(), core.ID(chi.URLParam(r, "id")), req.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, session)
	}
}

func handleDeleteSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := core.ID(chi.URLParam(r, "id"))
		if err := deps.Sessions.DeleteSession(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]string{"deleted": id.String()})
	}
}

func handleListMessages(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messages, err := deps.Sessions.ListMessages(r.Context(), core.ID(chi.URLParam(r, "id")))
		if err != nil {
			writeError(w, err)
			return
		}
		if messages == nil {
			messages = []*core.Message{}
		}
		writeJSON(w, messages)
	}
}

func handleTurn(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TurnRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, fmt.Errorf("%w: invalid request body: %w", core.ErrInvalidArgument, err))
			return
		}

		result, err := deps.Chat.Turn(r.Context(), core.ID(chi.URLParam(r, "id")), req.Prompt)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, result)
	}
}
