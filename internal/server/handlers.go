package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/medassist-labs/medchat/internal/logger"
	"github.com/medassist-labs/medchat/internal/session"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleGetSession returns the stored turn sequence. 404 only when no record
// exists on disk at all; an existing-but-empty session returns [].
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	turns, err := s.sessions.Load(id)
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "session not found")
		return
	case errors.Is(err, session.ErrInvalidID):
		writeError(w, http.StatusUnprocessableEntity, "invalid session id")
		return
	case err != nil:
		logger.Error("load session", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if turns == nil {
		turns = []session.Turn{}
	}
	writeJSON(w, http.StatusOK, turns)
}

// Helpers

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"detail": msg})
}
