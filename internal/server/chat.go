package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/medassist-labs/medchat/internal/format"
	"github.com/medassist-labs/medchat/internal/logger"
	"github.com/medassist-labs/medchat/internal/prompt"
	"github.com/medassist-labs/medchat/internal/session"
	"github.com/medassist-labs/medchat/internal/upstream"
)

type chatResponse struct {
	Response string `json:"response"`
}

// handleChat runs the per-turn state machine: load session, classify the new
// prompt, build the upstream prompt, invoke with retry and rotation, format
// and persist. Nothing is written to disk unless the turn completes.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.FormValue("session_id"))
	userPrompt := strings.TrimSpace(r.FormValue("prompt"))

	if sessionID == "" {
		writeError(w, http.StatusUnprocessableEntity, "session_id is required")
		return
	}

	// Identity is consulted, never enforced. A bad token logs and proceeds
	// anonymously.
	var userID *string
	if s.verifier != nil {
		user, err := s.verifier.Identify(r)
		switch {
		case err != nil:
			logger.Debug("bearer token rejected", "error", err)
		case user != nil:
			userID = &user.ID
		}
	}

	turns, err := s.sessions.Load(sessionID)
	switch {
	case errors.Is(err, session.ErrNotFound):
		turns = []session.Turn{} // fresh conversation
	case errors.Is(err, session.ErrInvalidID):
		writeError(w, http.StatusUnprocessableEntity, "invalid session_id")
		return
	case err != nil:
		logger.Error("load session", "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// First contact with nothing asked: welcome without persisting.
	if len(turns) == 0 && userPrompt == "" {
		writeJSON(w, http.StatusOK, chatResponse{Response: s.welcome})
		return
	}

	kind := s.prompts.Classify(userPrompt)
	if kind == prompt.Greeting {
		turns = append(turns,
			session.Turn{Role: session.RoleUser, Text: userPrompt},
			session.Turn{Role: session.RoleAssistant, Text: s.greeting})
		if err := s.sessions.Save(sessionID, turns); err != nil {
			logger.Error("save session", "session_id", sessionID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, chatResponse{Response: s.greeting})
		return
	}

	built := s.prompts.Build(turns, userPrompt, kind)

	// The upstream call and its retries run to completion even if the client
	// disconnects; only the bounded attempt count ends them.
	answer, err := s.generate(context.WithoutCancel(r.Context()), built)
	if err != nil {
		if errors.Is(err, upstream.ErrCredentialsExhausted) {
			logger.Error("upstream credentials exhausted", "session_id", sessionID, "error", err)
			writeError(w, http.StatusServiceUnavailable, "service is temporarily over capacity, please try again later")
			return
		}
		logger.Error("upstream call failed", "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "something went wrong, please try again")
		return
	}

	formatted := format.Response(answer)
	turns = append(turns,
		session.Turn{Role: session.RoleUser, Text: userPrompt},
		session.Turn{Role: session.RoleAssistant, Text: formatted})
	if err := s.sessions.Save(sessionID, turns); err != nil {
		logger.Error("save session", "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.recordExchange(sessionID, userID, userPrompt, formatted)

	writeJSON(w, http.StatusOK, chatResponse{Response: formatted})
}

// generate runs one orchestrated upstream call. Quota exhaustion triggers a
// single credential rotation followed by one more orchestrated call; a second
// exhaustion, or no credential left to rotate to, is terminal.
func (s *Server) generate(ctx context.Context, built string) (string, error) {
	op := func() (string, error) {
		return s.upstream.Current().Generate(ctx, built)
	}

	answer, err := s.retry.Execute(ctx, op)
	if err == nil || !errors.Is(err, upstream.ErrQuotaExceeded) {
		return answer, err
	}

	if _, rerr := s.upstream.Rotate(); rerr != nil {
		return "", rerr
	}
	answer, err = s.retry.Execute(ctx, op)
	if errors.Is(err, upstream.ErrQuotaExceeded) {
		return "", fmt.Errorf("quota exhausted after rotation: %w", upstream.ErrCredentialsExhausted)
	}
	return answer, err
}

// recordExchange writes the audit row. Best effort: failures are logged and
// never fail the chat request.
func (s *Server) recordExchange(sessionID string, userID *string, question, answer string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.RecordExchange(sessionID, userID, question, answer); err != nil {
		logger.Warn("record exchange", "session_id", sessionID, "error", err)
	}
}
