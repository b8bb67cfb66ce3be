package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// startSession handles POST /api/v1/sessions/start
func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if !parseJSON(w, r, &req) {
		return
	}
	session, err := s.sessions.Start(r.Context(), actorFrom(r), req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// stopSession handles POST /api/v1/sessions/stop
func (s *Server) stopSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID       string `json:"user_id"`
		SessionID    string `json:"session_id"`
		ActiveTimeMs int64  `json:"active_time_ms"`
	}
	if !parseJSON(w, r, &req) {
		return
	}
	session, err := s.sessions.Stop(r.Context(), actorFrom(r), req.UserID, req.SessionID, req.ActiveTimeMs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// isSessionActive handles GET /api/v1/sessions/active/{user_id}
func (s *Server) isSessionActive(w http.ResponseWriter, r *http.Request) {
	active, err := s.sessions.IsActive(r.Context(), actorFrom(r), mux.Vars(r)["user_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"active": active})
}

// sessionStats handles GET /api/v1/sessions/stats
func (s *Server) sessionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.sessions.Stats(r.Context(), actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
