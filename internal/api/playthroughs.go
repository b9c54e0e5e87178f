package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/isaacjstriker/ninetris/internal/database"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 100
)

func (s *APIServer) handleGetVariants(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.variants)
}

func (s *APIServer) handleGetSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.hub.Sessions())
}

// handleGetRecentPlaythroughs lists the latest archived playthroughs
func (s *APIServer) handleGetRecentPlaythroughs(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxRecentLimit {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "limit must be between 1 and 100"})
			return
		}
		limit = n
	}

	summaries, err := s.db.GetRecentPlaythroughs(r.Context(), limit)
	if err != nil {
		log.Printf("[WARN] Failed to list playthroughs: %v", err)
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "failed to list playthroughs"})
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// handleGetPlaythrough returns one playthrough with its journal. With
// ?verify=true it is replayed first and the result reported alongside.
func (s *APIServer) handleGetPlaythrough(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid playthrough id"})
		return
	}

	p, err := s.db.GetPlaythrough(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, apiError{Error: "playthrough not found"})
		return
	}
	if err != nil {
		log.Printf("[WARN] Failed to load playthrough %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "failed to load playthrough"})
		return
	}

	verify, _ := strconv.ParseBool(r.URL.Query().Get("verify"))
	if !verify {
		writeJSON(w, http.StatusOK, p)
		return
	}

	resp := map[string]any{"playthrough": p, "verified": true}
	if err := p.Verify(); err != nil {
		resp["verified"] = false
		resp["error"] = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}
