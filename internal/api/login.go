package api

import (
	"log"
	"net/http"

	"github.com/isaacjstriker/ninetris/internal/auth"
)

// LoginRequest defines the shape of the login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse defines the shape of the successful login response
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// handleLogin checks credentials and issues a JWT
func (s *APIServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid request body"})
		return
	}

	user, passwordHash, err := s.db.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		permissionDenied(w)
		return
	}

	if !auth.CheckPassword(req.Password, passwordHash) {
		permissionDenied(w)
		return
	}

	token, err := auth.CreateToken(user.ID, user.Username, s.config.JWTSecret, auth.TokenTTL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "failed to create token"})
		return
	}

	if err := s.db.TouchLastLogin(r.Context(), user.ID); err != nil {
		log.Printf("[WARN] %v", err)
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:    token,
		Username: user.Username,
	})
}

// handleLogout acknowledges a logout. Tokens are stateless, so the client
// simply discards its copy.
func (s *APIServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	user, _ := GetUserFromContext(r.Context())
	log.Printf("[INFO] User %s logged out", user.Username)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
