package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/isaacjstriker/ninetris/internal/auth"
)

// RegisterUserRequest defines the shape of the registration request
type RegisterUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegister handles new user registration
func (s *APIServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid request body"})
		return
	}

	if err := auth.ValidateUsername(req.Username); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	if err := auth.ValidateEmail(req.Email); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "failed to hash password"})
		return
	}

	user, err := s.db.CreateUser(r.Context(), req.Username, req.Email, hashedPassword)
	if err != nil {
		log.Printf("[WARN] Error creating user: %v", err)

		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, apiError{Error: "username or email already exists"})
		} else {
			writeJSON(w, http.StatusInternalServerError, apiError{Error: "failed to create user"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// isUniqueViolation recognizes duplicate key errors from each supported driver.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "Duplicate entry")
}
