package httpd

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/marmos91/dittodrive/internal/logger"
	"github.com/marmos91/dittodrive/pkg/auth"
)

// handleCreateUser registers a new user.
//
// POST /users {"email": ..., "password": ...} -> 201 {"id", "email"}
//
// Failures:
//   - 400 "Missing email" / "Missing password" / "Already exist"
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	// A malformed body is treated the same as an empty one; the field
	// checks below produce the specific error.
	_ = json.NewDecoder(r.Body).Decode(&body)

	user, err := s.auth.Register(r.Context(), body.Email, body.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingEmail):
			writeError(w, http.StatusBadRequest, "Missing email")
		case errors.Is(err, auth.ErrMissingPassword):
			writeError(w, http.StatusBadRequest, "Missing password")
		case errors.Is(err, auth.ErrEmailExists):
			writeError(w, http.StatusBadRequest, "Already exist")
		default:
			logger.Error("failed to register user: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, newUserView(user))
}

// handleConnect exchanges Basic credentials for a session token.
//
// GET /connect (Authorization: Basic ...) -> 200 {"token": ...}
//
// Every authentication failure is the same 401 "Unauthorized"; the caller
// never learns whether the email or the password was wrong.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	email, password, ok := r.BasicAuth()
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	token, err := s.auth.CreateSession(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		logger.Error("failed to create session: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// handleDisconnect destroys the caller's session.
//
// GET /disconnect (X-Token) -> 204
func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.DestroySession(r.Context(), r.Header.Get(tokenHeader)); err != nil {
		logger.Error("failed to destroy session: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleMe returns the authenticated user.
//
// GET /users/me (X-Token) -> 200 {"id", "email"}
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.auth.GetUser(r.Context(), callerFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		logger.Error("failed to load user: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	writeJSON(w, http.StatusOK, newUserView(user))
}
