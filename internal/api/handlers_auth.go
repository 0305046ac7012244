package api

import (
	"net/http"
)

// LoginRequest represents the request body for the login endpoint.
type LoginRequest struct {
	IDToken string `json:"idToken"`
}

// handleLogin exchanges a Google id token for a wallet provider session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	session, err := s.authService.Login(r.Context(), req.IDToken)
	if err != nil {
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	respondJSON(w, http.StatusOK, session)
}
