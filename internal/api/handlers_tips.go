package api

import (
	"net/http"

	"github.com/tipjar-service/internal/service"
)

// SendTokenRequest represents the request body for a token-transfer tip.
type SendTokenRequest struct {
	NetworkID    string `json:"networkId"`
	Recipient    string `json:"recipient"`
	TokenAddress string `json:"tokenAddress"`
	Amount       string `json:"amount"`
}

// SendCoffeeRequest represents the request body for a coffee tip.
type SendCoffeeRequest struct {
	NetworkID string `json:"networkId"`
	From      string `json:"from"`
	Message   string `json:"message"`
	Amount    string `json:"amount"`
}

// RequestMessagesRequest represents the request body for a message read call.
type RequestMessagesRequest struct {
	From string `json:"from"`
}

// handleSendToken submits a token-transfer tip.
func (s *Server) handleSendToken(w http.ResponseWriter, r *http.Request) {
	var req SendTokenRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Recipient == "" || req.Amount == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "recipient and amount are required", nil)
		return
	}

	job, err := s.tipService.SendToken(r.Context(), &service.SendTokenInput{
		NetworkID:    req.NetworkID,
		Recipient:    req.Recipient,
		TokenAddress: req.TokenAddress,
		Amount:       req.Amount,
	})
	if err != nil {
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	respondJSON(w, http.StatusCreated, job)
}

// handleSendCoffee submits a coffee tip carrying a message to the tip contract.
func (s *Server) handleSendCoffee(w http.ResponseWriter, r *http.Request) {
	var req SendCoffeeRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.From == "" || req.Amount == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "from and amount are required", nil)
		return
	}

	job, err := s.tipService.SendCoffee(r.Context(), &service.SendCoffeeInput{
		NetworkID: req.NetworkID,
		From:      req.From,
		Message:   req.Message,
		Amount:    req.Amount,
	})
	if err != nil {
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	respondJSON(w, http.StatusCreated, job)
}

// handleRequestMessages submits a zero-value read call for the stored
// messages and returns the intent id.
func (s *Server) handleRequestMessages(w http.ResponseWriter, r *http.Request) {
	var req RequestMessagesRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.From == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "from is required", nil)
		return
	}

	intentID, err := s.tipService.RequestMessages(r.Context(), req.From)
	if err != nil {
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{
		"intentId": intentID,
	})
}
