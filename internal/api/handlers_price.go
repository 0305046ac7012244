package api

import (
	"net/http"
	"strconv"
)

// handleGetPrice returns the current USD/ETH rate.
func (s *Server) handleGetPrice(w http.ResponseWriter, r *http.Request) {
	rate, err := s.priceService.GetETHUSD(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, ErrCodeServiceUnavailable, "Price feed unavailable", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]float64{
		"ethUsd": rate,
	})
}

// handleGetQuote converts a USD amount into a decimal ETH amount at the
// current rate.
func (s *Server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	usd, err := strconv.ParseFloat(r.URL.Query().Get("usd"), 64)
	if err != nil || usd <= 0 {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "usd must be a positive number", nil)
		return
	}

	amount, err := s.priceService.QuoteETH(r.Context(), usd)
	if err != nil {
		respondError(w, http.StatusBadGateway, ErrCodeServiceUnavailable, "Price feed unavailable", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"usd":       usd,
		"ethAmount": amount,
	})
}
