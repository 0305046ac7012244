package api

import (
	"net/http"
)

// handleGetAccount returns the wallet accounts across supported networks.
// With ?network=current, only the tipping-network account is returned.
func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("network") == "current" {
		account, err := s.portfolioService.GetNetworkAccount(r.Context())
		if err != nil {
			status, code, message := mapServiceError(err)
			respondError(w, status, code, message, nil)
			return
		}
		respondJSON(w, http.StatusOK, account)
		return
	}

	accounts, err := s.portfolioService.GetAccounts(r.Context())
	if err != nil {
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": accounts,
	})
}

// handleGetPortfolio returns the aggregated portfolio view.
func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolio, err := s.portfolioService.GetPortfolio(r.Context())
	if err != nil {
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	respondJSON(w, http.StatusOK, portfolio)
}

// handleGetActivity returns recent portfolio activity.
func (s *Server) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	activity, err := s.portfolioService.GetActivity(r.Context())
	if err != nil {
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"activity": activity,
	})
}
