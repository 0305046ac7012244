package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tipjar-service/internal/types"
)

// intentTypeFromQuery reads and validates the intentType query parameter.
func intentTypeFromQuery(r *http.Request) (types.IntentType, bool) {
	intentType := types.IntentType(r.URL.Query().Get("intentType"))
	return intentType, intentType.Valid()
}

// handleListJobs returns all recorded jobs of one intent type.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	intentType, ok := intentTypeFromQuery(r)
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "intentType must be TOKEN_TRANSFER or RAW_TRANSACTION", nil)
		return
	}

	jobs, err := s.reconcileService.ListJobs(r.Context(), intentType)
	if err != nil {
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"jobs": jobs,
	})
}

// handleRefreshOne refreshes one job's status from the order history.
func (s *Server) handleRefreshOne(w http.ResponseWriter, r *http.Request) {
	intentType, ok := intentTypeFromQuery(r)
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "intentType must be TOKEN_TRANSFER or RAW_TRANSACTION", nil)
		return
	}

	jobID := mux.Vars(r)["id"]

	job, found, err := s.reconcileService.RefreshOne(r.Context(), intentType, jobID)
	if err != nil {
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "No job with that id", map[string]interface{}{
			"id": jobID,
		})
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// handleRefreshAll refreshes every job of one intent type, or of both
// ledgers when intentType is omitted.
func (s *Server) handleRefreshAll(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("intentType")
	if raw == "" {
		if err := s.reconcileService.RefreshEverything(r.Context()); err != nil {
			status, code, message := mapServiceError(err)
			respondError(w, status, code, message, nil)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
		return
	}

	intentType := types.IntentType(raw)
	if !intentType.Valid() {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "intentType must be TOKEN_TRANSFER or RAW_TRANSACTION", nil)
		return
	}

	jobs, err := s.reconcileService.RefreshAll(r.Context(), intentType)
	if err != nil {
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"jobs": jobs,
	})
}
