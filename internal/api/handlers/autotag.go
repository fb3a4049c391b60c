// Task 5.3: HTTP handlers for the batch tagging job.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/matiasleandrokruk/draftforge/internal/domain/autotag"
)

// BatchService is the slice of the autotag engine the handlers need.
type BatchService interface {
	Start(ctx context.Context, docIDs []string, taxonomy string) (autotag.Status, error)
	Status(ctx context.Context) (autotag.Status, error)
	Cancel(ctx context.Context) error
}

// AutotagHandler handles /api/v1/autotag.
type AutotagHandler struct {
	batch BatchService
}

// NewAutotagHandler creates a new AutotagHandler.
func NewAutotagHandler(batch BatchService) *AutotagHandler {
	return &AutotagHandler{batch: batch}
}

// StartAutotagRequest is the request body for POST /api/v1/autotag.
type StartAutotagRequest struct {
	DocIDs   []string `json:"doc_ids"`
	Taxonomy string   `json:"taxonomy"`
}

// Start handles POST /api/v1/autotag.
//
// Response codes:
//   - 202 Accepted: job created, body is the initial status
//   - 400 Bad Request: invalid JSON or missing fields
//   - 409 Conflict: a job is already running
func (h *AutotagHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartAutotagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}
	if len(req.DocIDs) == 0 || req.Taxonomy == "" {
		writeError(w, http.StatusBadRequest, "doc_ids and taxonomy are required")
		return
	}

	status, err := h.batch.Start(r.Context(), req.DocIDs, req.Taxonomy)
	if err != nil {
		if errors.Is(err, autotag.ErrAlreadyRunning) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, status)
}

// Status handles GET /api/v1/autotag.
//
// Response codes:
//   - 200 OK: current job status
//   - 404 Not Found: no job running
func (h *AutotagHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.batch.Status(r.Context())
	if err != nil {
		if errors.Is(err, autotag.ErrNoActiveJob) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// Cancel handles DELETE /api/v1/autotag.
//
// Response codes:
//   - 204 No Content: job canceled
//   - 404 Not Found: no job running
func (h *AutotagHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.batch.Cancel(r.Context()); err != nil {
		if errors.Is(err, autotag.ErrNoActiveJob) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
