// Task 5.3: HTTP handler for taxonomy term suggestions.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/matiasleandrokruk/draftforge/internal/domain/assist"
)

// TermSuggester is the slice of the assist service this handler needs.
type TermSuggester interface {
	SuggestTerms(ctx context.Context, args assist.SuggestArgs) ([]string, error)
}

// SuggestHandler handles POST /api/v1/ai/terms/suggest.
type SuggestHandler struct {
	assist TermSuggester
}

// NewSuggestHandler creates a new SuggestHandler.
func NewSuggestHandler(a TermSuggester) *SuggestHandler {
	return &SuggestHandler{assist: a}
}

// SuggestRequest is the request body.
type SuggestRequest struct {
	Taxonomy string `json:"taxonomy"`
	Count    int    `json:"count,omitempty"`
	Context  string `json:"context,omitempty"`
	Model    string `json:"model,omitempty"`
}

// SuggestResponse carries the suggested term names.
type SuggestResponse struct {
	Terms []string `json:"terms"`
}

// Suggest handles POST /api/v1/ai/terms/suggest.
//
// Response codes:
//   - 200 OK: {terms}
//   - 400 Bad Request: invalid JSON or missing taxonomy
//   - 502 Bad Gateway: provider call failed or unparseable reply
func (h *SuggestHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}
	if req.Taxonomy == "" {
		writeError(w, http.StatusBadRequest, "taxonomy is required")
		return
	}

	terms, err := h.assist.SuggestTerms(r.Context(), assist.SuggestArgs{
		Taxonomy: req.Taxonomy,
		Count:    req.Count,
		Context:  req.Context,
		Model:    req.Model,
		ActorID:  actorID(r.Context()),
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, SuggestResponse{Terms: terms})
}
