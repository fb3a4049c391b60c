// Task 5.3: HTTP handler for the synchronous text tools.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/matiasleandrokruk/draftforge/internal/domain/assist"
)

// PromptRunner is the slice of the assist service the prompt handler needs.
type PromptRunner interface {
	RunPrompt(ctx context.Context, args assist.PromptArgs) (assist.PromptResult, error)
}

// PromptHandler handles POST /api/v1/ai/prompt.
type PromptHandler struct {
	assist PromptRunner
}

// NewPromptHandler creates a new PromptHandler.
func NewPromptHandler(a PromptRunner) *PromptHandler {
	return &PromptHandler{assist: a}
}

// PromptRequest is the request body. Template defaults to the tool name.
type PromptRequest struct {
	Tool     string            `json:"tool"`
	Model    string            `json:"model,omitempty"`
	Template string            `json:"template,omitempty"`
	Vars     map[string]string `json:"vars"`
	System   string            `json:"system,omitempty"`
}

// Run handles POST /api/v1/ai/prompt.
//
// Response codes:
//   - 200 OK: {text, usage, model, response_time_ms}
//   - 400 Bad Request: invalid JSON, missing tool, or unknown template
//   - 502 Bad Gateway: provider call failed (gateway message surfaced verbatim)
func (h *PromptHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}
	if req.Tool == "" {
		writeError(w, http.StatusBadRequest, "tool is required")
		return
	}

	result, err := h.assist.RunPrompt(r.Context(), assist.PromptArgs{
		Tool:     req.Tool,
		Model:    req.Model,
		Template: req.Template,
		Vars:     req.Vars,
		System:   req.System,
		ActorID:  actorID(r.Context()),
	})
	if err != nil {
		if errors.Is(err, assist.ErrUnknownTemplate) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}
