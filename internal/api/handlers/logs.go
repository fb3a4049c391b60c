// Task 5.3: HTTP handler for the provider call log listing.
package handlers

import (
	"context"
	"net/http"

	"github.com/matiasleandrokruk/draftforge/internal/domain/apilog"
)

// LogQuerier is the slice of the log service this handler needs.
type LogQuerier interface {
	Query(ctx context.Context, args apilog.QueryArgs) ([]apilog.Record, int, error)
}

// LogsHandler handles GET /api/v1/logs.
type LogsHandler struct {
	logs LogQuerier
}

// NewLogsHandler creates a new LogsHandler.
func NewLogsHandler(logs LogQuerier) *LogsHandler {
	return &LogsHandler{logs: logs}
}

// LogsResponse is the paged listing body.
type LogsResponse struct {
	Items []apilog.Record `json:"items"`
	Total int             `json:"total"`
}

// List handles GET /api/v1/logs.
// Query params: page, per_page, search, order_by, order, tool.
func (h *LogsHandler) List(w http.ResponseWriter, r *http.Request) {
	page := parsePageParams(r)
	q := r.URL.Query()

	items, total, err := h.logs.Query(r.Context(), apilog.QueryArgs{
		Page:    page.Page,
		PerPage: page.PerPage,
		Search:  q.Get("search"),
		OrderBy: q.Get("order_by"),
		Order:   q.Get("order"),
		Tool:    q.Get("tool"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if items == nil {
		items = []apilog.Record{}
	}

	writeJSON(w, http.StatusOK, LogsResponse{Items: items, Total: total})
}
