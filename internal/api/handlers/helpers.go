// Task 5.3: Handler helper functions shared across the package.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/matiasleandrokruk/draftforge/internal/api/ctxkeys"
)

const (
	headerContentType = "Content-Type"
	mimeJSON          = "application/json"

	errInvalidBody    = "invalid request body"
	errFailedToEncode = "failed to encode response"

	defaultPerPage = 25
	maxPerPage     = 100
)

// writeError writes a JSON error response with the given status code.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set(headerContentType, mimeJSON)
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message}) //nolint:errcheck
}

// writeJSON writes a JSON success response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set(headerContentType, mimeJSON)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, errFailedToEncode, http.StatusInternalServerError)
	}
}

// actorID reads the authenticated user id injected by AuthMiddleware.
// Empty when the route is public or the middleware is absent (tests).
func actorID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkeys.UserID).(string)
	return id
}

// pageParams holds parsed page and per_page query values.
type pageParams struct {
	Page    int
	PerPage int
}

// parsePageParams extracts and clamps page/per_page from URL query params.
func parsePageParams(r *http.Request) pageParams {
	p := pageParams{Page: 1, PerPage: defaultPerPage}

	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && page > 0 {
		p.Page = page
	}
	if per, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && per > 0 {
		if per > maxPerPage {
			per = maxPerPage
		}
		p.PerPage = per
	}
	return p
}
