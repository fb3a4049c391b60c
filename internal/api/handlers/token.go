// Task 5.3: HTTP handler for token issuing (public endpoint — no AuthMiddleware).
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/matiasleandrokruk/draftforge/internal/domain/identity"
)

// TokenIssuer is the slice of the identity service this handler needs.
type TokenIssuer interface {
	IssueToken(ctx context.Context, userID, password string) (string, error)
}

// TokenHandler handles POST /auth/token.
type TokenHandler struct {
	identity TokenIssuer
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(identity TokenIssuer) *TokenHandler {
	return &TokenHandler{identity: identity}
}

// TokenRequest is the request body for POST /auth/token.
type TokenRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

// TokenResponse is the success body.
type TokenResponse struct {
	Token string `json:"token"`
}

// Issue handles POST /auth/token.
//
// Response codes:
//   - 200 OK: credentials valid, token returned
//   - 400 Bad Request: invalid JSON or missing fields
//   - 401 Unauthorized: unknown user or wrong password (indistinguishable)
func (h *TokenHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}
	if req.UserID == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "user_id and password are required")
		return
	}

	token, err := h.identity.IssueToken(r.Context(), req.UserID, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "token issuing failed")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}
