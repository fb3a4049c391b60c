// Task 5.2: Bearer JWT AuthMiddleware.
// Reads Authorization: Bearer <token>, validates it, injects user_id + role
// into context, and enforces the edit capability every protected route
// requires.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/matiasleandrokruk/draftforge/internal/api/ctxkeys"
	pkgauth "github.com/matiasleandrokruk/draftforge/pkg/auth"
)

// AuthMiddleware validates the Bearer JWT token and injects claims into context.
//
// Flow:
//  1. Read "Authorization: Bearer <token>" header
//  2. Reject if missing or not Bearer scheme → 401
//  3. Parse + validate JWT → 401 on invalid/expired
//  4. Reject roles without edit capability → 403
//  5. Inject ctxkeys.UserID and ctxkeys.Role into context
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractBearerToken(r)
		if tokenString == "" {
			writeAuthError(w, http.StatusUnauthorized, "missing or invalid Authorization header")
			return
		}

		claims, err := pkgauth.ParseJWT(tokenString)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		if !claims.CanEdit() {
			writeAuthError(w, http.StatusForbidden, "insufficient role")
			return
		}

		ctx := r.Context()
		ctx = ctxkeys.WithValue(ctx, ctxkeys.UserID, claims.UserID)
		ctx = ctxkeys.WithValue(ctx, ctxkeys.Role, claims.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractBearerToken extracts the token from "Authorization: Bearer <token>".
// Returns empty string if header is missing, wrong scheme, or token is empty.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	// Must start with "Bearer " (case-sensitive per RFC 7235)
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// writeAuthError writes a JSON error response in the handlers' format.
func writeAuthError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message}) //nolint:errcheck
}
