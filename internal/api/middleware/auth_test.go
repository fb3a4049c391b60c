// Task 5.2: Unit tests for AuthMiddleware.
package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/matiasleandrokruk/draftforge/internal/api/ctxkeys"
	pkgauth "github.com/matiasleandrokruk/draftforge/pkg/auth"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "middleware-test-secret") //nolint:errcheck
	os.Exit(m.Run())
}

// nextRecorder captures the context values the middleware injected.
type nextRecorder struct {
	called bool
	userID string
	role   string
}

func (n *nextRecorder) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n.called = true
		n.userID, _ = r.Context().Value(ctxkeys.UserID).(string)
		n.role, _ = r.Context().Value(ctxkeys.Role).(string)
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(t *testing.T, authHeader string) (*httptest.ResponseRecorder, *nextRecorder) {
	t.Helper()
	next := &nextRecorder{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	AuthMiddleware(next.handler()).ServeHTTP(rec, req)
	return rec, next
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	t.Parallel()

	token, err := pkgauth.GenerateJWT("user-1", pkgauth.RoleEditor)
	if err != nil {
		t.Fatalf("GenerateJWT error = %v", err)
	}

	rec, next := doRequest(t, "Bearer "+token)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !next.called {
		t.Fatal("next handler not called")
	}
	if next.userID != "user-1" || next.role != pkgauth.RoleEditor {
		t.Errorf("injected context = %q/%q", next.userID, next.role)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	t.Parallel()

	rec, next := doRequest(t, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if next.called {
		t.Error("next handler must not run without a token")
	}
}

func TestAuthMiddleware_WrongScheme(t *testing.T) {
	t.Parallel()

	rec, _ := doRequest(t, "Basic dXNlcjpwdw==")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthMiddleware_GarbageToken(t *testing.T) {
	t.Parallel()

	rec, _ := doRequest(t, "Bearer not.a.jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthMiddleware_RoleWithoutEditCapability(t *testing.T) {
	t.Parallel()

	token, err := pkgauth.GenerateJWT("user-2", "viewer")
	if err != nil {
		t.Fatalf("GenerateJWT error = %v", err)
	}

	rec, next := doRequest(t, "Bearer "+token)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if next.called {
		t.Error("next handler must not run for a non-editor role")
	}
}

func TestExtractBearerToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		header, want string
	}{
		{"Bearer abc", "abc"},
		{"Bearer  abc ", "abc"},
		{"bearer abc", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		if got := extractBearerToken(req); got != tc.want {
			t.Errorf("extractBearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}
