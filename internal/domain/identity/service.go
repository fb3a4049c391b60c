// Package identity — Task 1.5: User records and token issuing. Users are
// provisioned from configuration; there is no self-service signup.
package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/matiasleandrokruk/draftforge/pkg/auth"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong
// password. The two cases are indistinguishable on purpose.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service manages the users table and issues JWTs.
type Service struct {
	db *sql.DB
}

// NewService creates a new identity service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// EnsureUser provisions a user if it does not exist yet. An existing user
// keeps its stored hash and role; seeding never rotates credentials.
func (s *Service) EnsureUser(ctx context.Context, userID, password, role string) error {
	if userID == "" || password == "" {
		return fmt.Errorf("ensure user: user id and password required")
	}
	if role == "" {
		role = auth.RoleEditor
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO users (id, password_hash, role, created_at)
		VALUES (?, ?, ?, ?)`,
		userID, hash, role, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// IssueToken verifies the password and returns a signed JWT carrying the
// user's role.
func (s *Service) IssueToken(ctx context.Context, userID, password string) (string, error) {
	var hash, role string
	err := s.db.QueryRowContext(ctx, `
		SELECT password_hash, role FROM users WHERE id = ?`, userID,
	).Scan(&hash, &role)
	if err == sql.ErrNoRows {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	if !auth.VerifyPassword(hash, password) {
		return "", ErrInvalidCredentials
	}

	token, err := auth.GenerateJWT(userID, role)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Role returns the stored role for a user id.
func (s *Service) Role(ctx context.Context, userID string) (string, error) {
	var role string
	err := s.db.QueryRowContext(ctx, `SELECT role FROM users WHERE id = ?`, userID).Scan(&role)
	if err == sql.ErrNoRows {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("role lookup: %w", err)
	}
	return role, nil
}
