package document

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service provides document and term access over sqlite.
type Service struct {
	db *sql.DB
}

// NewService creates a new document service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Get returns the document with the given id, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	var doc Document
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, content, status, created_at, updated_at
		FROM documents WHERE id = ?`, id,
	).Scan(&doc.ID, &doc.Title, &doc.Content, &doc.Status, &doc.CreatedAt, &doc.UpdatedAt)
	if err == sql.ErrNoRows {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("document get: %w", err)
	}
	return doc, nil
}

// Create inserts a new document and returns it.
func (s *Service) Create(ctx context.Context, title, content string) (Document, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	doc := Document{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, content, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Title, doc.Content, doc.Status, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return Document{}, fmt.Errorf("document create: %w", err)
	}
	return doc, nil
}

// SetStatus updates a document's status.
func (s *Service) SetStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("document set status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateTerm inserts a term if missing and returns it. Uniqueness is
// (taxonomy, name); an existing pair returns the existing row.
func (s *Service) CreateTerm(ctx context.Context, taxonomy, name string) (Term, error) {
	term := Term{ID: uuid.NewString(), Taxonomy: taxonomy, Name: name}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO terms (id, taxonomy, name) VALUES (?, ?, ?)`,
		term.ID, term.Taxonomy, term.Name,
	)
	if err != nil {
		return Term{}, fmt.Errorf("term create: %w", err)
	}
	err = s.db.QueryRowContext(ctx, `
		SELECT id FROM terms WHERE taxonomy = ? AND name = ?`, taxonomy, name,
	).Scan(&term.ID)
	if err != nil {
		return Term{}, fmt.Errorf("term lookup: %w", err)
	}
	return term, nil
}

// TermNames lists every term name in a taxonomy, sorted.
func (s *Service) TermNames(ctx context.Context, taxonomy string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM terms WHERE taxonomy = ? ORDER BY name`, taxonomy)
	if err != nil {
		return nil, fmt.Errorf("term names: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("term names scan: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// TermIDsByName maps term names to ids within a taxonomy. Names without a
// matching term are silently dropped; the caller decides whether that
// matters.
func (s *Service) TermIDsByName(ctx context.Context, taxonomy string, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(names))
	placeholders = placeholders[:len(placeholders)-1]

	params := make([]any, 0, len(names)+1)
	params = append(params, taxonomy)
	for _, n := range names {
		params = append(params, n)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM terms WHERE taxonomy = ? AND name IN ("+placeholders+")",
		params...)
	if err != nil {
		return nil, fmt.Errorf("term ids: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("term ids scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AssignTerms attaches terms to a document. With appendOnly the new ids
// union with what is already assigned; otherwise existing assignments in
// the taxonomy are replaced. Either way nothing outside the taxonomy is
// touched.
func (s *Service) AssignTerms(ctx context.Context, docID, taxonomy string, termIDs []string, appendOnly bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("assign terms begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if !appendOnly {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM document_terms WHERE document_id = ? AND taxonomy = ?`,
			docID, taxonomy,
		); err != nil {
			return fmt.Errorf("assign terms clear: %w", err)
		}
	}

	for _, termID := range termIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO document_terms (document_id, term_id, taxonomy)
			VALUES (?, ?, ?)`,
			docID, termID, taxonomy,
		); err != nil {
			return fmt.Errorf("assign terms insert: %w", err)
		}
	}

	return tx.Commit()
}

// AssignedTermIDs lists term ids attached to a document within a taxonomy.
func (s *Service) AssignedTermIDs(ctx context.Context, docID, taxonomy string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT term_id FROM document_terms WHERE document_id = ? AND taxonomy = ?
		ORDER BY term_id`, docID, taxonomy)
	if err != nil {
		return nil, fmt.Errorf("assigned terms: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("assigned terms scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
