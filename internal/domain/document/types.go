// Package document is the minimal content store the assist and batch
// engines read from (Task 4.1).
package document

import "errors"

// Document statuses. Trashed documents are invisible to automation.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusTrashed   = "trashed"
)

// ErrNotFound is returned when a document id does not exist.
var ErrNotFound = errors.New("document not found")

// Document is one content item. Content is opaque text.
type Document struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Term is one taxonomy entry, unique by (taxonomy, name).
type Term struct {
	ID       string `json:"id"`
	Taxonomy string `json:"taxonomy"`
	Name     string `json:"name"`
}
