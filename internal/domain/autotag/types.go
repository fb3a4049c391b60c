// Package autotag — Task 4.2: Batch taxonomy assignment over the document
// store. One job at a time; items are spaced out through the durable
// scheduler so provider rate limits stay comfortable.
package autotag

import (
	"context"
	"errors"
	"time"

	"github.com/matiasleandrokruk/draftforge/internal/domain/apilog"
	"github.com/matiasleandrokruk/draftforge/internal/domain/document"
	"github.com/matiasleandrokruk/draftforge/internal/infra/ai"
)

// taskGroup tags this engine's entries in the scheduler.
const taskGroup = "autotag"

var (
	// ErrAlreadyRunning is returned by Start while a job row exists.
	ErrAlreadyRunning = errors.New("autotag job already running")
	// ErrNoActiveJob is returned by Status and Cancel when idle.
	ErrNoActiveJob = errors.New("no active autotag job")
)

// DocumentStore is the slice of the document service this engine needs.
type DocumentStore interface {
	Get(ctx context.Context, id string) (document.Document, error)
	TermNames(ctx context.Context, taxonomy string) ([]string, error)
	TermIDsByName(ctx context.Context, taxonomy string, names []string) ([]string, error)
	AssignTerms(ctx context.Context, docID, taxonomy string, termIDs []string, appendOnly bool) error
}

// TemplateSource resolves a prompt template by name.
type TemplateSource interface {
	Template(name string) string
}

// ProviderResolver turns a model name into a ready provider.
type ProviderResolver func(model string) (ai.Provider, error)

// CallLog records provider calls.
type CallLog interface {
	Insert(ctx context.Context, rec apilog.Record) (int64, error)
}

// TaskScheduler is the slice of the scheduler this engine needs.
type TaskScheduler interface {
	Enqueue(ctx context.Context, group string, payload []byte, runAt time.Time) (string, error)
	CancelGroup(ctx context.Context, group string) error
}

// Status describes the current job's progress.
type Status struct {
	Total            int `json:"total"`
	Processed        int `json:"processed"`
	Percent          int `json:"percent"`
	RemainingSeconds int `json:"remaining_seconds"`
}

// itemPayload is the scheduler payload for one document.
type itemPayload struct {
	DocID    string `json:"doc_id"`
	Taxonomy string `json:"taxonomy"`
}
