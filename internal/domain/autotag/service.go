package autotag

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/matiasleandrokruk/draftforge/internal/domain/apilog"
	"github.com/matiasleandrokruk/draftforge/internal/domain/document"
	"github.com/matiasleandrokruk/draftforge/internal/domain/prompt"
	"github.com/matiasleandrokruk/draftforge/internal/infra/ai"
)

// Service runs one batch tagging job at a time.
type Service struct {
	db      *sql.DB
	docs    DocumentStore
	prompts TemplateSource
	resolve ProviderResolver
	logs    CallLog
	sched   TaskScheduler

	model        string
	interval     time.Duration
	appendOnly   bool
	logPrompts   bool
	logResponses bool

	mu sync.Mutex
}

// Options configures the batch engine.
type Options struct {
	Model        string
	Interval     time.Duration
	AppendOnly   bool
	LogPrompts   bool
	LogResponses bool
}

// NewService wires the batch engine. Register its handler on the scheduler
// before Start-ing the scheduler itself.
func NewService(db *sql.DB, docs DocumentStore, prompts TemplateSource, resolve ProviderResolver, logs CallLog, sched TaskScheduler, opts Options) *Service {
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	return &Service{
		db:           db,
		docs:         docs,
		prompts:      prompts,
		resolve:      resolve,
		logs:         logs,
		sched:        sched,
		model:        opts.Model,
		interval:     opts.Interval,
		appendOnly:   opts.AppendOnly,
		logPrompts:   opts.LogPrompts,
		logResponses: opts.LogResponses,
	}
}

// TaskGroup is the scheduler group to register ProcessItem under.
func (s *Service) TaskGroup() string { return taskGroup }

// Start begins a job over docIDs. The first item runs one interval from
// now, item k at k further intervals. Only one job may exist at a time.
func (s *Service) Start(ctx context.Context, docIDs []string, taxonomy string) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(docIDs) == 0 {
		return Status{}, fmt.Errorf("autotag start: no document ids")
	}
	if taxonomy == "" {
		return Status{}, fmt.Errorf("autotag start: taxonomy required")
	}

	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM autotag_jobs`).Scan(&exists); err != nil {
		return Status{}, fmt.Errorf("autotag start: %w", err)
	}
	if exists > 0 {
		return Status{}, ErrAlreadyRunning
	}

	now := time.Now().UTC()
	first := now.Add(s.interval)
	last := first.Add(time.Duration(len(docIDs)-1) * s.interval)

	ids, err := json.Marshal(docIDs)
	if err != nil {
		return Status{}, fmt.Errorf("autotag start: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO autotag_jobs (slot, taxonomy, total, processed, doc_ids, start_time, interval_seconds, last_scheduled)
		VALUES (1, ?, ?, 0, ?, ?, ?, ?)`,
		taxonomy, len(docIDs), string(ids),
		now.Format(time.RFC3339Nano),
		int(s.interval/time.Second),
		last.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Status{}, fmt.Errorf("autotag start: %w", err)
	}

	for k, docID := range docIDs {
		payload, err := json.Marshal(itemPayload{DocID: docID, Taxonomy: taxonomy})
		if err != nil {
			return Status{}, fmt.Errorf("autotag start: %w", err)
		}
		runAt := first.Add(time.Duration(k) * s.interval)
		if _, err := s.sched.Enqueue(ctx, taskGroup, payload, runAt); err != nil {
			return Status{}, fmt.Errorf("autotag enqueue: %w", err)
		}
	}

	return Status{
		Total:            len(docIDs),
		Processed:        0,
		Percent:          0,
		RemainingSeconds: int(last.Sub(now) / time.Second),
	}, nil
}

// Status reports the current job's progress, or ErrNoActiveJob.
func (s *Service) Status(ctx context.Context) (Status, error) {
	var total, processed int
	var lastScheduled string
	err := s.db.QueryRowContext(ctx, `
		SELECT total, processed, last_scheduled FROM autotag_jobs WHERE slot = 1`,
	).Scan(&total, &processed, &lastScheduled)
	if err == sql.ErrNoRows {
		return Status{}, ErrNoActiveJob
	}
	if err != nil {
		return Status{}, fmt.Errorf("autotag status: %w", err)
	}

	st := Status{Total: total, Processed: processed}
	if total > 0 {
		st.Percent = int(math.Round(float64(processed) / float64(total) * 100))
	}
	if last, perr := time.Parse(time.RFC3339Nano, lastScheduled); perr == nil {
		if remaining := time.Until(last); remaining > 0 {
			st.RemainingSeconds = int(remaining / time.Second)
		}
	}
	return st, nil
}

// Cancel drops every pending item and the job row.
func (s *Service) Cancel(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sched.CancelGroup(ctx, taskGroup); err != nil {
		return fmt.Errorf("autotag cancel: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM autotag_jobs WHERE slot = 1`)
	if err != nil {
		return fmt.Errorf("autotag cancel: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoActiveJob
	}
	return nil
}

// ProcessItem handles one scheduled document. It always advances the
// processed counter, even on failure, so a job can never stall.
func (s *Service) ProcessItem(ctx context.Context, payload []byte) {
	defer s.advance(ctx)

	var item itemPayload
	if err := json.Unmarshal(payload, &item); err != nil {
		return
	}

	doc, err := s.docs.Get(ctx, item.DocID)
	if err != nil || doc.Status == document.StatusTrashed {
		return
	}

	names, err := s.docs.TermNames(ctx, item.Taxonomy)
	if err != nil {
		return
	}
	termsJSON, err := json.Marshal(names)
	if err != nil {
		return
	}

	tpl := s.prompts.Template("assign-terms")
	if tpl == "" {
		return
	}
	rendered := prompt.Render(tpl, map[string]string{
		"taxonomy": item.Taxonomy,
		"terms":    string(termsJSON),
		"title":    doc.Title,
		"content":  doc.Content,
	})

	provider, err := s.resolve(s.model)
	if err != nil {
		s.logFailure(ctx, rendered, err.Error())
		return
	}

	result := provider.Send(ctx, ai.Request{Prompt: rendered})
	if !result.OK() {
		s.logFailure(ctx, rendered, result.Err.Error())
		return
	}

	var picked []string
	if err := json.Unmarshal([]byte(stripFences(result.Text)), &picked); err != nil {
		s.logFailure(ctx, rendered, "unparseable term list: "+result.Text)
		return
	}

	ids, err := s.docs.TermIDsByName(ctx, item.Taxonomy, picked)
	if err != nil {
		s.logFailure(ctx, rendered, err.Error())
		return
	}
	if err := s.docs.AssignTerms(ctx, item.DocID, item.Taxonomy, ids, s.appendOnly); err != nil {
		s.logFailure(ctx, rendered, err.Error())
		return
	}

	usage := provider.Usage()
	s.logs.Insert(ctx, apilog.Record{ //nolint:errcheck
		Tool:           apilog.ToolAutoSelect,
		InputTokens:    usage.InputTokens,
		OutputTokens:   usage.OutputTokens,
		Model:          provider.Model(),
		ResponseTimeMs: provider.ResponseTime().Milliseconds(),
		Message:        apilog.BuildMessage(rendered, result.Text, s.logPrompts, s.logResponses),
	})
}

// logFailure records an item failure under the -error tool name.
func (s *Service) logFailure(ctx context.Context, rendered, message string) {
	s.logs.Insert(ctx, apilog.Record{ //nolint:errcheck
		Tool:    apilog.ToolAutoSelect + apilog.ErrorSuffix,
		Model:   s.model,
		Message: apilog.BuildMessage(rendered, message, s.logPrompts, true),
	})
}

// advance bumps the processed counter and closes the job when every item
// has been seen. A missing row (job canceled mid-flight) is a no-op.
func (s *Service) advance(ctx context.Context) {
	if _, err := s.db.ExecContext(ctx, `
		UPDATE autotag_jobs SET processed = processed + 1 WHERE slot = 1`); err != nil {
		return
	}
	s.db.ExecContext(ctx, //nolint:errcheck
		`DELETE FROM autotag_jobs WHERE slot = 1 AND processed >= total`)
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag, so models that wrap JSON in ``` still parse.
func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if nl := strings.IndexByte(trimmed, '\n'); nl >= 0 && !strings.HasPrefix(trimmed, "[") {
		trimmed = trimmed[nl+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
