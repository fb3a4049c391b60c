// Task 4.2: Unit tests for the batch tagging engine.
package autotag

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/matiasleandrokruk/draftforge/internal/domain/apilog"
	"github.com/matiasleandrokruk/draftforge/internal/domain/document"
	"github.com/matiasleandrokruk/draftforge/internal/domain/prompt"
	"github.com/matiasleandrokruk/draftforge/internal/infra/ai"
	"github.com/matiasleandrokruk/draftforge/internal/infra/sqlite"
)

// stubScheduler records Enqueue and CancelGroup calls instead of running
// tasks; ProcessItem is exercised directly.
type stubScheduler struct {
	enqueued []stubTask
	canceled []string
	err      error
}

type stubTask struct {
	group   string
	payload []byte
	runAt   time.Time
}

func (s *stubScheduler) Enqueue(_ context.Context, group string, payload []byte, runAt time.Time) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.enqueued = append(s.enqueued, stubTask{group: group, payload: payload, runAt: runAt})
	return "task-id", nil
}

func (s *stubScheduler) CancelGroup(_ context.Context, group string) error {
	s.canceled = append(s.canceled, group)
	return nil
}

// stubProvider returns a canned result.
type stubProvider struct {
	result ai.Result
	usage  ai.Usage
}

func (p *stubProvider) Send(context.Context, ai.Request) ai.Result { return p.result }
func (p *stubProvider) Usage() ai.Usage                            { return p.usage }
func (p *stubProvider) ResponseTime() time.Duration                { return 42 * time.Millisecond }
func (p *stubProvider) Model() string                              { return "stub-model" }
func (p *stubProvider) LastRequest() ai.Snapshot                   { return ai.Snapshot{} }
func (p *stubProvider) LastResponse() []byte                       { return nil }

type fixture struct {
	svc   *Service
	db    *sql.DB
	docs  *document.Service
	logs  *apilog.Service
	sched *stubScheduler
}

func newFixture(t *testing.T, provider ai.Provider, resolveErr error) *fixture {
	t.Helper()

	db, err := sqlite.NewDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	docs := document.NewService(db)
	logs := apilog.NewService(db)
	sched := &stubScheduler{}

	resolve := func(string) (ai.Provider, error) {
		if resolveErr != nil {
			return nil, resolveErr
		}
		return provider, nil
	}

	svc := NewService(db, docs, prompt.NewLoader("", "en_US"), resolve, logs, sched, Options{
		Model:      "stub-model",
		Interval:   30 * time.Second,
		AppendOnly: true,
	})
	return &fixture{svc: svc, db: db, docs: docs, logs: logs, sched: sched}
}

func TestStart_SchedulesSpacedItems(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &stubProvider{}, nil)
	ctx := context.Background()

	before := time.Now().UTC()
	st, err := f.svc.Start(ctx, []string{"d1", "d2", "d3"}, "topics")
	if err != nil {
		t.Fatalf("Start error = %v", err)
	}

	if st.Total != 3 || st.Processed != 0 || st.Percent != 0 {
		t.Errorf("Start status = %+v", st)
	}
	if len(f.sched.enqueued) != 3 {
		t.Fatalf("expected 3 enqueued items, got %d", len(f.sched.enqueued))
	}
	for k, task := range f.sched.enqueued {
		if task.group != "autotag" {
			t.Errorf("item %d group = %q", k, task.group)
		}
		wantAt := before.Add(time.Duration(k+1) * 30 * time.Second)
		if task.runAt.Before(wantAt.Add(-2*time.Second)) || task.runAt.After(wantAt.Add(2*time.Second)) {
			t.Errorf("item %d runAt = %v, want near %v", k, task.runAt, wantAt)
		}
	}
	// Last item is ~90s out.
	if st.RemainingSeconds < 85 || st.RemainingSeconds > 95 {
		t.Errorf("RemainingSeconds = %d, want ~90", st.RemainingSeconds)
	}
}

func TestStart_SecondJobRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &stubProvider{}, nil)
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, []string{"d1"}, "topics"); err != nil {
		t.Fatalf("Start error = %v", err)
	}
	if _, err := f.svc.Start(ctx, []string{"d2"}, "topics"); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start error = %v, want ErrAlreadyRunning", err)
	}
}

func TestStart_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &stubProvider{}, nil)
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, nil, "topics"); err == nil {
		t.Error("Start with no ids should fail")
	}
	if _, err := f.svc.Start(ctx, []string{"d1"}, ""); err == nil {
		t.Error("Start without taxonomy should fail")
	}
}

func TestStatus_Idle(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &stubProvider{}, nil)

	if _, err := f.svc.Status(context.Background()); !errors.Is(err, ErrNoActiveJob) {
		t.Errorf("Status idle error = %v, want ErrNoActiveJob", err)
	}
}

func TestCancel(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &stubProvider{}, nil)
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, []string{"d1", "d2"}, "topics"); err != nil {
		t.Fatalf("Start error = %v", err)
	}

	if err := f.svc.Cancel(ctx); err != nil {
		t.Fatalf("Cancel error = %v", err)
	}
	if len(f.sched.canceled) != 1 || f.sched.canceled[0] != "autotag" {
		t.Errorf("CancelGroup calls = %v", f.sched.canceled)
	}
	if _, err := f.svc.Status(ctx); !errors.Is(err, ErrNoActiveJob) {
		t.Errorf("Status after cancel error = %v, want ErrNoActiveJob", err)
	}
	if err := f.svc.Cancel(ctx); !errors.Is(err, ErrNoActiveJob) {
		t.Errorf("second Cancel error = %v, want ErrNoActiveJob", err)
	}
}

func seedJob(t *testing.T, f *fixture, docIDs []string, taxonomy string) {
	t.Helper()
	if _, err := f.svc.Start(context.Background(), docIDs, taxonomy); err != nil {
		t.Fatalf("Start error = %v", err)
	}
}

func mustPayload(t *testing.T, docID, taxonomy string) []byte {
	t.Helper()
	return []byte(`{"doc_id":"` + docID + `","taxonomy":"` + taxonomy + `"}`)
}

func TestProcessItem_AssignsAndLogs(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		result: ai.Result{Text: "```json\n[\"golang\", \"testing\"]\n```"},
		usage:  ai.Usage{InputTokens: 10, OutputTokens: 5},
	}
	f := newFixture(t, provider, nil)
	ctx := context.Background()

	doc, err := f.docs.Create(ctx, "A Go Post", "about tests")
	if err != nil {
		t.Fatalf("create doc: %v", err)
	}
	golang, _ := f.docs.CreateTerm(ctx, "topics", "golang")
	testing2, _ := f.docs.CreateTerm(ctx, "topics", "testing")
	f.docs.CreateTerm(ctx, "topics", "unrelated") //nolint:errcheck

	seedJob(t, f, []string{doc.ID}, "topics")
	f.svc.ProcessItem(ctx, mustPayload(t, doc.ID, "topics"))

	ids, err := f.docs.AssignedTermIDs(ctx, doc.ID, "topics")
	if err != nil {
		t.Fatalf("AssignedTermIDs error = %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("assigned terms = %v, want golang and testing", ids)
	}
	got := map[string]bool{ids[0]: true, ids[1]: true}
	if !got[golang.ID] || !got[testing2.ID] {
		t.Errorf("assigned ids = %v", ids)
	}

	items, total, err := f.logs.Query(ctx, apilog.QueryArgs{Tool: apilog.ToolAutoSelect})
	if err != nil {
		t.Fatalf("log query: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected one success log entry, got %d", total)
	}
	if items[0].InputTokens != 10 || items[0].OutputTokens != 5 || items[0].Model != "stub-model" {
		t.Errorf("log record = %+v", items[0])
	}

	// Single-item job completes and frees the slot.
	if _, err := f.svc.Status(ctx); !errors.Is(err, ErrNoActiveJob) {
		t.Errorf("Status after completion error = %v, want ErrNoActiveJob", err)
	}
}

func TestProcessItem_TrashedDocSkippedButCounted(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &stubProvider{result: ai.Result{Text: `["x"]`}}, nil)
	ctx := context.Background()

	doc, _ := f.docs.Create(ctx, "gone", "c")
	if err := f.docs.SetStatus(ctx, doc.ID, document.StatusTrashed); err != nil {
		t.Fatalf("SetStatus error = %v", err)
	}

	seedJob(t, f, []string{doc.ID, "other"}, "topics")
	f.svc.ProcessItem(ctx, mustPayload(t, doc.ID, "topics"))

	st, err := f.svc.Status(ctx)
	if err != nil {
		t.Fatalf("Status error = %v", err)
	}
	if st.Processed != 1 {
		t.Errorf("Processed = %d, want 1 even for a skipped document", st.Processed)
	}
	if _, total, _ := f.logs.Query(ctx, apilog.QueryArgs{}); total != 0 {
		t.Errorf("skipped document must not log, got %d entries", total)
	}
}

func TestProcessItem_ProviderErrorLoggedAndCounted(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{result: ai.Result{
		Err: &ai.CallError{Kind: ai.ErrTransport, Message: "connection refused"},
	}}
	f := newFixture(t, provider, nil)
	ctx := context.Background()

	doc, _ := f.docs.Create(ctx, "t", "c")
	seedJob(t, f, []string{doc.ID, "d2"}, "topics")
	f.svc.ProcessItem(ctx, mustPayload(t, doc.ID, "topics"))

	items, total, err := f.logs.Query(ctx, apilog.QueryArgs{Tool: apilog.ToolAutoSelect + apilog.ErrorSuffix})
	if err != nil {
		t.Fatalf("log query: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected one error log entry, got %d", total)
	}
	if items[0].Message == "" {
		t.Error("error entry should carry the failure message")
	}

	st, _ := f.svc.Status(ctx)
	if st.Processed != 1 {
		t.Errorf("Processed = %d, want 1 after failure", st.Processed)
	}
}

func TestProcessItem_AfterCancelIsNoOp(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &stubProvider{result: ai.Result{Text: `[]`}}, nil)
	ctx := context.Background()

	doc, _ := f.docs.Create(ctx, "t", "c")
	seedJob(t, f, []string{doc.ID}, "topics")
	if err := f.svc.Cancel(ctx); err != nil {
		t.Fatalf("Cancel error = %v", err)
	}

	// An in-flight item landing after cancel must not recreate the row.
	f.svc.ProcessItem(ctx, mustPayload(t, doc.ID, "topics"))

	if _, err := f.svc.Status(ctx); !errors.Is(err, ErrNoActiveJob) {
		t.Errorf("Status error = %v, want ErrNoActiveJob", err)
	}
}

func TestStripFences(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{`["a","b"]`, `["a","b"]`},
		{"```json\n[\"a\"]\n```", `["a"]`},
		{"```\n[\"a\"]\n```", `["a"]`},
		{"  [\"a\"]  ", `["a"]`},
		{"```[\"a\"]```", `["a"]`},
	}
	for _, tc := range cases {
		if got := stripFences(tc.in); got != tc.want {
			t.Errorf("stripFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
