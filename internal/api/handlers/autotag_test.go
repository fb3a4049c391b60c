// Task 5.3: Unit tests for the batch job handlers.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matiasleandrokruk/draftforge/internal/domain/autotag"
)

// stubBatch returns canned statuses and records its args.
type stubBatch struct {
	startStatus autotag.Status
	startErr    error
	status      autotag.Status
	statusErr   error
	cancelErr   error
	gotDocIDs   []string
	gotTaxonomy string
	canceled    bool
}

func (s *stubBatch) Start(_ context.Context, docIDs []string, taxonomy string) (autotag.Status, error) {
	s.gotDocIDs = docIDs
	s.gotTaxonomy = taxonomy
	return s.startStatus, s.startErr
}

func (s *stubBatch) Status(context.Context) (autotag.Status, error) {
	return s.status, s.statusErr
}

func (s *stubBatch) Cancel(context.Context) error {
	s.canceled = true
	return s.cancelErr
}

func TestAutotagHandler_Start(t *testing.T) {
	t.Parallel()

	svc := &stubBatch{startStatus: autotag.Status{Total: 3, RemainingSeconds: 90}}
	h := NewAutotagHandler(svc)

	rec := postJSON(t, h.Start, "/api/v1/autotag", StartAutotagRequest{
		DocIDs:   []string{"d1", "d2", "d3"},
		Taxonomy: "topics",
	})

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202; body = %s", rec.Code, rec.Body.String())
	}
	var resp autotag.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 3 {
		t.Errorf("response = %+v", resp)
	}
	if len(svc.gotDocIDs) != 3 || svc.gotTaxonomy != "topics" {
		t.Errorf("service args = %v %q", svc.gotDocIDs, svc.gotTaxonomy)
	}
}

func TestAutotagHandler_Start_Conflict(t *testing.T) {
	t.Parallel()

	h := NewAutotagHandler(&stubBatch{startErr: autotag.ErrAlreadyRunning})

	rec := postJSON(t, h.Start, "/api/v1/autotag", StartAutotagRequest{
		DocIDs: []string{"d1"}, Taxonomy: "topics",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestAutotagHandler_Start_Validation(t *testing.T) {
	t.Parallel()

	h := NewAutotagHandler(&stubBatch{})

	rec := postJSON(t, h.Start, "/api/v1/autotag", StartAutotagRequest{Taxonomy: "topics"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing doc_ids status = %d, want 400", rec.Code)
	}

	rec = postJSON(t, h.Start, "/api/v1/autotag", StartAutotagRequest{DocIDs: []string{"d1"}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing taxonomy status = %d, want 400", rec.Code)
	}
}

func TestAutotagHandler_Status(t *testing.T) {
	t.Parallel()

	h := NewAutotagHandler(&stubBatch{status: autotag.Status{Total: 10, Processed: 4, Percent: 40}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/autotag", nil)
	rec := newRecorder()
	h.Status(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp autotag.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Percent != 40 {
		t.Errorf("response = %+v", resp)
	}
}

func TestAutotagHandler_Status_Idle(t *testing.T) {
	t.Parallel()

	h := NewAutotagHandler(&stubBatch{statusErr: autotag.ErrNoActiveJob})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/autotag", nil)
	rec := newRecorder()
	h.Status(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAutotagHandler_Cancel(t *testing.T) {
	t.Parallel()

	svc := &stubBatch{}
	h := NewAutotagHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/autotag", nil)
	rec := newRecorder()
	h.Cancel(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if !svc.canceled {
		t.Error("Cancel not forwarded to service")
	}
}

func TestAutotagHandler_Cancel_Idle(t *testing.T) {
	t.Parallel()

	h := NewAutotagHandler(&stubBatch{cancelErr: autotag.ErrNoActiveJob})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/autotag", nil)
	rec := newRecorder()
	h.Cancel(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
