// Task 5.3: Shared test helpers for handler tests.
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// postRequestWithBody builds a POST request with a JSON body.
func postRequestWithBody(t *testing.T, path string, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set(headerContentType, mimeJSON)
	return req
}

func newRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

// postJSON runs a handler against a JSON POST and returns the recorder.
func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	rec := newRecorder()
	handler(rec, postRequestWithBody(t, path, body))
	return rec
}
