// Task 2.1: shared HTTP plumbing for all adapters.
package ai

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"time"
)

// caller performs the HTTP round trips and keeps last-call diagnostics:
// the outgoing request snapshot, the raw response body and the wall-clock
// duration. Embedded by every adapter.
type caller struct {
	httpClient *http.Client

	mu       sync.Mutex
	lastReq  Snapshot
	lastResp []byte
	elapsed  time.Duration
}

func newCaller(timeout time.Duration) caller {
	return caller{httpClient: &http.Client{Timeout: timeout}}
}

// post sends body to url and returns the raw response body. Non-2xx statuses
// are not treated as transport errors: providers put their error details in
// the body, and the adapter decides what the body means.
func (c *caller) post(ctx context.Context, url string, headers map[string]string, body []byte) ([]byte, *CallError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &CallError{Kind: ErrTransport, Message: "build request: " + err.Error()}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	c.mu.Lock()
	c.lastReq = Snapshot{URL: url, Body: body}
	c.mu.Unlock()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)

	c.mu.Lock()
	c.elapsed = elapsed
	c.mu.Unlock()

	if err != nil {
		return nil, &CallError{Kind: ErrTransport, Message: err.Error()}
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &CallError{Kind: ErrTransport, Message: "read response: " + err.Error()}
	}

	c.mu.Lock()
	c.lastResp = raw
	c.mu.Unlock()

	return raw, nil
}

// fetchAsset downloads bytes from a result URL (Replicate output files).
// Deliberately does not overwrite the last-call diagnostics: the prediction
// JSON is the interesting response, not the binary it points to.
func (c *caller) fetchAsset(ctx context.Context, url string, headers map[string]string) ([]byte, *CallError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &CallError{Kind: ErrTransport, Message: "build request: " + err.Error()}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &CallError{Kind: ErrTransport, Message: err.Error()}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &CallError{Kind: ErrInvalidResponse, Message: "asset fetch status " + resp.Status}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &CallError{Kind: ErrTransport, Message: "read asset: " + err.Error()}
	}
	return raw, nil
}

// ResponseTime returns the wall-clock duration of the most recent call.
func (c *caller) ResponseTime() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

// LastRequest returns the most recent outgoing request snapshot.
func (c *caller) LastRequest() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastReq
}

// LastResponse returns the raw body of the most recent response.
func (c *caller) LastResponse() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResp
}
