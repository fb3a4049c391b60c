// Task 2.3: Unit tests for GenerativeProvider.
package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func generativeTestContext(endpoint string) Context {
	return Context{
		Kind:        KindGenerativeParts,
		Endpoint:    endpoint,
		APIKey:      "g-key",
		Model:       "gemini-2.5-flash",
		Temperature: 1.0,
		MaxTokens:   8192,
	}
}

func TestGenerativeProvider_Send_ModelInPathKeyInQuery(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "hi"}]}}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	p := NewGenerativeProvider(generativeTestContext(srv.URL))
	res := p.Send(context.Background(), Request{Prompt: "x"})
	if !res.OK() {
		t.Fatalf("Send failed: %v", res.Err)
	}

	if gotPath != "/gemini-2.5-flash:generateContent" {
		t.Errorf("expected model in URL path, got %q", gotPath)
	}
	if gotKey != "g-key" {
		t.Errorf("expected API key as query param, got %q", gotKey)
	}
}

// Thinking models emit reasoning parts first; the answer is the last text part.
func TestGenerativeProvider_Send_ReadsLastTextPart(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"candidates": [{"content": {"parts": [
				{"text": "thinking out loud..."},
				{"text": "final answer"}
			]}}],
			"usageMetadata": {"promptTokenCount": 15, "candidatesTokenCount": 90}
		}`)) //nolint:errcheck
	}))
	defer srv.Close()

	p := NewGenerativeProvider(generativeTestContext(srv.URL))
	res := p.Send(context.Background(), Request{Prompt: "x"})

	if !res.OK() {
		t.Fatalf("Send failed: %v", res.Err)
	}
	if res.Text != "final answer" {
		t.Errorf("expected last text part, got %q", res.Text)
	}

	u := p.Usage()
	if u.InputTokens != 15 || u.OutputTokens != 90 {
		t.Errorf("expected usage 15/90, got %+v", u)
	}
}

// A generationConfig override tweaks one knob without clobbering defaults.
func TestGenerativeProvider_Send_GenerationConfigShallowMerge(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = map[string]any{}
		json.NewDecoder(r.Body).Decode(&captured)                                     //nolint:errcheck
		w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "ok"}]}}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	p := NewGenerativeProvider(generativeTestContext(srv.URL))
	res := p.Send(context.Background(), Request{
		Prompt: "x",
		Overrides: map[string]any{
			"generationConfig": map[string]any{"topK": float64(5)},
		},
	})
	if !res.OK() {
		t.Fatalf("Send failed: %v", res.Err)
	}

	config, ok := captured["generationConfig"].(map[string]any)
	if !ok {
		t.Fatalf("generationConfig missing from body: %v", captured)
	}
	if config["topK"] != float64(5) {
		t.Errorf("expected merged topK, got %v", config["topK"])
	}
	if config["maxOutputTokens"] != float64(8192) {
		t.Errorf("expected default maxOutputTokens kept, got %v", config["maxOutputTokens"])
	}
}

func TestGenerativeProvider_Send_NoCandidates_InvalidResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": {"message": "API key not valid"}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	p := NewGenerativeProvider(generativeTestContext(srv.URL))
	res := p.Send(context.Background(), Request{Prompt: "x"})

	if res.OK() {
		t.Fatal("expected error for missing candidates")
	}
	if res.Err.Kind != ErrInvalidResponse {
		t.Errorf("expected ErrInvalidResponse, got %v", res.Err.Kind)
	}
	if res.Err.Message != "API key not valid" {
		t.Errorf("expected provider error message surfaced, got %q", res.Err.Message)
	}
}
