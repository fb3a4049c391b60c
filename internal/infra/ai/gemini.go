// Task 2.3: Gemini generateContent adapter.
// The model lives in the URL path and the key travels as a query parameter —
// the only provider here that does either.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// generativeOverrideKeys — generationConfig is handled separately (shallow
// merge) so callers can tweak one knob without clobbering the defaults.
var generativeOverrideKeys = []string{"contents", "safetySettings", "systemInstruction"}

// GenerativeProvider calls a Gemini-style {model}:generateContent endpoint.
type GenerativeProvider struct {
	caller
	endpoint    string // base URL up to /models, no trailing slash
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

// NewGenerativeProvider builds the adapter from a registry-provided Context.
func NewGenerativeProvider(cc Context) *GenerativeProvider {
	return &GenerativeProvider{
		caller:      newCaller(chatTimeout),
		endpoint:    cc.Endpoint,
		apiKey:      cc.APIKey,
		model:       cc.Model,
		temperature: cc.Temperature,
		maxTokens:   cc.MaxTokens,
	}
}

// Model returns the configured model identifier.
func (p *GenerativeProvider) Model() string { return p.model }

func (p *GenerativeProvider) url() string {
	return fmt.Sprintf("%s/%s:generateContent?key=%s", p.endpoint, p.model, url.QueryEscape(p.apiKey))
}

// Send performs one generateContent call and returns the text of the last
// part. Thinking models emit reasoning parts first; the answer is the final
// text part.
func (p *GenerativeProvider) Send(ctx context.Context, req Request) Result {
	parts := make([]map[string]any, 0, 2)
	if req.System != "" {
		parts = append(parts, map[string]any{"text": req.System})
	}
	parts = append(parts, map[string]any{"text": req.Prompt})

	body := map[string]any{
		"contents": []map[string]any{{"parts": parts}},
		"generationConfig": map[string]any{
			"temperature":     p.temperature,
			"maxOutputTokens": p.maxTokens,
		},
	}
	mergeGenerationConfig(body, req.Overrides)
	applyOverrides(body, req.Overrides, generativeOverrideKeys)

	payload, err := json.Marshal(body)
	if err != nil {
		return errorResult(ErrDecode, "", "marshal request: %v", err)
	}

	raw, cerr := p.post(ctx, p.url(), map[string]string{headerContentType: mimeJSON}, payload)
	if cerr != nil {
		return Result{Err: cerr}
	}

	parsed, perr := parseGenerativeResponse(raw)
	if perr != nil {
		return Result{Err: perr}
	}

	text := ""
	for _, part := range parsed.parts {
		if part.Text != "" {
			text = part.Text
		}
	}
	if text == "" {
		return errorResult(ErrInvalidResponse, string(raw), "response has no text part")
	}
	return textResult(text)
}

// Usage reads token counts from the most recent response.
func (p *GenerativeProvider) Usage() Usage {
	var resp struct {
		UsageMetadata struct {
			PromptTokenCount     int `json:"promptTokenCount"`
			CandidatesTokenCount int `json:"candidatesTokenCount"`
		} `json:"usageMetadata"`
	}
	if err := json.Unmarshal(p.LastResponse(), &resp); err != nil {
		return Usage{}
	}
	return Usage{
		InputTokens:  resp.UsageMetadata.PromptTokenCount,
		OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
	}
}

// mergeGenerationConfig shallow-merges an overriding generationConfig into
// the default one, keeping defaults the caller did not touch.
func mergeGenerationConfig(body, overrides map[string]any) {
	override, ok := overrides["generationConfig"].(map[string]any)
	if !ok {
		return
	}
	config, ok := body["generationConfig"].(map[string]any)
	if !ok {
		body["generationConfig"] = override
		return
	}
	for k, v := range override {
		config[k] = v
	}
}

// generativePart is one entry of candidates[0].content.parts.
type generativePart struct {
	Text       string `json:"text"`
	InlineData *struct {
		MimeType string `json:"mimeType"`
		Data     string `json:"data"`
	} `json:"inlineData"`
}

type generativeResponse struct {
	parts []generativePart
}

// parseGenerativeResponse validates the candidates envelope shared by the
// text and image Gemini adapters.
func parseGenerativeResponse(raw []byte) (*generativeResponse, *CallError) {
	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []generativePart `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &CallError{Kind: ErrInvalidResponse, Message: "parse response: " + err.Error(), RawBody: string(raw)}
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		msg := resp.Error.Message
		if msg == "" {
			msg = "response missing candidates[0].content.parts"
		}
		return nil, &CallError{Kind: ErrInvalidResponse, Message: msg, RawBody: string(raw)}
	}
	return &generativeResponse{parts: resp.Candidates[0].Content.Parts}, nil
}
