// Task 2.3: Anthropic Messages adapter.
package ai

import (
	"context"
	"encoding/json"
)

// anthropicVersion is the dated API version header Anthropic requires.
const anthropicVersion = "2023-06-01"

// messagesOverrideKeys — extended thinking is the only extra field the
// Messages API accepts from callers here.
var messagesOverrideKeys = []string{"model", "temperature", "max_tokens", "messages", "thinking"}

// MessagesProvider calls the Anthropic Messages API. Auth is x-api-key, not
// a bearer token.
type MessagesProvider struct {
	caller
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

// NewMessagesProvider builds the adapter from a registry-provided Context.
func NewMessagesProvider(cc Context) *MessagesProvider {
	return &MessagesProvider{
		caller:      newCaller(chatTimeout),
		endpoint:    cc.Endpoint,
		apiKey:      cc.APIKey,
		model:       cc.Model,
		temperature: cc.Temperature,
		maxTokens:   cc.MaxTokens,
	}
}

// Model returns the configured model identifier.
func (p *MessagesProvider) Model() string { return p.model }

// Send performs one Messages call and returns the assistant text.
func (p *MessagesProvider) Send(ctx context.Context, req Request) Result {
	body := map[string]any{
		"model": p.model,
		"messages": []map[string]string{
			{"role": "user", "content": req.Prompt},
		},
		"temperature": p.temperature,
		"max_tokens":  p.maxTokens,
	}
	if req.System != "" {
		body["system"] = req.System
	}
	applyOverrides(body, req.Overrides, messagesOverrideKeys)

	payload, err := json.Marshal(body)
	if err != nil {
		return errorResult(ErrDecode, "", "marshal request: %v", err)
	}

	headers := map[string]string{
		headerContentType:   mimeJSON,
		"x-api-key":         p.apiKey,
		"anthropic-version": anthropicVersion,
	}
	raw, cerr := p.post(ctx, p.endpoint, headers, payload)
	if cerr != nil {
		return Result{Err: cerr}
	}

	var resp struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		// Legacy Text Completions shape, still emitted by some proxies.
		Completion string `json:"completion"`
		Error      struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return errorResult(ErrInvalidResponse, string(raw), "parse response: %v", err)
	}

	if len(resp.Content) > 0 && resp.Content[0].Text != "" {
		return textResult(resp.Content[0].Text)
	}
	if resp.Completion != "" {
		return textResult(resp.Completion)
	}

	msg := resp.Error.Message
	if msg == "" {
		msg = "response missing content[0].text"
	}
	return errorResult(ErrInvalidResponse, string(raw), "%s", msg)
}

// Usage reads token counts from the most recent response.
func (p *MessagesProvider) Usage() Usage {
	var resp struct {
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(p.LastResponse(), &resp); err != nil {
		return Usage{}
	}
	return Usage{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}
}
