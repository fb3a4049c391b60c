// Task 2.3: chat-completions adapter.
// ChatProvider speaks the OpenAI chat format; api.x.ai exposes the identical
// wire format, so the xAI models resolve to this same adapter with a
// different endpoint.
package ai

import (
	"context"
	"encoding/json"
)

// ChatProvider calls an OpenAI-style /chat/completions endpoint with bearer auth.
type ChatProvider struct {
	caller
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

// NewChatProvider builds the adapter from a registry-provided Context.
func NewChatProvider(cc Context) *ChatProvider {
	return &ChatProvider{
		caller:      newCaller(chatTimeout),
		endpoint:    cc.Endpoint,
		apiKey:      cc.APIKey,
		model:       cc.Model,
		temperature: cc.Temperature,
		maxTokens:   cc.MaxTokens,
	}
}

// Model returns the configured model identifier.
func (p *ChatProvider) Model() string { return p.model }

// Send performs one chat completion and returns the assistant text.
func (p *ChatProvider) Send(ctx context.Context, req Request) Result {
	body := chatBody(p.model, req.Prompt, req.System, p.temperature, p.maxTokens)
	applyOverrides(body, req.Overrides, chatOverrideKeys)

	payload, err := json.Marshal(body)
	if err != nil {
		return errorResult(ErrDecode, "", "marshal request: %v", err)
	}

	headers := map[string]string{
		headerContentType: mimeJSON,
		"Authorization":   "Bearer " + p.apiKey,
	}
	raw, cerr := p.post(ctx, p.endpoint, headers, payload)
	if cerr != nil {
		return Result{Err: cerr}
	}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return errorResult(ErrInvalidResponse, string(raw), "parse response: %v", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		msg := resp.Error.Message
		if msg == "" {
			msg = "response missing choices[0].message.content"
		}
		return errorResult(ErrInvalidResponse, string(raw), "%s", msg)
	}

	return textResult(resp.Choices[0].Message.Content)
}

// Usage reads token counts from the most recent response.
func (p *ChatProvider) Usage() Usage {
	var resp struct {
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(p.LastResponse(), &resp); err != nil {
		return Usage{}
	}
	return Usage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}
}
