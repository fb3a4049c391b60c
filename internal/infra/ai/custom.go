// Task 2.4: custom OpenAI-compatible endpoint adapter.
// Same wire format as ChatProvider but with operator-supplied endpoint,
// extra headers and a tolerant usage parser — self-hosted gateways disagree
// on usage field names.
package ai

import (
	"context"
	"encoding/json"
)

// CustomChatProvider calls an operator-configured chat completions endpoint.
type CustomChatProvider struct {
	caller
	endpoint     string
	apiKey       string
	model        string
	temperature  float64
	maxTokens    int
	extraHeaders map[string]string
}

// NewCustomChatProvider builds the adapter from a registry-provided Context.
func NewCustomChatProvider(cc Context) *CustomChatProvider {
	return &CustomChatProvider{
		caller:       newCaller(chatTimeout),
		endpoint:     cc.Endpoint,
		apiKey:       cc.APIKey,
		model:        cc.Model,
		temperature:  cc.Temperature,
		maxTokens:    cc.MaxTokens,
		extraHeaders: cc.ExtraHeaders,
	}
}

// Model returns the configured model identifier.
func (p *CustomChatProvider) Model() string { return p.model }

// Send performs one chat completion against the custom endpoint.
func (p *CustomChatProvider) Send(ctx context.Context, req Request) Result {
	body := chatBody(p.model, req.Prompt, req.System, p.temperature, p.maxTokens)
	applyOverrides(body, req.Overrides, chatOverrideKeys)

	payload, err := json.Marshal(body)
	if err != nil {
		return errorResult(ErrDecode, "", "marshal request: %v", err)
	}

	headers := map[string]string{headerContentType: mimeJSON}
	if p.apiKey != "" {
		headers["Authorization"] = "Bearer " + p.apiKey
	}
	for k, v := range p.extraHeaders {
		headers[k] = v
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

// Usage reads token counts from the most recent response, accepting either
// usage field spelling.
func (p *CustomChatProvider) Usage() Usage {
	return tolerantUsage(p.LastResponse())
}
