// Task 2.2: request body builders and the override merge policy.
package ai

import (
	"encoding/json"
	"strings"
)

// chatBody builds the chat-completions payload shared by the OpenAI, xAI and
// custom adapters. A non-empty system message becomes the leading message.
func chatBody(model, prompt, system string, temperature float64, maxTokens int) map[string]any {
	messages := make([]map[string]string, 0, 2)
	if system != "" {
		messages = append(messages, map[string]string{"role": "system", "content": system})
	}
	messages = append(messages, map[string]string{"role": "user", "content": prompt})

	return map[string]any{
		"model":       model,
		"messages":    messages,
		"temperature": temperature,
		"max_tokens":  maxTokens,
	}
}

// chatOverrideKeys is the allow-list for chat-completions bodies. Unknown
// override keys are silently dropped so a caller can never smuggle arbitrary
// fields to a provider.
var chatOverrideKeys = []string{"model", "temperature", "max_tokens", "messages", "response_format"}

// applyOverrides merges allowed override keys into body, replacing defaults.
func applyOverrides(body, overrides map[string]any, allowed []string) {
	if len(overrides) == 0 {
		return
	}
	for _, key := range allowed {
		if v, ok := overrides[key]; ok {
			body[key] = v
		}
	}
}

// parseHeaderLines turns "Name=Value" lines into a header map.
// Malformed lines (no separator, empty name) are dropped. Values may
// themselves contain '=': only the first separator splits.
func parseHeaderLines(lines []string) map[string]string {
	headers := make(map[string]string, len(lines))
	for _, line := range lines {
		name, value, found := strings.Cut(line, "=")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			continue
		}
		headers[name] = strings.TrimSpace(value)
	}
	if len(headers) == 0 {
		return nil
	}
	return headers
}

// tolerantUsage extracts token counts from a response that may use either the
// chat-completions names or the messages-style names. Custom endpoints are
// OpenAI-compatible to varying degrees, so both spellings are accepted.
func tolerantUsage(raw []byte) Usage {
	var resp struct {
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			InputTokens      int `json:"input_tokens"`
			OutputTokens     int `json:"output_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Usage{}
	}

	u := resp.Usage
	if u.PromptTokens != 0 || u.CompletionTokens != 0 {
		return Usage{InputTokens: u.PromptTokens, OutputTokens: u.CompletionTokens}
	}
	return Usage{InputTokens: u.InputTokens, OutputTokens: u.OutputTokens}
}
