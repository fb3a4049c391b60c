// Task 2.5: Gemini image adapter.
// Same generateContent envelope as the text adapter; the picture comes back
// as an inlineData part mixed in with optional text parts.
package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
)

// GenerativeImageProvider generates and edits images via generateContent.
type GenerativeImageProvider struct {
	caller
	endpoint string
	apiKey   string
	model    string
}

// NewGenerativeImageProvider builds the adapter from a registry-provided Context.
func NewGenerativeImageProvider(cc Context) *GenerativeImageProvider {
	return &GenerativeImageProvider{
		caller:   newCaller(imageTimeout),
		endpoint: cc.Endpoint,
		apiKey:   cc.APIKey,
		model:    cc.Model,
	}
}

// Model returns the configured model identifier.
func (p *GenerativeImageProvider) Model() string { return p.model }

func (p *GenerativeImageProvider) url() string {
	return fmt.Sprintf("%s/%s:generateContent?key=%s", p.endpoint, p.model, url.QueryEscape(p.apiKey))
}

// Send generates an image from the prompt.
func (p *GenerativeImageProvider) Send(ctx context.Context, req Request) Result {
	parts := []map[string]any{{"text": req.Prompt}}
	return p.generate(ctx, parts, req.Overrides)
}

// EditImage passes the source picture as an inline base64 part after the prompt.
func (p *GenerativeImageProvider) EditImage(ctx context.Context, req Request, src SourceImage) Result {
	parts := []map[string]any{
		{"text": req.Prompt},
		{"inlineData": map[string]string{
			"mimeType": src.MIME,
			"data":     base64.StdEncoding.EncodeToString(src.Data),
		}},
	}
	return p.generate(ctx, parts, req.Overrides)
}

func (p *GenerativeImageProvider) generate(ctx context.Context, parts []map[string]any, overrides map[string]any) Result {
	body := map[string]any{
		"contents": []map[string]any{{"parts": parts}},
		"generationConfig": map[string]any{
			"responseModalities": []string{"TEXT", "IMAGE"},
		},
	}
	mergeGenerationConfig(body, overrides)

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

	for _, part := range parsed.parts {
		if part.InlineData == nil || part.InlineData.Data == "" {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
		if err != nil {
			return errorResult(ErrDecode, string(raw), "decode image payload: %v", err)
		}
		return bytesResult(decoded)
	}
	return errorResult(ErrInvalidResponse, string(raw), "response has no inlineData part")
}

// Usage always reports zero for image calls.
func (p *GenerativeImageProvider) Usage() Usage { return Usage{} }
