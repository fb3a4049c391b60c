// Task 2.5: Replicate predictions adapter.
// Two-step flow: POST the prediction with "Prefer: wait" so the call blocks
// until the model finishes, then GET the output URL for the actual bytes.
package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
)

// PredictionProvider runs image models hosted on Replicate. Model identifiers
// are owner/name slugs ("black-forest-labs/flux-schnell").
type PredictionProvider struct {
	caller
	endpoint string // base URL up to /models
	apiKey   string
	model    string
}

// NewPredictionProvider builds the adapter from a registry-provided Context.
func NewPredictionProvider(cc Context) *PredictionProvider {
	return &PredictionProvider{
		caller:   newCaller(imageTimeout),
		endpoint: cc.Endpoint,
		apiKey:   cc.APIKey,
		model:    cc.Model,
	}
}

// Model returns the configured model identifier.
func (p *PredictionProvider) Model() string { return p.model }

// Send generates an image from the prompt.
func (p *PredictionProvider) Send(ctx context.Context, req Request) Result {
	input := map[string]any{"prompt": req.Prompt}
	for k, v := range req.Overrides {
		input[k] = v
	}
	return p.predict(ctx, input)
}

// EditImage sends the source picture as a data URI. Different models name
// their image input differently, so the key is chosen per model family.
func (p *PredictionProvider) EditImage(ctx context.Context, req Request, src SourceImage) Result {
	dataURI := "data:" + src.MIME + ";base64," + base64.StdEncoding.EncodeToString(src.Data)

	input := map[string]any{"prompt": req.Prompt}
	for k, v := range req.Overrides {
		input[k] = v
	}
	if key := editInputKey(p.model); key == "image_input" {
		input[key] = []string{dataURI}
	} else {
		input[key] = dataURI
	}
	return p.predict(ctx, input)
}

func (p *PredictionProvider) predict(ctx context.Context, input map[string]any) Result {
	payload, err := json.Marshal(map[string]any{"input": input})
	if err != nil {
		return errorResult(ErrDecode, "", "marshal request: %v", err)
	}

	headers := map[string]string{
		headerContentType: mimeJSON,
		"Authorization":   "Bearer " + p.apiKey,
		"Prefer":          "wait",
	}
	raw, cerr := p.post(ctx, p.endpoint+"/"+p.model+"/predictions", headers, payload)
	if cerr != nil {
		return Result{Err: cerr}
	}

	var resp struct {
		Error  *string         `json:"error"`
		Output json.RawMessage `json:"output"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return errorResult(ErrInvalidResponse, string(raw), "parse response: %v", err)
	}
	if resp.Error != nil && *resp.Error != "" {
		return errorResult(ErrInvalidResponse, string(raw), "%s", *resp.Error)
	}

	outputURL, ok := outputURLFrom(resp.Output)
	if !ok {
		return errorResult(ErrInvalidResponse, string(raw), "response missing output URL")
	}

	data, cerr := p.fetchAsset(ctx, outputURL, map[string]string{"Authorization": "Bearer " + p.apiKey})
	if cerr != nil {
		return Result{Err: cerr}
	}
	return bytesResult(data)
}

// outputURLFrom accepts both output shapes Replicate uses: a single URL
// string or an array of URL strings (first one wins).
func outputURLFrom(output json.RawMessage) (string, bool) {
	var single string
	if err := json.Unmarshal(output, &single); err == nil && single != "" {
		return single, true
	}

	var many []string
	if err := json.Unmarshal(output, &many); err == nil && len(many) > 0 && many[0] != "" {
		return many[0], true
	}
	return "", false
}

// editInputKey maps a model slug to its image input field name.
func editInputKey(model string) string {
	switch {
	case strings.Contains(model, "nano-banana"):
		return "image_input"
	case strings.Contains(model, "kontext"):
		return "input_image"
	default:
		return "image"
	}
}

// Usage always reports zero for prediction calls.
func (p *PredictionProvider) Usage() Usage { return Usage{} }
