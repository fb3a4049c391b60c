// Task 2.5: OpenAI image adapter — generation (JSON) and edit (multipart).
package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
)

// imageOverrideKeys — size/quality knobs the images API accepts.
var imageOverrideKeys = []string{"n", "size", "quality", "background", "output_format", "moderation"}

// ImageProvider calls the OpenAI images API. endpoint is the base path up to
// /images; Send posts to /generations, EditImage to /edits.
type ImageProvider struct {
	caller
	endpoint string
	apiKey   string
	model    string
}

// NewImageProvider builds the adapter from a registry-provided Context.
func NewImageProvider(cc Context) *ImageProvider {
	return &ImageProvider{
		caller:   newCaller(imageTimeout),
		endpoint: cc.Endpoint,
		apiKey:   cc.APIKey,
		model:    cc.Model,
	}
}

// Model returns the configured model identifier.
func (p *ImageProvider) Model() string { return p.model }

// Send generates an image from the prompt and returns the decoded bytes.
func (p *ImageProvider) Send(ctx context.Context, req Request) Result {
	body := map[string]any{
		"model":  p.model,
		"prompt": req.Prompt,
	}
	applyOverrides(body, req.Overrides, imageOverrideKeys)

	payload, err := json.Marshal(body)
	if err != nil {
		return errorResult(ErrDecode, "", "marshal request: %v", err)
	}

	headers := map[string]string{
		headerContentType: mimeJSON,
		"Authorization":   "Bearer " + p.apiKey,
	}
	raw, cerr := p.post(ctx, p.endpoint+"/generations", headers, payload)
	if cerr != nil {
		return Result{Err: cerr}
	}

	return p.decodeImageResponse(raw)
}

// EditImage sends the source picture plus prompt as multipart form data.
func (p *ImageProvider) EditImage(ctx context.Context, req Request, src SourceImage) Result {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("model", p.model); err != nil {
		return errorResult(ErrDecode, "", "build form: %v", err)
	}
	if err := w.WriteField("prompt", req.Prompt); err != nil {
		return errorResult(ErrDecode, "", "build form: %v", err)
	}
	for _, key := range imageOverrideKeys {
		if v, ok := req.Overrides[key]; ok {
			if err := w.WriteField(key, fmt.Sprint(v)); err != nil {
				return errorResult(ErrDecode, "", "build form: %v", err)
			}
		}
	}

	// CreateFormFile would label the part application/octet-stream; the API
	// wants the real image MIME type.
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, src.Filename))
	header.Set(headerContentType, src.MIME)
	part, err := w.CreatePart(header)
	if err != nil {
		return errorResult(ErrDecode, "", "build form: %v", err)
	}
	if _, err := part.Write(src.Data); err != nil {
		return errorResult(ErrDecode, "", "build form: %v", err)
	}
	if err := w.Close(); err != nil {
		return errorResult(ErrDecode, "", "build form: %v", err)
	}

	headers := map[string]string{
		headerContentType: w.FormDataContentType(),
		"Authorization":   "Bearer " + p.apiKey,
	}
	raw, cerr := p.post(ctx, p.endpoint+"/edits", headers, buf.Bytes())
	if cerr != nil {
		return Result{Err: cerr}
	}

	return p.decodeImageResponse(raw)
}

// decodeImageResponse extracts data[0].b64_json and decodes it.
func (p *ImageProvider) decodeImageResponse(raw []byte) Result {
	var resp struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
		} `json:"data"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return errorResult(ErrInvalidResponse, string(raw), "parse response: %v", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		msg := resp.Error.Message
		if msg == "" {
			msg = "response missing data[0].b64_json"
		}
		return errorResult(ErrInvalidResponse, string(raw), "%s", msg)
	}

	decoded, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return errorResult(ErrDecode, string(raw), "decode image payload: %v", err)
	}
	return bytesResult(decoded)
}

// Usage always reports zero: the images API bills per image, not per token.
func (p *ImageProvider) Usage() Usage { return Usage{} }
