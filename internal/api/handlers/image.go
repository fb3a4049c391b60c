// Task 5.3: HTTP handlers for image generation and editing.
package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/matiasleandrokruk/draftforge/internal/domain/assist"
	"github.com/matiasleandrokruk/draftforge/internal/infra/ai"
)

// ImageService is the slice of the assist service the image handlers need.
type ImageService interface {
	GenerateImage(ctx context.Context, args assist.ImageArgs) (assist.ImageResult, error)
	EditImage(ctx context.Context, args assist.ImageArgs) (assist.ImageResult, error)
}

// ImageHandler handles POST /api/v1/ai/images/*.
type ImageHandler struct {
	assist ImageService
}

// NewImageHandler creates a new ImageHandler.
func NewImageHandler(a ImageService) *ImageHandler {
	return &ImageHandler{assist: a}
}

// GenerateImageRequest is the request body for /images/generate.
type GenerateImageRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
}

// EditImageRequest is the request body for /images/edit. Source carries the
// original image as base64.
type EditImageRequest struct {
	Prompt     string `json:"prompt"`
	Model      string `json:"model,omitempty"`
	Source     string `json:"source"`
	SourceMIME string `json:"source_mime,omitempty"`
}

// ImageResponse carries the produced image as base64.
type ImageResponse struct {
	Data           string `json:"data"`
	Model          string `json:"model"`
	ResponseTimeMs int64  `json:"response_time_ms"`
}

// Generate handles POST /api/v1/ai/images/generate.
//
// Response codes:
//   - 200 OK: {data (base64), model, response_time_ms}
//   - 400 Bad Request: invalid JSON or missing prompt
//   - 502 Bad Gateway: provider call failed
func (h *ImageHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	result, err := h.assist.GenerateImage(r.Context(), assist.ImageArgs{
		Prompt:  req.Prompt,
		Model:   req.Model,
		ActorID: actorID(r.Context()),
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeImage(w, result)
}

// Edit handles POST /api/v1/ai/images/edit.
//
// Response codes:
//   - 200 OK: edited image
//   - 400 Bad Request: invalid JSON, missing prompt/source, bad base64, or
//     a model that cannot edit
//   - 502 Bad Gateway: provider call failed
func (h *ImageHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req EditImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}
	if req.Prompt == "" || req.Source == "" {
		writeError(w, http.StatusBadRequest, "prompt and source are required")
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Source)
	if err != nil {
		writeError(w, http.StatusBadRequest, "source is not valid base64")
		return
	}
	mime := req.SourceMIME
	if mime == "" {
		mime = "image/png"
	}

	result, err := h.assist.EditImage(r.Context(), assist.ImageArgs{
		Prompt:  req.Prompt,
		Model:   req.Model,
		Source:  &ai.SourceImage{Data: data, MIME: mime, Filename: "source.png"},
		ActorID: actorID(r.Context()),
	})
	if err != nil {
		if errors.Is(err, assist.ErrNotEditable) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeImage(w, result)
}

func writeImage(w http.ResponseWriter, result assist.ImageResult) {
	writeJSON(w, http.StatusOK, ImageResponse{
		Data:           base64.StdEncoding.EncodeToString(result.Data),
		Model:          result.Model,
		ResponseTimeMs: result.ResponseTimeMs,
	})
}
