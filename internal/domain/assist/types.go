// Package assist — Task 4.3: Synchronous authoring tools. Each call renders
// a prompt template, sends it through the provider gateway, and records the
// round trip in the call log.
package assist

import (
	"context"
	"errors"

	"github.com/matiasleandrokruk/draftforge/internal/domain/apilog"
	"github.com/matiasleandrokruk/draftforge/internal/infra/ai"
)

var (
	// ErrUnknownTemplate is returned when no template matches the tool.
	ErrUnknownTemplate = errors.New("unknown prompt template")
	// ErrNotEditable is returned when the resolved image provider cannot
	// edit an existing image.
	ErrNotEditable = errors.New("model does not support image editing")
)

// TemplateSource resolves a prompt template by name.
type TemplateSource interface {
	Template(name string) string
}

// CallLog records provider calls.
type CallLog interface {
	Insert(ctx context.Context, rec apilog.Record) (int64, error)
}

// Resolver turns a model name into a ready provider.
type Resolver func(model string) (ai.Provider, error)

// PromptArgs drives RunPrompt. Template defaults to the tool name.
type PromptArgs struct {
	Tool     string
	Model    string
	Template string
	Vars     map[string]string
	System   string
	ActorID  string
}

// PromptResult is a completed text call.
type PromptResult struct {
	Text           string   `json:"text"`
	Usage          ai.Usage `json:"usage"`
	Model          string   `json:"model"`
	ResponseTimeMs int64    `json:"response_time_ms"`
}

// ImageArgs drives GenerateImage and EditImage.
type ImageArgs struct {
	Prompt  string
	Model   string
	Source  *ai.SourceImage // EditImage only
	ActorID string
}

// ImageResult carries the produced image bytes.
type ImageResult struct {
	Data           []byte `json:"data"`
	Model          string `json:"model"`
	ResponseTimeMs int64  `json:"response_time_ms"`
}

// SuggestArgs drives SuggestTerms.
type SuggestArgs struct {
	Taxonomy string
	Count    int
	Context  string
	Model    string
	ActorID  string
}
