// Package ai defines the provider gateway: one adapter per AI provider wire
// format behind a single interface (Task 2.1). Adapters normalize six
// incompatible request/response shapes into Request/Result so handlers and
// the batch engine never touch provider JSON.
package ai

import (
	"context"
	"fmt"
	"time"
)

// ProviderKind identifies a provider wire format, not a vendor. Two vendors
// sharing a format (OpenAI and xAI) share a kind and an adapter.
type ProviderKind string

const (
	KindChatCompletion  ProviderKind = "chat_completion"
	KindMessages        ProviderKind = "messages"
	KindGenerativeParts ProviderKind = "generative_parts"
	KindCustomChat      ProviderKind = "custom_chat"
	KindImageGeneration ProviderKind = "image_generation"
	KindAsyncPrediction ProviderKind = "async_prediction"
)

// Context carries everything an adapter needs to talk to its endpoint.
// Built by the registry from configuration; adapters never read config.
type Context struct {
	Kind         ProviderKind
	Endpoint     string
	APIKey       string
	Model        string
	Temperature  float64
	MaxTokens    int
	ExtraHeaders map[string]string
}

// Request is a single normalized call. Overrides are raw body fields merged
// into the outgoing payload subject to each adapter's allow-list.
type Request struct {
	Prompt    string
	System    string
	Overrides map[string]any
}

// Usage is the normalized token count pair. Zero for image providers.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// ErrorKind classifies a failed call.
type ErrorKind string

const (
	// ErrConfig — the call never left the process (missing key, unknown model).
	ErrConfig ErrorKind = "config"
	// ErrTransport — the HTTP round trip itself failed (timeout, DNS, refused).
	ErrTransport ErrorKind = "transport"
	// ErrInvalidResponse — the provider answered but not in the expected shape.
	ErrInvalidResponse ErrorKind = "invalid_response"
	// ErrDecode — the payload arrived but its content could not be decoded.
	ErrDecode ErrorKind = "decode"
)

// CallError is the failure arm of a Result. RawBody keeps the provider's
// verbatim response for diagnostics; it is never parsed further.
type CallError struct {
	Kind    ErrorKind
	Message string
	RawBody string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Result is the tagged union every adapter returns: exactly one of Text,
// Bytes or Err is meaningful.
type Result struct {
	Text  string
	Bytes []byte
	Err   *CallError
}

// OK reports whether the call succeeded.
func (r Result) OK() bool { return r.Err == nil }

func textResult(text string) Result  { return Result{Text: text} }
func bytesResult(data []byte) Result { return Result{Bytes: data} }

func errorResult(kind ErrorKind, rawBody, format string, args ...any) Result {
	return Result{Err: &CallError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		RawBody: rawBody,
	}}
}

// Snapshot is the last outgoing request, kept for diagnostics and logging.
type Snapshot struct {
	URL  string
	Body []byte
}

// Provider is the gateway interface. Send performs one synchronous call;
// Usage and ResponseTime report on the most recent call.
type Provider interface {
	Send(ctx context.Context, req Request) Result
	Usage() Usage
	ResponseTime() time.Duration
	Model() string
	LastRequest() Snapshot
	LastResponse() []byte
}

// SourceImage is the input picture for an edit operation.
type SourceImage struct {
	Data     []byte
	MIME     string
	Filename string
}

// ImageEditor is implemented by providers that can edit an existing image.
type ImageEditor interface {
	EditImage(ctx context.Context, req Request, src SourceImage) Result
}

// Call timeouts. Image models routinely take over a minute.
const (
	chatTimeout  = 60 * time.Second
	imageTimeout = 100 * time.Second
)

const (
	mimeJSON          = "application/json"
	headerContentType = "Content-Type"
)
