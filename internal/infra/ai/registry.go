// Task 2.6: model catalog and provider resolution.
// The registry is the only place that knows which vendor owns which model
// and which credential unlocks it. Everything downstream receives a ready
// Provider and stays vendor-blind.
package ai

import (
	"errors"
	"fmt"
	"strings"
)

// Default endpoints. Overridable per provider only through the custom
// provider registry; the built-in catalogs always use these.
const (
	openAIChatURL   = "https://api.openai.com/v1/chat/completions"
	xaiChatURL      = "https://api.x.ai/v1/chat/completions"
	anthropicURL    = "https://api.anthropic.com/v1/messages"
	geminiModelsURL = "https://generativelanguage.googleapis.com/v1beta/models"
	openAIImageURL  = "https://api.openai.com/v1/images"
	replicateURL    = "https://api.replicate.com/v1/models"
)

// Resolution failures. Both are configuration errors from the caller's view.
var (
	ErrUnknownModel = errors.New("no provider for model")
	ErrMissingKey   = errors.New("provider API key not configured")
)

// Credentials carries the configured API keys plus the custom endpoint
// registry. Built once from config at startup.
type Credentials struct {
	OpenAIKey    string
	AnthropicKey string
	GoogleKey    string
	XAIKey       string
	ReplicateKey string
	Custom       []CustomEndpoint
}

// CustomEndpoint mirrors one entry of the YAML provider registry.
type CustomEndpoint struct {
	Name    string
	URL     string
	APIKey  string
	Model   string
	Headers []string
}

// modelParams are the per-model default sampling knobs.
type modelParams struct {
	temperature float64
	maxTokens   int
}

var openAIModels = map[string]modelParams{
	"gpt-4o":       {1.0, 16384},
	"gpt-4o-mini":  {1.0, 16384},
	"gpt-4.1":      {1.0, 32768},
	"gpt-4.1-mini": {1.0, 32768},
	"gpt-5":        {1.0, 32768},
	"gpt-5-mini":   {1.0, 32768},
	"o4-mini":      {1.0, 65536},
}

var xaiModels = map[string]modelParams{
	"grok-3":      {1.0, 8192},
	"grok-3-mini": {1.0, 8192},
	"grok-4":      {1.0, 8192},
}

var anthropicModels = map[string]modelParams{
	"claude-opus-4-20250514":     {1.0, 8192},
	"claude-sonnet-4-20250514":   {1.0, 8192},
	"claude-3-7-sonnet-20250219": {1.0, 8192},
	"claude-3-5-haiku-20241022":  {1.0, 8192},
}

var geminiModels = map[string]modelParams{
	"gemini-2.0-flash":      {1.0, 8192},
	"gemini-2.5-flash":      {1.0, 8192},
	"gemini-2.5-flash-lite": {1.0, 8192},
	"gemini-2.5-pro":        {1.0, 8192},
}

// Resolve returns a configured chat Provider for model, or a configuration
// error when the model is unknown or its credential is missing.
func Resolve(model string, creds Credentials) (Provider, error) {
	if params, ok := openAIModels[model]; ok {
		if creds.OpenAIKey == "" {
			return nil, fmt.Errorf("model %q: %w", model, ErrMissingKey)
		}
		return NewChatProvider(chatContext(KindChatCompletion, openAIChatURL, creds.OpenAIKey, model, params)), nil
	}

	if params, ok := xaiModels[model]; ok {
		if creds.XAIKey == "" {
			return nil, fmt.Errorf("model %q: %w", model, ErrMissingKey)
		}
		return NewChatProvider(chatContext(KindChatCompletion, xaiChatURL, creds.XAIKey, model, params)), nil
	}

	if params, ok := anthropicModels[model]; ok {
		if creds.AnthropicKey == "" {
			return nil, fmt.Errorf("model %q: %w", model, ErrMissingKey)
		}
		return NewMessagesProvider(chatContext(KindMessages, anthropicURL, creds.AnthropicKey, model, params)), nil
	}

	if params, ok := geminiModels[model]; ok {
		if creds.GoogleKey == "" {
			return nil, fmt.Errorf("model %q: %w", model, ErrMissingKey)
		}
		return NewGenerativeProvider(chatContext(KindGenerativeParts, geminiModelsURL, creds.GoogleKey, model, params)), nil
	}

	// Custom providers match on the registry entry name or its model id.
	for _, c := range creds.Custom {
		if c.Name != model && c.Model != model {
			continue
		}
		return NewCustomChatProvider(Context{
			Kind:         KindCustomChat,
			Endpoint:     c.URL,
			APIKey:       c.APIKey,
			Model:        c.Model,
			Temperature:  1.0,
			MaxTokens:    4096,
			ExtraHeaders: parseHeaderLines(c.Headers),
		}), nil
	}

	return nil, fmt.Errorf("model %q: %w", model, ErrUnknownModel)
}

// ResolveImage returns a configured image Provider for model. Replicate
// models are recognized by their owner/name slug shape.
func ResolveImage(model string, creds Credentials) (Provider, error) {
	switch {
	case model == "gpt-image-1" || strings.HasPrefix(model, "dall-e"):
		if creds.OpenAIKey == "" {
			return nil, fmt.Errorf("model %q: %w", model, ErrMissingKey)
		}
		return NewImageProvider(Context{
			Kind:     KindImageGeneration,
			Endpoint: openAIImageURL,
			APIKey:   creds.OpenAIKey,
			Model:    model,
		}), nil

	case strings.HasPrefix(model, "gemini-") || strings.HasPrefix(model, "imagen-"):
		if creds.GoogleKey == "" {
			return nil, fmt.Errorf("model %q: %w", model, ErrMissingKey)
		}
		return NewGenerativeImageProvider(Context{
			Kind:     KindGenerativeParts,
			Endpoint: geminiModelsURL,
			APIKey:   creds.GoogleKey,
			Model:    model,
		}), nil

	case strings.Contains(model, "/"):
		if creds.ReplicateKey == "" {
			return nil, fmt.Errorf("model %q: %w", model, ErrMissingKey)
		}
		return NewPredictionProvider(Context{
			Kind:     KindAsyncPrediction,
			Endpoint: replicateURL,
			APIKey:   creds.ReplicateKey,
			Model:    model,
		}), nil
	}

	return nil, fmt.Errorf("model %q: %w", model, ErrUnknownModel)
}

// ChatModels lists every chat model the built-in catalogs can resolve.
// Used by the API to report choices to the editor UI.
func ChatModels(creds Credentials) []string {
	var models []string
	for _, catalog := range []map[string]modelParams{openAIModels, xaiModels, anthropicModels, geminiModels} {
		for m := range catalog {
			models = append(models, m)
		}
	}
	for _, c := range creds.Custom {
		models = append(models, c.Name)
	}
	return models
}

func chatContext(kind ProviderKind, endpoint, key, model string, params modelParams) Context {
	return Context{
		Kind:        kind,
		Endpoint:    endpoint,
		APIKey:      key,
		Model:       model,
		Temperature: params.temperature,
		MaxTokens:   params.maxTokens,
	}
}
