// Task 2.6: Unit tests for model resolution.
package ai

import (
	"errors"
	"testing"
)

func allCreds() Credentials {
	return Credentials{
		OpenAIKey:    "sk-o",
		AnthropicKey: "sk-a",
		GoogleKey:    "sk-g",
		XAIKey:       "sk-x",
		ReplicateKey: "r8",
		Custom: []CustomEndpoint{
			{Name: "local-vllm", URL: "http://localhost:8000/v1/chat/completions", Model: "qwen2.5-7b-instruct"},
		},
	}
}

func TestResolve_ModelFamilies(t *testing.T) {
	t.Parallel()

	cases := []struct {
		model string
		want  any
	}{
		{"gpt-4o-mini", (*ChatProvider)(nil)},
		{"grok-3-mini", (*ChatProvider)(nil)},
		{"claude-sonnet-4-20250514", (*MessagesProvider)(nil)},
		{"gemini-2.5-flash", (*GenerativeProvider)(nil)},
		{"local-vllm", (*CustomChatProvider)(nil)},
		{"qwen2.5-7b-instruct", (*CustomChatProvider)(nil)},
	}

	for _, tc := range cases {
		p, err := Resolve(tc.model, allCreds())
		if err != nil {
			t.Errorf("Resolve(%q) error = %v", tc.model, err)
			continue
		}
		switch tc.want.(type) {
		case *ChatProvider:
			if _, ok := p.(*ChatProvider); !ok {
				t.Errorf("Resolve(%q) = %T, want *ChatProvider", tc.model, p)
			}
		case *MessagesProvider:
			if _, ok := p.(*MessagesProvider); !ok {
				t.Errorf("Resolve(%q) = %T, want *MessagesProvider", tc.model, p)
			}
		case *GenerativeProvider:
			if _, ok := p.(*GenerativeProvider); !ok {
				t.Errorf("Resolve(%q) = %T, want *GenerativeProvider", tc.model, p)
			}
		case *CustomChatProvider:
			if _, ok := p.(*CustomChatProvider); !ok {
				t.Errorf("Resolve(%q) = %T, want *CustomChatProvider", tc.model, p)
			}
		}
	}
}

func TestResolve_MissingKey(t *testing.T) {
	t.Parallel()

	creds := allCreds()
	creds.AnthropicKey = ""

	_, err := Resolve("claude-sonnet-4-20250514", creds)
	if !errors.Is(err, ErrMissingKey) {
		t.Errorf("expected ErrMissingKey, got %v", err)
	}
}

func TestResolve_UnknownModel(t *testing.T) {
	t.Parallel()

	_, err := Resolve("definitely-not-a-model", allCreds())
	if !errors.Is(err, ErrUnknownModel) {
		t.Errorf("expected ErrUnknownModel, got %v", err)
	}
}

func TestResolveImage_Families(t *testing.T) {
	t.Parallel()

	creds := allCreds()

	if p, err := ResolveImage("gpt-image-1", creds); err != nil {
		t.Errorf("ResolveImage(gpt-image-1) error = %v", err)
	} else if _, ok := p.(*ImageProvider); !ok {
		t.Errorf("ResolveImage(gpt-image-1) = %T, want *ImageProvider", p)
	}

	if p, err := ResolveImage("gemini-2.5-flash-image", creds); err != nil {
		t.Errorf("ResolveImage(gemini image) error = %v", err)
	} else if _, ok := p.(*GenerativeImageProvider); !ok {
		t.Errorf("ResolveImage(gemini image) = %T, want *GenerativeImageProvider", p)
	}

	if p, err := ResolveImage("black-forest-labs/flux-schnell", creds); err != nil {
		t.Errorf("ResolveImage(replicate slug) error = %v", err)
	} else if _, ok := p.(*PredictionProvider); !ok {
		t.Errorf("ResolveImage(replicate slug) = %T, want *PredictionProvider", p)
	}
}

// Image providers that can edit must implement ImageEditor.
func TestResolveImage_EditorsImplementInterface(t *testing.T) {
	t.Parallel()

	for _, model := range []string{"gpt-image-1", "gemini-2.5-flash-image", "black-forest-labs/flux-kontext-pro"} {
		p, err := ResolveImage(model, allCreds())
		if err != nil {
			t.Fatalf("ResolveImage(%q) error = %v", model, err)
		}
		if _, ok := p.(ImageEditor); !ok {
			t.Errorf("%T does not implement ImageEditor", p)
		}
	}
}

func TestResolveImage_MissingKey(t *testing.T) {
	t.Parallel()

	creds := allCreds()
	creds.ReplicateKey = ""

	_, err := ResolveImage("owner/some-model", creds)
	if !errors.Is(err, ErrMissingKey) {
		t.Errorf("expected ErrMissingKey, got %v", err)
	}
}

func TestChatModels_IncludesCustom(t *testing.T) {
	t.Parallel()

	models := ChatModels(allCreds())

	found := map[string]bool{}
	for _, m := range models {
		found[m] = true
	}
	for _, want := range []string{"gpt-4o-mini", "grok-3", "claude-3-5-haiku-20241022", "gemini-2.5-pro", "local-vllm"} {
		if !found[want] {
			t.Errorf("ChatModels missing %q", want)
		}
	}
}
