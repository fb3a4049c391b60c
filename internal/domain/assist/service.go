package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/matiasleandrokruk/draftforge/internal/domain/apilog"
	"github.com/matiasleandrokruk/draftforge/internal/domain/prompt"
	"github.com/matiasleandrokruk/draftforge/internal/infra/ai"
)

// TermSource lists the existing term names of a taxonomy.
type TermSource interface {
	TermNames(ctx context.Context, taxonomy string) ([]string, error)
}

// Service runs the synchronous authoring tools.
type Service struct {
	prompts      TemplateSource
	resolveChat  Resolver
	resolveImage Resolver
	logs         CallLog
	terms        TermSource

	defaultModel string
	imageModel   string
	tagModel     string
	logPrompts   bool
	logResponses bool
}

// Options configures the assist service.
type Options struct {
	DefaultModel string
	ImageModel   string
	TagModel     string
	LogPrompts   bool
	LogResponses bool
}

// NewService wires the assist service.
func NewService(prompts TemplateSource, resolveChat, resolveImage Resolver, logs CallLog, terms TermSource, opts Options) *Service {
	if opts.TagModel == "" {
		opts.TagModel = opts.DefaultModel
	}
	return &Service{
		prompts:      prompts,
		resolveChat:  resolveChat,
		resolveImage: resolveImage,
		logs:         logs,
		terms:        terms,
		defaultModel: opts.DefaultModel,
		imageModel:   opts.ImageModel,
		tagModel:     opts.TagModel,
		logPrompts:   opts.LogPrompts,
		logResponses: opts.LogResponses,
	}
}

// RunPrompt renders the tool's template with the given vars and sends it.
// The gateway's error message surfaces verbatim on failure.
func (s *Service) RunPrompt(ctx context.Context, args PromptArgs) (PromptResult, error) {
	name := args.Template
	if name == "" {
		name = args.Tool
	}
	tpl := s.prompts.Template(name)
	if tpl == "" {
		return PromptResult{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	rendered := prompt.Render(tpl, args.Vars)

	model := args.Model
	if model == "" {
		model = s.defaultModel
	}
	provider, err := s.resolveChat(model)
	if err != nil {
		return PromptResult{}, err
	}

	result := provider.Send(ctx, ai.Request{Prompt: rendered, System: args.System})
	if !result.OK() {
		s.logError(ctx, args.Tool, provider.Model(), args.ActorID, rendered, result.Err.Error())
		return PromptResult{}, result.Err
	}

	usage := provider.Usage()
	s.logs.Insert(ctx, apilog.Record{ //nolint:errcheck
		Tool:           args.Tool,
		InputTokens:    usage.InputTokens,
		OutputTokens:   usage.OutputTokens,
		Model:          provider.Model(),
		ResponseTimeMs: provider.ResponseTime().Milliseconds(),
		ActorID:        args.ActorID,
		Message:        apilog.BuildMessage(rendered, result.Text, s.logPrompts, s.logResponses),
	})

	return PromptResult{
		Text:           result.Text,
		Usage:          usage,
		Model:          provider.Model(),
		ResponseTimeMs: provider.ResponseTime().Milliseconds(),
	}, nil
}

// GenerateImage produces a new image from a text prompt.
func (s *Service) GenerateImage(ctx context.Context, args ImageArgs) (ImageResult, error) {
	provider, err := s.imageProvider(args.Model)
	if err != nil {
		return ImageResult{}, err
	}

	result := provider.Send(ctx, ai.Request{Prompt: args.Prompt})
	return s.finishImage(ctx, apilog.ToolImageGenerate, provider, args, result)
}

// EditImage reworks an existing image under a text instruction.
func (s *Service) EditImage(ctx context.Context, args ImageArgs) (ImageResult, error) {
	if args.Source == nil {
		return ImageResult{}, fmt.Errorf("edit image: source image required")
	}
	provider, err := s.imageProvider(args.Model)
	if err != nil {
		return ImageResult{}, err
	}
	editor, ok := provider.(ai.ImageEditor)
	if !ok {
		return ImageResult{}, ErrNotEditable
	}

	result := editor.EditImage(ctx, ai.Request{Prompt: args.Prompt}, *args.Source)
	return s.finishImage(ctx, apilog.ToolImageEdit, provider, args, result)
}

// SuggestTerms asks for new term names that complement what a taxonomy
// already has. The model's reply must be a JSON array of strings; markdown
// fences around it are tolerated.
func (s *Service) SuggestTerms(ctx context.Context, args SuggestArgs) ([]string, error) {
	if args.Count < 1 {
		args.Count = 5
	}

	existing, err := s.terms.TermNames(ctx, args.Taxonomy)
	if err != nil {
		return nil, err
	}
	existingJSON, err := json.Marshal(existing)
	if err != nil {
		return nil, err
	}

	tpl := s.prompts.Template("add-terms")
	if tpl == "" {
		return nil, fmt.Errorf("%w: add-terms", ErrUnknownTemplate)
	}
	rendered := prompt.Render(tpl, map[string]string{
		"count":    strconv.Itoa(args.Count),
		"taxonomy": args.Taxonomy,
		"terms":    string(existingJSON),
		"context":  args.Context,
	})

	model := args.Model
	if model == "" {
		model = s.tagModel
	}
	provider, err := s.resolveChat(model)
	if err != nil {
		return nil, err
	}

	result := provider.Send(ctx, ai.Request{Prompt: rendered})
	if !result.OK() {
		s.logError(ctx, apilog.ToolSuggestTerms, provider.Model(), args.ActorID, rendered, result.Err.Error())
		return nil, result.Err
	}

	var names []string
	if err := json.Unmarshal([]byte(stripFences(result.Text)), &names); err != nil {
		s.logError(ctx, apilog.ToolSuggestTerms, provider.Model(), args.ActorID, rendered, "unparseable term list: "+result.Text)
		return nil, fmt.Errorf("suggest terms: unparseable reply: %w", err)
	}

	usage := provider.Usage()
	s.logs.Insert(ctx, apilog.Record{ //nolint:errcheck
		Tool:           apilog.ToolSuggestTerms,
		InputTokens:    usage.InputTokens,
		OutputTokens:   usage.OutputTokens,
		Model:          provider.Model(),
		ResponseTimeMs: provider.ResponseTime().Milliseconds(),
		ActorID:        args.ActorID,
		Message:        apilog.BuildMessage(rendered, result.Text, s.logPrompts, s.logResponses),
	})
	return names, nil
}

func (s *Service) imageProvider(model string) (ai.Provider, error) {
	if model == "" {
		model = s.imageModel
	}
	return s.resolveImage(model)
}

// finishImage logs the call and shapes the result shared by generate and
// edit.
func (s *Service) finishImage(ctx context.Context, tool string, provider ai.Provider, args ImageArgs, result ai.Result) (ImageResult, error) {
	if !result.OK() {
		s.logError(ctx, tool, provider.Model(), args.ActorID, args.Prompt, result.Err.Error())
		return ImageResult{}, result.Err
	}

	s.logs.Insert(ctx, apilog.Record{ //nolint:errcheck
		Tool:           tool,
		Model:          provider.Model(),
		ResponseTimeMs: provider.ResponseTime().Milliseconds(),
		ActorID:        args.ActorID,
		Message:        apilog.BuildMessage(args.Prompt, "", s.logPrompts, false),
	})
	return ImageResult{
		Data:           result.Bytes,
		Model:          provider.Model(),
		ResponseTimeMs: provider.ResponseTime().Milliseconds(),
	}, nil
}

func (s *Service) logError(ctx context.Context, tool, model, actor, rendered, message string) {
	s.logs.Insert(ctx, apilog.Record{ //nolint:errcheck
		Tool:    tool + apilog.ErrorSuffix,
		Model:   model,
		ActorID: actor,
		Message: apilog.BuildMessage(rendered, message, s.logPrompts, true),
	})
}

// stripFences drops a surrounding markdown code fence so models that wrap
// JSON replies still parse.
func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if nl := strings.IndexByte(trimmed, '\n'); nl >= 0 && !strings.HasPrefix(trimmed, "[") {
		trimmed = trimmed[nl+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
