// Task 5.2: Route registration and go-chi router setup.
// Public routes (/health, /auth/token) vs JWT-protected routes (/api/v1/*).
package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/matiasleandrokruk/draftforge/internal/api/handlers"
	apmiddleware "github.com/matiasleandrokruk/draftforge/internal/api/middleware"
	"github.com/matiasleandrokruk/draftforge/internal/domain/apilog"
	"github.com/matiasleandrokruk/draftforge/internal/domain/assist"
	"github.com/matiasleandrokruk/draftforge/internal/domain/autotag"
	"github.com/matiasleandrokruk/draftforge/internal/domain/document"
	"github.com/matiasleandrokruk/draftforge/internal/domain/identity"
	"github.com/matiasleandrokruk/draftforge/internal/domain/prompt"
	"github.com/matiasleandrokruk/draftforge/internal/infra/ai"
	"github.com/matiasleandrokruk/draftforge/internal/infra/config"
	"github.com/matiasleandrokruk/draftforge/internal/infra/scheduler"
)

// NewRouter creates the chi router with every route wired, and registers the
// batch handler on the scheduler. The caller owns the scheduler's lifecycle.
func NewRouter(db *sql.DB, cfg config.Config, sched *scheduler.Store) (*chi.Mux, error) {
	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	creds, err := credentialsFrom(cfg)
	if err != nil {
		return nil, err
	}
	resolveChat := func(model string) (ai.Provider, error) { return ai.Resolve(model, creds) }
	resolveImage := func(model string) (ai.Provider, error) { return ai.ResolveImage(model, creds) }

	docs := document.NewService(db)
	logs := apilog.NewService(db)
	prompts := prompt.NewLoader(cfg.PromptsDir, cfg.Locale)

	assistSvc := assist.NewService(prompts, resolveChat, resolveImage, logs, docs, assist.Options{
		DefaultModel: cfg.DefaultModel,
		ImageModel:   cfg.ImageModel,
		TagModel:     cfg.TagModel,
		LogPrompts:   cfg.LogPrompts,
		LogResponses: cfg.LogResponses,
	})

	batchSvc := autotag.NewService(db, docs, prompts, autotag.ProviderResolver(resolveChat), logs, sched, autotag.Options{
		Model:        cfg.TagModel,
		Interval:     cfg.BatchInterval,
		AppendOnly:   true,
		LogPrompts:   cfg.LogPrompts,
		LogResponses: cfg.LogResponses,
	})
	sched.Handle(batchSvc.TaskGroup(), batchSvc.ProcessItem)

	// ===== PUBLIC ROUTES (no auth required) =====

	// Health check — unauthenticated, used by load balancers and health probes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	tokenHandler := handlers.NewTokenHandler(identity.NewService(db))
	r.Route("/auth", func(r chi.Router) {
		r.Post("/token", tokenHandler.Issue) // POST /auth/token
	})

	// ===== PROTECTED ROUTES (Bearer JWT with edit capability) =====

	promptHandler := handlers.NewPromptHandler(assistSvc)
	imageHandler := handlers.NewImageHandler(assistSvc)
	suggestHandler := handlers.NewSuggestHandler(assistSvc)
	autotagHandler := handlers.NewAutotagHandler(batchSvc)
	logsHandler := handlers.NewLogsHandler(logs)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apmiddleware.AuthMiddleware)

		r.Route("/ai", func(r chi.Router) {
			r.Post("/prompt", promptHandler.Run) // POST /api/v1/ai/prompt
			r.Route("/images", func(r chi.Router) {
				r.Post("/generate", imageHandler.Generate) // POST /api/v1/ai/images/generate
				r.Post("/edit", imageHandler.Edit)         // POST /api/v1/ai/images/edit
			})
			r.Post("/terms/suggest", suggestHandler.Suggest) // POST /api/v1/ai/terms/suggest
		})

		r.Route("/autotag", func(r chi.Router) {
			r.Post("/", autotagHandler.Start)    // POST /api/v1/autotag
			r.Get("/", autotagHandler.Status)    // GET /api/v1/autotag
			r.Delete("/", autotagHandler.Cancel) // DELETE /api/v1/autotag
		})

		r.Get("/logs", logsHandler.List) // GET /api/v1/logs
	})

	return r, nil
}

// credentialsFrom maps the config (env keys + YAML custom providers) into
// the gateway's credential set.
func credentialsFrom(cfg config.Config) (ai.Credentials, error) {
	creds := ai.Credentials{
		OpenAIKey:    cfg.OpenAIKey,
		AnthropicKey: cfg.AnthropicKey,
		GoogleKey:    cfg.GoogleKey,
		XAIKey:       cfg.XAIKey,
		ReplicateKey: cfg.ReplicateKey,
	}

	custom, err := config.LoadCustomProviders(cfg.ProvidersFile)
	if err != nil {
		return ai.Credentials{}, err
	}
	for _, c := range custom {
		creds.Custom = append(creds.Custom, ai.CustomEndpoint{
			Name:    c.Name,
			URL:     c.URL,
			APIKey:  c.APIKey,
			Model:   c.Model,
			Headers: c.Headers,
		})
	}
	return creds, nil
}
