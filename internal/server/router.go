package server

import (
	"net/http"

	"github.com/botweaver/knowledge/internal/api"
	"github.com/botweaver/knowledge/internal/api/handlers"
	"github.com/botweaver/knowledge/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	KnowledgeBaseHandler *handlers.KnowledgeBaseHandler
	DocumentHandler      *handlers.DocumentHandler
	ContextHandler       *handlers.ContextHandler
	BotHandler           *handlers.BotHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/knowledge-bases", func(r chi.Router) {
		r.Post("/", cfg.KnowledgeBaseHandler.Create)
		r.Get("/{id}", cfg.KnowledgeBaseHandler.Get)
		r.Post("/{id}/documents", cfg.DocumentHandler.Create)
		r.Get("/{id}/documents", cfg.DocumentHandler.List)
	})

	r.Route("/documents", func(r chi.Router) {
		r.Get("/{id}", cfg.DocumentHandler.Get)
		r.Post("/process", cfg.DocumentHandler.Process)
	})

	r.Route("/context", func(r chi.Router) {
		r.Post("/query", cfg.ContextHandler.Query)
		r.Post("/prompt", cfg.ContextHandler.Prompt)
	})

	r.Route("/bots/{botID}", func(r chi.Router) {
		r.Get("/knowledge-bases", cfg.BotHandler.ListLinked)
		r.Post("/knowledge-bases", cfg.BotHandler.Link)
		r.Delete("/knowledge-bases", cfg.BotHandler.Unlink)
	})

	return r
}
