package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sage-labs/sage/internal/api"
	"github.com/sage-labs/sage/internal/api/handlers"
	"github.com/sage-labs/sage/internal/api/middleware"
	"github.com/sage-labs/sage/internal/web"
)

type RouterConfig struct {
	APIKey          string
	AskHandler      *handlers.AskHandler
	IngestHandler   *handlers.IngestHandler
	StatusHandler   *handlers.StatusHandler
	DocumentHandler *handlers.DocumentHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Uploads dominate body size; 64 MiB covers typical PDFs.
	const maxBodyBytes int64 = 64 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.APIKey))

		r.Post("/ask", cfg.AskHandler.Ask)
		r.Post("/ingest", cfg.IngestHandler.Ingest)
		r.Get("/status", cfg.StatusHandler.Status)
		r.Get("/documents", cfg.DocumentHandler.List)
		r.Get("/documents/{id}/download", cfg.DocumentHandler.Download)
		r.Delete("/documents/{id}", cfg.DocumentHandler.Delete)
	})

	r.Handle("/*", web.Handler())

	return r
}
