package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docent-ai/internal/corpus"
	"docent-ai/internal/handlers"
	"docent-ai/internal/rag"
	"docent-ai/internal/session"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine    rag.Engine
	Sessions  *session.Store
	Artifacts *corpus.Store
	History   *corpus.Store
	IndexHTML string // Embedded HTML content
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	askHandler := handlers.NewAskHandler(deps.Engine, deps.Sessions)
	clearHandler := handlers.NewClearHandler(deps.Sessions)
	healthHandler := handlers.NewHealthHandler(deps.Artifacts, deps.History)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/ask", askHandler)
		r.Method(http.MethodPost, "/clear", clearHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	// Serve the chat page at root
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(deps.IndexHTML))
	})

	return r
}
