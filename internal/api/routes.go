package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/krish-ai/chat-server/internal/api/handlers"
)

const DefaultChatPath = "/api/chat"

// RouterConfig selects the chat path and the optional static directory.
type RouterConfig struct {
	ChatPath  string
	StaticDir string
}

// NewRouter creates and configures a new chi router. Anything other than the
// chat endpoint, its preflight and static files answers 404 with an empty body.
func NewRouter(runner handlers.ChatRunner, cfg RouterConfig) *chi.Mux {
	if cfg.ChatPath == "" {
		cfg.ChatPath = DefaultChatPath
	}

	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(allowAnyOrigin)

	chat := handlers.NewChatHandler(runner)
	r.Post(cfg.ChatPath, chat.Chat)
	r.Options(cfg.ChatPath, chat.Preflight)

	if cfg.StaticDir != "" {
		files := http.FileServer(http.Dir(cfg.StaticDir))
		r.Method(http.MethodGet, "/*", files)
		r.Method(http.MethodHead, "/*", files)
	}

	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)
	return r
}
