package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	logx "github.com/krish-ai/chat-server/pkg/logger"
)

// Config holds HTTP server configuration.
type Config struct {
	Host         string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port         int           `envconfig:"SERVER_PORT" default:"3000"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"120s"`
	IdleTimeout  time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ChatPath     string        `envconfig:"SERVER_CHAT_PATH" default:"/api/chat"`
	StaticDir    string        `envconfig:"SERVER_STATIC_DIR"`
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Server wraps the HTTP server.
type Server struct {
	config Config
	http   *http.Server
}

// NewServer creates a new HTTP server serving handler.
func NewServer(handler http.Handler, config Config) *Server {
	return &Server{
		config: config,
		http: &http.Server{
			Addr:         config.Addr(),
			Handler:      handler,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

// Start serves on the configured address and blocks until the server stops.
// A graceful Shutdown is not reported as an error.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until the server stops.
func (s *Server) Serve(ln net.Listener) error {
	logx.Info().Str("addr", ln.Addr().String()).Str("chat_path", s.config.ChatPath).Msg("Starting HTTP server")
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, letting in-flight requests finish.
func (s *Server) Shutdown(ctx context.Context) error {
	logx.Info().Msg("Shutting down server...")
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	logx.Info().Msg("Server stopped")
	return nil
}
