// Package api provides the HTTP API server and handlers for the bookshelf.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/listenupapp/bookshelf-server/internal/http/response"
	"github.com/listenupapp/bookshelf-server/internal/ratelimit"
	"github.com/listenupapp/bookshelf-server/internal/service"
	"github.com/listenupapp/bookshelf-server/internal/store"
)

// Options configures the HTTP surface around the handlers.
type Options struct {
	AllowedOrigins []string
	// RateLimitRPS of 0 disables per-client rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store   *store.Store
	books   *service.BookService
	router  *chi.Mux
	api     huma.API
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st *store.Store, books *service.BookService, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		store:  st,
		books:  books,
		router: chi.NewRouter(),
		logger: logger,
	}
	if opts.RateLimitRPS > 0 && opts.RateLimitBurst > 0 {
		s.limiter = ratelimit.New(opts.RateLimitRPS, opts.RateLimitBurst)
	}

	s.setupMiddleware(opts)
	s.setupAPI()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API the routes are registered on.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(requestID)
	if s.books != nil {
		s.router.Use(withMessages(s.books.Messages()))
	}
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))
	if s.limiter != nil {
		s.router.Use(RateLimitMiddleware(s.limiter, s.logger))
	}

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "resource not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Fail(w, http.StatusMethodNotAllowed, "method not allowed", s.logger)
	})
}

// setupAPI creates the huma API on the router and registers all operations.
func (s *Server) setupAPI() {
	s.api = humachi.New(s.router, NewHumaConfig())
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerBookRoutes()
}

// NewHumaConfig returns the huma configuration for the bookshelf API.
// Response bodies are the bare envelopes, without $schema links.
func NewHumaConfig() huma.Config {
	humaConfig := huma.DefaultConfig("Bookshelf API", "1.0.0")
	humaConfig.Info.Description = "Manage a personal collection of books."
	humaConfig.CreateHooks = nil
	humaConfig.Transformers = nil
	return humaConfig
}
