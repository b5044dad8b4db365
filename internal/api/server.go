// Package api provides the HTTP API server and handlers for Nešvęsk Vienas.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nesvesk-vienas/nesvesk-server/internal/auth"
	"github.com/nesvesk-vienas/nesvesk-server/internal/metrics"
	"github.com/nesvesk-vienas/nesvesk-server/internal/ratelimit"
	"github.com/nesvesk-vienas/nesvesk-server/internal/search"
	"github.com/nesvesk-vienas/nesvesk-server/internal/sse"
	"github.com/nesvesk-vienas/nesvesk-server/internal/store"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Config holds HTTP-level settings.
type Config struct {
	AllowedOrigins    []string
	RequestsPerMinute int
	RequestBurst      int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store       store.Store
	services    *Services
	tokens      *auth.TokenService
	sseManager  *sse.Manager
	sseHandler  *sse.Handler
	searchIndex *search.SearchIndex // nil when browsing uses the in-memory filter
	metrics     *metrics.Metrics
	ipLimiter   *ratelimit.KeyedRateLimiter
	router      *chi.Mux
	api         huma.API
	logger      *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	st store.Store,
	services *Services,
	tokens *auth.TokenService,
	sseManager *sse.Manager,
	searchIndex *search.SearchIndex,
	m *metrics.Metrics,
	cfg Config,
	logger *slog.Logger,
) *Server {
	s := &Server{
		store:       st,
		services:    services,
		tokens:      tokens,
		sseManager:  sseManager,
		searchIndex: searchIndex,
		metrics:     m,
		router:      chi.NewRouter(),
		logger:      logger,
	}
	if cfg.RequestsPerMinute > 0 {
		s.ipLimiter = ratelimit.NewPerInterval(cfg.RequestsPerMinute, time.Minute, max(cfg.RequestBurst, 1))
	}

	s.sseHandler = sse.NewHandler(sseManager, streamUser, logger)

	s.setupMiddleware(cfg)
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, mainly for tests.
func (s *Server) API() huma.API {
	return s.api
}

// Shutdown stops background helpers owned by the server.
func (s *Server) Shutdown() error {
	if s.ipLimiter != nil {
		s.ipLimiter.Stop()
	}
	return nil
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(cfg Config) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Last-Event-ID"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if s.ipLimiter != nil {
		s.router.Use(RateLimitMiddleware(s.ipLimiter, s.logger))
	}
	s.router.Use(authMiddleware(s.tokens, s.services.User, s.logger))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	humaConfig := huma.DefaultConfig("Nešvęsk Vienas API", Version)
	humaConfig.Info.Description = "Holiday host and guest matching"
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerMeRoutes()
	s.registerProfileRoutes()
	s.registerInvitationRoutes()
	s.registerConnectionRoutes()
	s.registerMessageRoutes()
	s.registerBadgeRoutes()

	// Streaming and scraping stay outside huma; neither returns an envelope.
	s.router.Get("/api/v1/events", s.sseHandler.ServeHTTP)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}
}

// bearer marks an operation as requiring a token in the OpenAPI document.
var bearer = []map[string][]string{{"bearer": {}}}
