package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aristath/perfagent/internal/di"
	agenthandlers "github.com/aristath/perfagent/internal/modules/agent/handlers"
	analyticshandlers "github.com/aristath/perfagent/internal/modules/analytics/handlers"
	returnshandlers "github.com/aristath/perfagent/internal/modules/returns/handlers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// DefaultRequestTimeout bounds a request when Config.RequestTimeout is unset
const DefaultRequestTimeout = 60 * time.Second

// writeTimeoutMargin leaves room to flush a response written just before the request deadline
const writeTimeoutMargin = 5 * time.Second

// Config holds server configuration
type Config struct {
	Log            zerolog.Logger
	Port           int
	DevMode        bool
	RequestTimeout time.Duration // Whole-request budget, see config.Config.RequestTimeout
	Container      *di.Container // DI container with all services
}

// Server represents the HTTP server
type Server struct {
	router    *chi.Mux
	server    *http.Server
	log       zerolog.Logger
	port           int
	requestTimeout time.Duration
	container      *di.Container
	stats          statsFunc
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}

	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		port:           cfg.Port,
		requestTimeout: requestTimeout,
		container:      cfg.Container,
	}
	s.stats = s.getSystemStats

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: requestTimeout + writeTimeoutMargin,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(s.requestTimeout))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	if s.container == nil {
		return
	}

	s.router.Route("/api", func(r chi.Router) {
		// Chat agent
		agentHandler := agenthandlers.NewHandler(s.container.AgentService, s.log)
		agentHandler.RegisterRoutes(r)

		// Analytics (GET /analytics, GET /metrics, POST /compute)
		analyticsHandler := analyticshandlers.NewHandler(s.container.AnalyticsService, s.log)
		analyticsHandler.RegisterRoutes(r)

		// Return series under /data
		returnsHandler := returnshandlers.NewHandler(s.container.ReturnsRepo, s.log)
		returnsHandler.RegisterRoutes(r)
	})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
