// Package api provides the HTTP API server and handlers for the Barterly application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/barterly/barterly-server/internal/engine"
	"github.com/barterly/barterly-server/internal/http/response"
	"github.com/barterly/barterly-server/internal/ratelimit"
	"github.com/barterly/barterly-server/internal/service"
	"github.com/barterly/barterly-server/internal/sse"
	"github.com/barterly/barterly-server/internal/store"
	"github.com/barterly/barterly-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store         *store.Store
	items         *service.ItemService
	offers        *service.OfferService
	notifications *service.NotificationService
	engines       *engine.Registry
	sseHandler    *sse.Handler
	swipeLimiter  *ratelimit.KeyedRateLimiter
	validate      *validation.Validator
	router        *chi.Mux
	api           huma.API
	logger        *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store *store.Store, items *service.ItemService, offers *service.OfferService, notifications *service.NotificationService, engines *engine.Registry, sseManager *sse.Manager, swipeLimiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *Server {
	s := &Server{
		store:         store,
		items:         items,
		offers:        offers,
		notifications: notifications,
		engines:       engines,
		sseHandler:    sse.NewHandler(sseManager, identityFromRequest, logger),
		swipeLimiter:  swipeLimiter,
		validate:      validation.New(),
		router:        chi.NewRouter(),
		logger:        logger,
	}

	// chi requires the full middleware stack before any route is mounted,
	// and humachi mounts huma's routes at construction.
	s.setupMiddleware()

	s.api = humachi.New(s.router, huma.DefaultConfig("Barterly API", "1.0.0"))
	RegisterErrorHandler()

	s.setupRoutes()
	s.registerItemRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", identityHeader},
		MaxAge:         300,
	}))
	s.router.Use(s.identity)
}

// setupRoutes configures the plain chi routes. Item catalog routes are
// registered separately through huma.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Engine endpoints (per-user swipe cycle).
		r.Route("/engine", func(r chi.Router) {
			r.Use(s.requireUser)
			r.Get("/state", s.handleEngineState)
			r.Post("/anchor", s.handleSelectAnchor)
			r.Post("/reset", s.handleEngineReset)
			r.With(s.swipeRateLimit).Post("/swipe", s.handleSwipe)
		})

		// Trade offers.
		r.Route("/offers", func(r chi.Router) {
			r.Use(s.requireUser)
			r.Get("/sent", s.handleListSentOffers)
			r.Get("/received", s.handleListReceivedOffers)
			r.Post("/{id}/accept", s.handleAcceptOffer)
			r.Post("/{id}/decline", s.handleDeclineOffer)
			r.Post("/{id}/withdraw", s.handleWithdrawOffer)
		})

		// Notification inbox.
		r.Route("/notifications", func(r chi.Router) {
			r.Use(s.requireUser)
			r.Get("/", s.handleListNotifications)
			r.Get("/unread-count", s.handleUnreadCount)
			r.Post("/read-all", s.handleMarkAllRead)
			r.Post("/{id}/read", s.handleMarkRead)
		})

		// Live notification stream.
		r.With(s.requireUser).Get("/events", s.sseHandler.ServeHTTP)
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
