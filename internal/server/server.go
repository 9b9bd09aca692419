// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"mixee/internal/config"
	"mixee/internal/domain/activity"
	"mixee/internal/server/handlers"
	"mixee/internal/service/setup"
)

// Dependencies are the services exposed over HTTP
type Dependencies struct {
	Pulse    activity.Pulse
	Badges   activity.Badges
	Shell    *activity.Shell
	Sections []activity.Section
	Setup    *setup.Service
	Hub      *handlers.StreamHub
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, deps Dependencies, logger *zap.Logger) *Server {
	router := NewRouter(cfg, deps, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// NewRouter builds the route tree
func NewRouter(cfg config.ServerConfig, deps Dependencies, logger *zap.Logger) *chi.Mux {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	pulseHandler := handlers.NewPulseHandler(deps.Pulse, deps.Shell, logger.Named("pulse"))
	badgeHandler := handlers.NewBadgeHandler(deps.Badges, deps.Sections, logger.Named("badges"))
	setupHandler := handlers.NewSetupHandler(deps.Setup, logger.Named("setup"))

	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		r.Route("/v1", func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Route("/pulse", func(r chi.Router) {
				r.Get("/", pulseHandler.GetPulse)
				r.Put("/active", pulseHandler.SetActive)
				r.Post("/view/toggle", pulseHandler.ToggleView)
			})

			r.Route("/badges", func(r chi.Router) {
				r.Get("/", badgeHandler.GetBadges)
				r.Put("/active", badgeHandler.SetActive)
			})

			r.Get("/sections", badgeHandler.GetSections)

			r.Route("/setup", func(r chi.Router) {
				r.Post("/validate", setupHandler.Validate)
				r.Post("/probe", setupHandler.Probe)
			})
		})
	})

	// WebSocket endpoint for live updates
	if deps.Hub != nil {
		router.Get("/ws/pulse", deps.Hub.ServeHTTP)
	}

	return router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
