// Package server provides the HTTP server and routing for RythuMitra.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/saitejamanchi/rythumitra/internal/config"
	"github.com/saitejamanchi/rythumitra/internal/di"
)

// Server represents the HTTP server.
type Server struct {
	router    *chi.Mux
	server    *http.Server
	log       zerolog.Logger
	cfg       *config.Config
	container *di.Container
}

// New creates a new HTTP server wired to the DI container.
func New(cfg *config.Config, container *di.Container, log zerolog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       log.With().Str("component", "server").Logger(),
		cfg:       cfg,
		container: container,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	systemHandlers := NewSystemHandlers(s.cfg, s.container, s.log)
	eventsHandler := NewEventsWSHandler(s.container.EventBus, s.log)

	s.router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Post("/recommendations", s.container.AdvisoryHandler.HandleRecommend)

			r.Route("/scenarios", func(r chi.Router) {
				r.Post("/sowing-delay", s.container.AdvisoryHandler.HandleSowingDelay)
				r.Post("/rainfall-failure", s.container.AdvisoryHandler.HandleRainfallFailure)
				r.Post("/fertilizer-reduction", s.container.AdvisoryHandler.HandleFertilizerReduction)
				r.Post("/pest-outbreak", s.container.AdvisoryHandler.HandlePestOutbreak)
				r.Post("/compare", s.container.AdvisoryHandler.HandleCompareScenarios)
			})

			r.Get("/crops", s.container.CatalogHandler.HandleListCrops)
			r.Get("/crops/{name}", s.container.CatalogHandler.HandleGetCrop)
			r.Get("/soil", s.container.SoilHandler.HandleGetSoil)
			r.Get("/weather", s.container.WeatherHandler.HandleGetWeather)
			r.Get("/advisories/recent", s.container.AdvisoryHandler.HandleRecentAdvisories)

			r.Get("/system/health", systemHandlers.HandleHealth)
			r.Get("/system/info", systemHandlers.HandleInfo)
			r.Post("/system/backup", systemHandlers.HandleBackup)
		})

		// Websocket stream is long-lived, so it stays outside the timeout group.
		r.Get("/events/ws", eventsHandler.ServeHTTP)
	})
}

// Start begins listening. Blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
