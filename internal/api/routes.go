package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates and configures the HTTP router
func NewRouter(handlers *Handlers, loggingMiddleware *LoggingMiddleware) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - ORDER MATTERS!
	r.Use(middleware.RequestID)      // Generate request ID first
	r.Use(middleware.RealIP)         // Extract real IP
	r.Use(loggingMiddleware.Handler) // Add logger to context with request ID
	r.Use(middleware.Recoverer)      // Panic recovery
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration. The gateway is same-origin for the portal UI in
	// production; the permissive policy keeps local development simple.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", handlers.Health)

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Folders - build lists for the portal widget
		r.Get("/folders/{folder}/builds", handlers.ListFolderBuilds)

		// Builds - single build detail and rebuild trigger
		r.Get("/builds/{identifier}", handlers.GetBuild)
		r.Post("/builds/{identifier}/rebuild", handlers.Rebuild)

		// Jobs - raw job structure and latest build
		r.Get("/jobs/{job}", handlers.GetJob)
		r.Get("/jobs/{job}/latest", handlers.GetLatestBuild)
	})

	return r
}
