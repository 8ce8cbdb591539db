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

	"placemap/internal/config"
	"placemap/internal/metrics"
	"placemap/internal/server/handlers"
	"placemap/internal/service/loader"
	"placemap/internal/service/notify"
	"placemap/internal/service/view"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.ServerConfig,
	mapCfg config.MapConfig,
	snapshotLoader *loader.Loader,
	reducer *view.Reducer,
	notifier notify.Notifier,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	mapHandler := handlers.NewMapHandler(snapshotLoader, reducer, mapCfg.WindowPresets, mapCfg.DefaultWindowDays)

	sessionCfg := handlers.DefaultMapSessionConfig()
	sessionCfg.Debounce = mapCfg.DebounceInterval
	sessionCfg.DefaultWindowDays = mapCfg.DefaultWindowDays

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			// Map API
			r.Route("/map", func(r chi.Router) {
				r.Get("/view", mapHandler.GetView)
				r.Get("/categories", mapHandler.GetCategories)
				r.Get("/places", mapHandler.GetPlaces)
			})
		})
	})

	// Prometheus scrape endpoint
	router.Handle("/metrics", metrics.Handler())

	// WebSocket endpoint for interactive map sessions
	router.Get("/ws/map", handlers.MapWebSocketHandler(snapshotLoader, reducer, notifier, sessionCfg))

	// Create HTTP server
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

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
