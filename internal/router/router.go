package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kf-pos/dashboard/internal/config"
	"github.com/kf-pos/dashboard/internal/handler"
	mw "github.com/kf-pos/dashboard/internal/middleware"
	"github.com/kf-pos/dashboard/internal/ws"
)

// Deps are the collaborators behind the local dashboard API.
type Deps struct {
	Sessions  handler.SessionService
	Validator mw.SessionValidator
	Board     interface {
		handler.BoardService
		handler.ViewLifecycle
	}
	Dispatcher handler.ActionDispatcher
	Catalog    handler.CatalogSource
	Hub        *ws.Hub
	Metrics    http.Handler
}

// New creates a Chi router with all dashboard routes wired up. Every
// protected request re-validates the persisted session.
func New(cfg *config.Config, d Deps) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	authHandler := handler.NewAuthHandler(d.Sessions, d.Board, d.Dispatcher)
	dashboardHandler := handler.NewDashboardHandler(d.Board, cfg.Location())
	orderHandler := handler.NewOrderHandler(d.Dispatcher)
	catalogHandler := handler.NewCatalogHandler(d.Catalog)

	r.Route("/api", func(r chi.Router) {
		// Auth routes (public)
		authHandler.RegisterRoutes(r)

		// Protected routes (require a valid session)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireSession(d.Validator))

			authHandler.RegisterProtectedRoutes(r)
			dashboardHandler.RegisterRoutes(r)
			orderHandler.RegisterRoutes(r)
			catalogHandler.RegisterRoutes(r)
		})
	})

	// WebSocket route
	r.With(mw.RequireSession(d.Validator)).Get("/ws/dashboard", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(d.Hub, w, r)
	})

	return r
}
