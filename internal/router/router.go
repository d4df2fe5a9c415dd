package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lumina-pos/api/internal/archive"
	"github.com/lumina-pos/api/internal/auth"
	"github.com/lumina-pos/api/internal/config"
	"github.com/lumina-pos/api/internal/engine"
	"github.com/lumina-pos/api/internal/handler"
	mw "github.com/lumina-pos/api/internal/middleware"
	"github.com/lumina-pos/api/internal/ws"
)

// New creates a Chi router with all application routes wired up. The
// archiver may be nil when no archive database is configured.
func New(cfg *config.Config, eng *engine.Engine, users *auth.Directory, hub *ws.Hub, archiver *archive.Archiver) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173", // counter UI dev server
			"http://localhost:3000", // kitchen display dev server
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(users, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/{topic}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Orders
		orderHandler := handler.NewOrderHandler(eng, hub, archiver)
		r.Route("/orders", orderHandler.RegisterRoutes)

		// Replacement workflow and kitchen tickets
		replacementHandler := handler.NewReplacementHandler(eng, hub)
		replacementHandler.RegisterRoutes(r)

		// Cash adjustments
		cashHandler := handler.NewCashHandler(eng)
		r.Route("/cash", cashHandler.RegisterRoutes)

		// Ingredients and recipes. Reads are open to any staff role;
		// mutations are gated by the engine's role policy.
		inventoryHandler := handler.NewInventoryHandler(eng)
		inventoryHandler.RegisterRoutes(r)
	})

	return r
}
