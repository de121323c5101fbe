package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/superimpress/backend/internal/api/handlers"
	"github.com/superimpress/backend/internal/api/middleware"
	"github.com/superimpress/backend/internal/config"
	"github.com/superimpress/backend/internal/oauth"
	"github.com/superimpress/backend/internal/service"
)

func NewRouter(services *service.Services, stores *OAuthStores, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS(cfg.FrontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, cfg)
	postHandler := handlers.NewPostHandler(services.Post)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			if services.OAuth != nil {
				oauthHandler := handlers.NewOAuthHandler(services.OAuth, services.Auth, stores.States, stores.LoginCodes, cfg)
				r.Get("/oauth/{provider}/login", oauthHandler.Login)
				r.Get("/oauth/{provider}/callback", oauthHandler.Callback)
				r.Post("/oauth/exchange", oauthHandler.Exchange)
			}

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			r.Route("/posts", func(r chi.Router) {
				r.Post("/", postHandler.Create)
				r.Get("/", postHandler.List)
				r.Get("/{id}", postHandler.Get)
				r.Put("/{id}", postHandler.Update)
				r.Delete("/{id}", postHandler.Delete)
			})
		})
	})

	return r
}

// OAuthStores bundles the expiring code stores owned by main and shared with
// the oauth handlers.
type OAuthStores struct {
	States     *oauth.CodeStore
	LoginCodes *oauth.CodeStore
}
