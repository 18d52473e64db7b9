package router

import (
	"net/http"

	"goingmarry-api/internal/handler"
	"goingmarry-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	HealthHandler  *handler.HealthHandler
	ProductHandler *handler.ProductHandler
	AuthHandler    *handler.AuthHandler
	AdminHandler   *handler.AdminHandler
	AIHandler      *handler.AIHandler
	AuthMiddleware func(http.Handler) http.Handler
	MaxBodyBytes   int64
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	if cfg.MaxBodyBytes > 0 {
		r.Use(bodyLimit(cfg.MaxBodyBytes))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		// PUBLIC routes (no auth required)
		r.Get("/health", cfg.HealthHandler.Health)
		r.Get("/status", cfg.HealthHandler.Status)

		r.Get("/products", cfg.ProductHandler.List)
		r.Get("/products/{id}", cfg.ProductHandler.Get)

		r.Post("/auth/register", cfg.AuthHandler.Register)
		r.Post("/auth/login", cfg.AuthHandler.Login)

		// AUTHENTICATED routes
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthMiddleware)

			r.Post("/products", cfg.ProductHandler.Create)
			r.Put("/products/{id}", cfg.ProductHandler.Update)
			r.Patch("/products/{id}", cfg.ProductHandler.Patch)
			r.Delete("/products/{id}", cfg.ProductHandler.Delete)
			r.Delete("/products/{id}/image", cfg.ProductHandler.DeleteImage)

			r.Patch("/auth/profile", cfg.AuthHandler.UpdateProfile)
			r.Delete("/auth/profile", cfg.AuthHandler.DeleteAccount)
			r.Patch("/auth/change-password", cfg.AuthHandler.ChangePassword)

			r.Post("/ai/analyze", cfg.AIHandler.Analyze)

			// ADMIN routes
			r.Route("/admin/sellers", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Get("/", cfg.AdminHandler.ListSellers)
				r.Get("/{id}", cfg.AdminHandler.GetSeller)
				r.Patch("/{id}", cfg.AdminHandler.UpdateSeller)
				r.Delete("/{id}", cfg.AdminHandler.DeleteSeller)
				r.Get("/{id}/products", cfg.AdminHandler.ListSellerProducts)
				r.Get("/{id}/products/{productId}", cfg.AdminHandler.GetSellerProduct)
			})
		})
	})

	return r
}

// bodyLimit caps request body size; large base64 image payloads are expected
// on create/update and analyze, anything past the cap is rejected by reads.
func bodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
