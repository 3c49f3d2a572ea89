package router

import (
	"log"
	"net/http"

	"github.com/crazy-pizza/api/internal/config"
	"github.com/crazy-pizza/api/internal/database"
	"github.com/crazy-pizza/api/internal/enum"
	"github.com/crazy-pizza/api/internal/handler"
	mw "github.com/crazy-pizza/api/internal/middleware"
	"github.com/crazy-pizza/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"},
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
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Get("/auth/me", authHandler.Me)

		// Menu: reads for any authenticated staff, writes for managers
		productHandler := handler.NewProductHandler(queries)
		r.Route("/menu/{category}", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/{id}", productHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleManager))
				r.Post("/", productHandler.Create)
				r.Put("/{id}", productHandler.Update)
				r.Delete("/{id}", productHandler.Delete)
			})
		})

		// Customers
		customerHandler := handler.NewCustomerHandler(queries)
		r.Route("/customers", customerHandler.RegisterRoutes)

		// Orders
		newOrderStore := func(db database.DBTX) service.OrderStore {
			return database.New(db)
		}
		orderService := service.NewOrderService(pool, newOrderStore)
		orderHandler := handler.NewOrderHandler(orderService, queries)
		r.Route("/orders", func(r chi.Router) {
			r.Get("/active", orderHandler.ListActive)
			r.Get("/finished", orderHandler.ListFinished)
			r.Get("/{id}", orderHandler.Get)

			// Waiters take and cancel orders
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleWaiter, enum.UserRoleManager))
				r.Post("/", orderHandler.Take)
				r.Delete("/{id}", orderHandler.Cancel)
			})

			// Chefs mark orders prepared
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleChef, enum.UserRoleManager))
				r.Post("/{id}/finish", orderHandler.Finish)
			})
		})

		// Reports (manager only)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleManager))
			reportsHandler := handler.NewReportsHandler(queries)
			r.Route("/reports", reportsHandler.RegisterRoutes)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
