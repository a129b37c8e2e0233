/**
 * @description
 * This file sets up the HTTP router for the banking service using the go-chi/chi router.
 * It defines the API routes, applies middleware for logging, CORS, authentication
 * and rate limiting, and maps the routes to their handlers.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: The routing library.
 * - github.com/go-chi/cors: CORS handling.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/transfa/banking-service/internal/app"
	"github.com/transfa/banking-service/pkg/middleware"
	"go.uber.org/zap"
)

// rateLimitScope is the limiter key namespace for the authenticated API.
const rateLimitScope = "api"

// RouterConfig carries everything the router needs.
type RouterConfig struct {
	Clients            *app.ClientService
	Accounts           *app.AccountService
	Transactions       *app.TransactionService
	Auth               *AuthHandler
	JWTSecret          string
	AllowedOrigins     []string
	Limiter            middleware.RateLimiter
	RateLimitPerMinute int
	Logger             *zap.Logger
}

// NewRouter creates a new Chi router and registers the banking routes.
func NewRouter(cfg RouterConfig) *chi.Mux {
	logger := cfg.Logger.Named("http")

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("healthy"))
	})

	clientHandler := NewClientHandler(cfg.Clients, logger)
	accountHandler := NewAccountHandler(cfg.Accounts, cfg.Transactions, logger)
	transactionHandler := NewTransactionHandler(cfg.Transactions, logger)

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Auth != nil {
			r.Post("/auth/login", cfg.Auth.Login)
		}

		// Group routes that require authentication
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.JWTSecret))
			r.Use(middleware.RateLimit(cfg.Limiter, rateLimitScope, cfg.RateLimitPerMinute, time.Minute, logger))

			r.Route("/clientes", func(r chi.Router) {
				r.Post("/", clientHandler.CreateClient)
				r.Get("/{id}", clientHandler.GetClient)
				r.Put("/{id}", clientHandler.UpdateClient)
				r.Delete("/{id}", clientHandler.DeleteClient)
			})

			r.Route("/productos", func(r chi.Router) {
				r.Post("/", accountHandler.CreateAccount)
				r.Post("/depositar", accountHandler.Deposit)
				r.Get("/{numero}", accountHandler.GetAccount)
				r.Patch("/{numero}/estado", accountHandler.ChangeStatus)
				r.Delete("/{numero}/cancelar", accountHandler.CancelAccount)
			})

			r.Route("/transacciones", func(r chi.Router) {
				r.Post("/", transactionHandler.CreateTransaction)
				r.Get("/historial/{numero}", transactionHandler.History)
			})
		})
	})

	return r
}
