package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kislikjeka/coinwallet/internal/transport/httpapi/handler"
	"github.com/kislikjeka/coinwallet/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/coinwallet/pkg/logger"
)

// Config holds router configuration
type Config struct {
	Logger            *logger.Logger
	AllowedOrigins    []string
	RateLimit         func(http.Handler) http.Handler
	AuthHandler       *handler.AuthHandler
	WalletHandler     *handler.WalletHandler
	SimulationHandler *handler.SimulationHandler
	PriceHandler      *handler.PriceHandler
	HealthHandler     *handler.HealthHandler
	JWTMiddleware     func(http.Handler) http.Handler
}

// NewRouter creates a new HTTP router
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(chimiddleware.Compress(5))
	if cfg.RateLimit != nil {
		r.Use(cfg.RateLimit)
	}

	r.Get("/health", handler.GetHealth)
	r.Get("/health/live", handler.GetLiveness)
	if cfg.HealthHandler != nil {
		r.Get("/health/ready", cfg.HealthHandler.GetReadiness)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.AuthHandler != nil {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
		}

		if cfg.JWTMiddleware == nil {
			return
		}

		r.Group(func(r chi.Router) {
			r.Use(cfg.JWTMiddleware)

			if cfg.WalletHandler != nil {
				r.Get("/wallet/info", cfg.WalletHandler.GetInfo)
				r.Post("/wallet/asset", cfg.WalletHandler.AddAsset)
				r.Put("/wallet/asset", cfg.WalletHandler.UpdateAsset)
			}

			if cfg.SimulationHandler != nil {
				r.Post("/simulation", cfg.SimulationHandler.Simulate)
			}

			if cfg.PriceHandler != nil {
				r.Get("/prices/{symbol}", cfg.PriceHandler.GetCurrent)
				r.Get("/prices/{symbol}/history", cfg.PriceHandler.GetHistory)
			}
		})
	})

	return r
}
