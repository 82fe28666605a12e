// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"ledgerpay/internal/handlers"
	"ledgerpay/internal/middleware"
	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"
	"ledgerpay/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Dependencies carries everything the routes need.
type Dependencies struct {
	WalletService wallet.Service
	Users         repositories.UserRepository
	Health        *handlers.HealthHandler
	JWTSecret     string
	// Gatherer backs /metrics; nil leaves the route out.
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, deps Dependencies) {
	if deps.Health != nil {
		app.Get("/health", deps.Health.HealthCheck)
		app.Get("/health/cache", deps.Health.CacheStats)
	}
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	authMiddleware := middleware.NewAuthMiddleware(deps.Users, deps.JWTSecret, deps.Logger)
	api := app.Group("/api", authMiddleware.Handler)

	setupWalletRoutes(api, handlers.NewWalletHandler(deps.WalletService))
	setupTransactionRoutes(api, handlers.NewTransactionHandler(deps.WalletService))
}

func setupWalletRoutes(router fiber.Router, h *handlers.WalletHandler) {
	wallet := router.Group("/wallet")
	wallet.Get("/", middleware.HasPermission(models.PermissionWalletRead), h.GetWallet)
	wallet.Post("/fund", middleware.HasPermission(models.PermissionWalletWrite), h.Fund)
	wallet.Post("/withdraw", middleware.HasPermission(models.PermissionWalletWrite), h.Withdraw)
	wallet.Post("/transfer", middleware.HasPermission(models.PermissionWalletWrite), h.Transfer)
}

func setupTransactionRoutes(router fiber.Router, h *handlers.TransactionHandler) {
	transactions := router.Group("/transactions", middleware.HasPermission(models.PermissionTransactionRead))
	transactions.Get("/", h.List)
	transactions.Get("/:reference", h.GetByReference)
}
