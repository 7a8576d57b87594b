package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lyralabs/lyra-backend/internal/handlers"
	"github.com/lyralabs/lyra-backend/internal/middleware"
	"github.com/lyralabs/lyra-backend/internal/services"
	"github.com/lyralabs/lyra-backend/internal/storage"
)

// SetupRoutes configures all API routes.
func SetupRoutes(
	app *fiber.App,
	dispatcher *services.Dispatcher,
	sessions *services.SessionManager,
	catalog *storage.Catalog,
	orders *storage.FileOrderLog,
	agentToken string,
) {
	dispatchHandler := handlers.NewDispatchHandler(dispatcher, sessions)
	catalogHandler := handlers.NewCatalogHandler(catalog)
	orderHandler := handlers.NewOrderHandler(orders)
	healthHandler := handlers.NewHealthHandler(catalog, orders, sessions)

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "Lyra Shop Backend",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"health":   "/health",
				"dispatch": "/api/v1/dispatch",
				"products": "/api/v1/products",
				"orders":   "/api/v1/orders",
			},
		})
	})

	app.Get("/health", healthHandler.Health)

	// Everything under /api/v1 is for the dialogue layer and shares the
	// agent token check.
	api := app.Group("/api/v1", middleware.RequireAgentToken(agentToken))

	// Function-call boundary
	api.Post("/dispatch", dispatchHandler.Dispatch)

	// Conversation lifecycle
	api.Get("/sessions/:id/cart", dispatchHandler.GetCart)
	api.Delete("/sessions/:id", dispatchHandler.EndSession)

	// Read-only lookups
	api.Get("/products", catalogHandler.Search)
	api.Get("/products/:id", catalogHandler.GetProduct)
	api.Get("/orders/last", orderHandler.LastOrder)
	api.Get("/orders/:id", orderHandler.GetOrder)
}
