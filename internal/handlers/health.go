package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lyralabs/lyra-backend/internal/services"
	"github.com/lyralabs/lyra-backend/internal/storage"
)

// HealthHandler reports liveness plus basic store statistics for
// monitoring.
type HealthHandler struct {
	catalog  *storage.Catalog
	orders   *storage.FileOrderLog
	sessions *services.SessionManager
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(catalog *storage.Catalog, orders *storage.FileOrderLog, sessions *services.SessionManager) *HealthHandler {
	return &HealthHandler{
		catalog:  catalog,
		orders:   orders,
		sessions: sessions,
	}
}

// Health handles the health check endpoint.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
		"stores": fiber.Map{
			"catalog_products": h.catalog.Len(),
			"orders":           h.orders.Count(),
			"active_sessions":  h.sessions.ActiveSessions(),
		},
	})
}
