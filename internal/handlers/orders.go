package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/lyralabs/lyra-backend/internal/models"
	"github.com/lyralabs/lyra-backend/internal/storage"
)

// OrderHandler exposes read-only order history lookups. Orders are only
// ever created through dispatch; there is no write endpoint here.
type OrderHandler struct {
	orders storage.OrderLog
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders storage.OrderLog) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// LastOrder returns the most recent committed order, or an explicit
// no-orders-yet result for an empty store.
func (h *OrderHandler) LastOrder(c *fiber.Ctx) error {
	order, err := h.orders.Last()
	if err != nil {
		return writeError(c, err)
	}
	if order == nil {
		return c.JSON(fiber.Map{"result": models.LastOrderResult{HasOrders: false}})
	}
	return c.JSON(fiber.Map{"result": models.LastOrderResult{HasOrders: true, Order: order}})
}

// GetOrder retrieves one committed order by id.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return writeError(c, models.ErrInvalidArgument("id", "expected a numeric order id"))
	}

	order, err := h.orders.Get(id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"result": order})
}
