package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lyralabs/lyra-backend/internal/models"
	"github.com/lyralabs/lyra-backend/internal/services"
)

// DispatchHandler is the function-call boundary consumed by the dialogue
// layer: one endpoint taking a named operation plus its argument mapping.
type DispatchHandler struct {
	dispatcher *services.Dispatcher
	sessions   *services.SessionManager
}

// NewDispatchHandler creates a new dispatch handler.
func NewDispatchHandler(dispatcher *services.Dispatcher, sessions *services.SessionManager) *DispatchHandler {
	return &DispatchHandler{
		dispatcher: dispatcher,
		sessions:   sessions,
	}
}

type dispatchRequest struct {
	SessionID string         `json:"session_id"`
	Operation string         `json:"operation"`
	Arguments map[string]any `json:"arguments"`
}

// Dispatch executes one operation for a conversation.
func (h *DispatchHandler) Dispatch(c *fiber.Ctx) error {
	var req dispatchRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, models.ErrInvalidArgument("body", "invalid request body"))
	}

	if req.SessionID == "" {
		return writeError(c, models.ErrMissingArgument("session_id"))
	}
	if req.Operation == "" {
		return writeError(c, models.ErrMissingArgument("operation"))
	}

	session := h.sessions.GetOrCreate(req.SessionID)
	result, err := h.dispatcher.Dispatch(session, req.Operation, req.Arguments)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(fiber.Map{"result": result})
}

// GetCart returns the current cart snapshot for a conversation. It is a
// pure read: an unknown id is reported, never turned into a new session.
func (h *DispatchHandler) GetCart(c *fiber.Ctx) error {
	session, ok := h.sessions.Get(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "session_not_found",
				"message": "no active session with that id",
			},
		})
	}
	return c.JSON(fiber.Map{"result": h.sessions.Snapshot(session)})
}

// EndSession discards a conversation's state when the call ends. Orders the
// conversation already committed remain in the log.
func (h *DispatchHandler) EndSession(c *fiber.Ctx) error {
	id := c.Params("id")
	if !h.sessions.End(id) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "session_not_found",
				"message": "no active session with that id",
			},
		})
	}
	return c.JSON(fiber.Map{"message": "session ended"})
}
