package handler

import (
	"bouw-backoffice/internal/service"

	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	service service.NotificationService
}

func NewNotificationHandler(s service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: s}
}

// GET /api/v1/notifications?unread=true
func (h *NotificationHandler) GetNotifications(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext(), actorFrom(c).ID, c.QueryBool("unread", false))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id", "notification")
	if !ok {
		return nil
	}

	if err := h.service.MarkRead(c.UserContext(), id, actorFrom(c).ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}
