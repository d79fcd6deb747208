package handler

import (
	"errors"

	"bouw-backoffice/internal/service"
	"bouw-backoffice/pkg/apperror"
	"bouw-backoffice/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// respondError maps an application error onto a status code and the
// {"error": message} body. Store failures carry the underlying cause.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := err.Error()

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case apperror.KindValidation:
			status, message = fiber.StatusBadRequest, appErr.Message
		case apperror.KindNotFound:
			status, message = fiber.StatusNotFound, appErr.Message
		case apperror.KindForbidden:
			status, message = fiber.StatusForbidden, appErr.Message
		}
	}
	if status == fiber.StatusInternalServerError {
		logger.RecordError(c, err)
	}
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func invalidJSON(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
}

// actorFrom reads the user info RequireAuth stored in the request context.
func actorFrom(c *fiber.Ctx) service.Actor {
	var actor service.Actor
	if id, ok := c.Locals("user_id").(string); ok {
		actor.ID, _ = uuid.Parse(id)
	}
	actor.Name, _ = c.Locals("user_name").(string)
	actor.Email, _ = c.Locals("user_email").(string)
	return actor
}

// paramUUID parses a path parameter, answering 400 itself on failure.
func paramUUID(c *fiber.Ctx, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid " + label + " ID"})
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID parses an optional query parameter. Empty yields nil.
func queryUUID(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.Validationf("invalid %s", name)
	}
	return &id, nil
}
