package handler

import (
	"bouw-backoffice/internal/model"
	"bouw-backoffice/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	users service.UserService
}

func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type privilegesBody struct {
	Privileges []string `json:"privileges"`
}

// userWritten answers a create or update with the saved user.
func userWritten(c *fiber.Ctx, status int, message string, user *model.User, err error) error {
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(status).JSON(fiber.Map{"message": message, "data": user.ToResponse()})
}

// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	req := new(service.CreateUserRequest)
	if err := c.BodyParser(req); err != nil {
		return invalidJSON(c)
	}
	user, err := h.users.CreateUser(c.UserContext(), req, actorFrom(c))
	return userWritten(c, fiber.StatusCreated, "User created", user, err)
}

// PUT /api/v1/users/:id
//
// Users are deactivated with is_active=false; there is no delete.
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id", "user")
	if !ok {
		return nil
	}
	req := new(service.UpdateUserRequest)
	if err := c.BodyParser(req); err != nil {
		return invalidJSON(c)
	}
	user, err := h.users.UpdateUser(c.UserContext(), id, req, actorFrom(c))
	return userWritten(c, fiber.StatusOK, "User updated", user, err)
}

// PUT /api/v1/users/:id/privileges
func (h *UserHandler) UpdateUserPrivileges(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id", "user")
	if !ok {
		return nil
	}
	var body privilegesBody
	if err := c.BodyParser(&body); err != nil {
		return invalidJSON(c)
	}
	user, err := h.users.UpdateUserPrivileges(c.UserContext(), id, body.Privileges, actorFrom(c))
	return userWritten(c, fiber.StatusOK, "Privileges updated", user, err)
}

func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	list, err := h.users.GetAllUsers(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id", "user")
	if !ok {
		return nil
	}
	user, err := h.users.GetUserByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
