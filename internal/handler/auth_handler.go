package handler

import (
	"errors"
	"strings"

	"bouw-backoffice/internal/service"
	"bouw-backoffice/pkg/jwt"
	"bouw-backoffice/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type validateTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// parseAuthBody decodes and validates body, answering 400 itself on failure.
func parseAuthBody(c *fiber.Ctx, body interface{}) bool {
	if err := c.BodyParser(body); err != nil {
		_ = invalidJSON(c)
		return false
	}
	if errs := validator.ValidateStruct(body); len(errs) > 0 {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validator.FirstError(errs)})
		return false
	}
	return true
}

// authFailure answers credential and session problems with 401 and hands
// everything else to respondError.
func authFailure(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUserInactive),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrWrongPassword),
		errors.Is(err, service.ErrSessionReplaced),
		errors.Is(err, service.ErrSessionTimeout),
		errors.Is(err, jwt.ErrInvalidToken),
		errors.Is(err, jwt.ErrMissingToken):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}
	return respondError(c, err)
}

// Login issues a token and ends any other session of the user.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if !parseAuthBody(c, &req) {
		return nil
	}

	response, err := h.authService.Login(c.UserContext(), strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		return authFailure(c, err)
	}
	return c.JSON(response)
}

// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if !parseAuthBody(c, &req) {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.authService.ResetPassword(c.UserContext(), email, req.OldPassword, req.NewPassword); err != nil {
		return authFailure(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password updated, please log in again"})
}

// Heartbeat keeps the session alive and marks the user online.
// POST /api/v1/auth/heartbeat
func (h *AuthHandler) Heartbeat(c *fiber.Ctx) error {
	id := actorFrom(c).ID
	if id == uuid.Nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := h.authService.Heartbeat(c.UserContext(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update heartbeat"})
	}
	return c.JSON(fiber.Map{"status": "online"})
}

// POST /api/v1/auth/validate-token
func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	var req validateTokenRequest
	if !parseAuthBody(c, &req) {
		return nil
	}

	response, err := h.authService.ValidateToken(c.UserContext(), req.Token)
	if err != nil {
		return authFailure(c, err)
	}
	return c.JSON(response)
}
