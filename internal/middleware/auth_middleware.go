package middleware

import (
	"strings"

	"bouw-backoffice/internal/repository"
	"bouw-backoffice/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// bearerToken extracts the token from "Authorization: Bearer <token>". The
// WebSocket endpoint cannot set headers from a browser, so ?token= is accepted
// there as well.
func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		if t := c.Query("token"); t != "" {
			return t, true
		}
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

// RequireAuth is middleware that validates JWT token and sets user info in context
func RequireAuth(userRepo repository.UserRepository, tokens *jwt.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"error": "Missing or malformed authorization token. Use: Bearer <token>"})
		}

		// Validate token
		claims, err := tokens.Parse(tokenString)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		// Check strict session against DB
		user, err := userRepo.FindByID(c.UserContext(), claims.UserID)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "User not found"})
		}
		if !user.IsActive {
			return c.Status(401).JSON(fiber.Map{"error": "User account is inactive"})
		}
		if user.TokenVersion != claims.TokenVersion {
			return c.Status(401).JSON(fiber.Map{"error": "Session expired (logged in on another device)"})
		}

		// Set user info in context for downstream handlers
		c.Locals("user_id", claims.UserID.String())
		c.Locals("user_email", claims.Email)
		c.Locals("user_name", claims.Name)
		c.Locals("user_role", claims.RoleCode)
		c.Locals("user_privileges", claims.Privileges)

		return c.Next()
	}
}

// hasAnyPrivilege reports whether the privileges RequireAuth stored
// include one of wanted.
func hasAnyPrivilege(c *fiber.Ctx, wanted ...string) bool {
	granted, _ := c.Locals("user_privileges").([]string)
	for _, g := range granted {
		for _, w := range wanted {
			if g == w {
				return true
			}
		}
	}
	return false
}

// RequirePrivilege rejects callers without the given privilege with 403.
func RequirePrivilege(privilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !hasAnyPrivilege(c, privilege) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: requires '" + privilege + "' privilege",
			})
		}
		return c.Next()
	}
}

// RequireAnyPrivilege passes callers holding at least one of privileges.
func RequireAnyPrivilege(privileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !hasAnyPrivilege(c, privileges...) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: requires one of " + strings.Join(privileges, ", "),
			})
		}
		return c.Next()
	}
}
