// middleware/user_context.go
package middleware

import (
	"log"
	"strings"

	"calmquest-backend/services"

	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware extracts user identity and roles set by the Gateway.
// When the Gateway headers are absent but a user bearer token is present
// (direct mobile clients), the token is validated against the auth service
// instead. Mutating routes downstream always require a resolved user id —
// there is no guest fallback.
func UserContextMiddleware(authClient *services.AuthServiceClient) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		rolesStr := c.Get("X-User-Roles")

		if userID == "" && authClient != nil {
			token := strings.TrimPrefix(c.Get("X-Session-Token"), "Bearer ")
			if token != "" {
				validated, err := authClient.ValidateToken(token, c.Get("X-Device-ID"))
				if err != nil {
					log.Printf("❌ [USER_CTX] Session token validation failed on %s: %v", c.Path(), err)
					return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
						"error": "session token rejected by auth service",
					})
				}
				userID = validated.UserID
				rolesStr = strings.Join(validated.Roles, ",")
			}
		}

		if userID == "" {
			log.Printf("❌ [USER_CTX] No user identity on secured route: %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID — request must come through gateway with auth context",
			})
		}

		var roles []string
		if rolesStr != "" {
			for _, r := range strings.Split(rolesStr, ",") {
				r = strings.TrimSpace(r)
				if r != "" {
					roles = append(roles, r)
				}
			}
		}

		// Attach to ctx for handlers
		c.Locals("user_id", userID)
		c.Locals("user_roles", roles)

		return c.Next()
	}
}
