package auth

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	jwtv4 "github.com/golang-jwt/jwt/v4"

	"github.com/illegalcall/codeshell/internal/envelope"
)

const serviceRole = "service_role"

// ServiceRole guards internal routes. Only tokens signed with the project secret
// whose role claim is service_role get through.
func ServiceRole(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: []byte(secret),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Warn("Rejected internal request", "path", c.Path(), "error", err)
			return envelope.Unauthorized(c)
		},
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwtv4.Token)
			if !ok {
				return envelope.Unauthorized(c)
			}
			claims, ok := token.Claims.(jwtv4.MapClaims)
			if !ok || claims["role"] != serviceRole {
				return envelope.Error(c, "Forbidden", fiber.StatusForbidden, "FORBIDDEN")
			}
			return c.Next()
		},
	})
}
