package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	jwtv4 "github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceRole(t *testing.T) {
	app := fiber.New()
	app.Delete("/internal/x", ServiceRole(testSecret), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	sign := func(role string) string {
		tok, err := jwtv4.NewWithClaims(jwtv4.SigningMethodHS256, jwtv4.MapClaims{"role": role}).
			SignedString([]byte(testSecret))
		require.NoError(t, err)
		return tok
	}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", fiber.StatusUnauthorized},
		{"authenticated user", "Bearer " + sign("authenticated"), fiber.StatusForbidden},
		{"service role", "Bearer " + sign("service_role"), fiber.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("DELETE", "/internal/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
