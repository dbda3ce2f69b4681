package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/illegalcall/codeshell/internal/apperr"
	"github.com/illegalcall/codeshell/internal/envelope"
	"github.com/illegalcall/codeshell/internal/metrics"
	"github.com/illegalcall/codeshell/internal/models"
)

// ErrUnauthenticated is returned when a request carries no credentials.
var ErrUnauthenticated = apperr.Unauthenticated("Unauthorized", errors.New("missing authorization header"))

// Provider resolves an access token to the user it was issued for.
type Provider interface {
	VerifyToken(ctx context.Context, token string) (*models.User, error)
}

// Gate extracts bearer tokens from requests and verifies them with a Provider.
type Gate struct {
	provider Provider
}

func NewGate(provider Provider) *Gate {
	return &Gate{provider: provider}
}

// Authenticate resolves the Authorization header value to a user. A missing header
// yields ErrUnauthenticated; a rejected token yields an unauthenticated error that
// carries the provider's message.
func (g *Gate) Authenticate(ctx context.Context, header string) (*models.User, error) {
	if header == "" {
		metrics.AuthFailures.WithLabelValues("missing").Inc()
		return nil, ErrUnauthenticated
	}

	token := strings.TrimPrefix(header, "Bearer ")
	user, err := g.provider.VerifyToken(ctx, token)
	if err != nil {
		metrics.AuthFailures.WithLabelValues("rejected").Inc()
		return nil, apperr.Unauthenticated(err.Error(), err)
	}
	if user == nil || user.ID == "" {
		metrics.AuthFailures.WithLabelValues("rejected").Inc()
		return nil, apperr.Unauthenticated("token did not resolve to a user", nil)
	}
	return user, nil
}

// UserHandler is a business handler that runs with an authenticated user.
type UserHandler func(c *fiber.Ctx, user *models.User) error

// RequireUser wraps h so that it only runs for authenticated requests. Anything the
// gate rejects is answered with 401 {"success":false,"error":"Unauthorized"}.
func RequireUser(g *Gate, h UserHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := g.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			slog.Warn("Rejected unauthenticated request",
				"method", c.Method(),
				"path", c.Path(),
				"ip", c.IP(),
				"error", err,
			)
			return envelope.Unauthorized(c)
		}
		return h(c, user)
	}
}
