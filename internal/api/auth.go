package api

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/illegalcall/codeshell/internal/apperr"
	"github.com/illegalcall/codeshell/internal/envelope"
	"github.com/illegalcall/codeshell/internal/models"
	"github.com/illegalcall/codeshell/internal/workspace"
)

func (s *Server) handleSignUp(c *fiber.Ctx) error {
	var form workspace.AuthForm
	if err := c.BodyParser(&form); err != nil {
		return s.fail(c, apperr.Validation("Invalid request body"))
	}
	if err := form.Validate(workspace.ModeSignUp); err != nil {
		return s.fail(c, err)
	}

	slog.Info("Signup attempt", "email", form.Email)
	session, err := s.deps.Accounts.SignUp(c.UserContext(), form.Email, form.Password, form.Username)
	if err != nil {
		slog.Error("Signup error", "error", err)
		return s.fail(c, apperr.Validation(s.detail("Signup failed", err)))
	}

	slog.Info("User signed up", "user_id", session.User.ID)
	return envelope.JSON(c, session, fiber.StatusCreated)
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var form workspace.AuthForm
	if err := c.BodyParser(&form); err != nil {
		return s.fail(c, apperr.Validation("Invalid request body"))
	}
	if err := form.Validate(workspace.ModeSignIn); err != nil {
		return s.fail(c, err)
	}

	slog.Info("Authentication attempt", "email", form.Email)
	session, err := s.deps.Accounts.SignIn(c.UserContext(), form.Email, form.Password)
	if err != nil {
		slog.Error("Authentication error", "error", err)
		return s.fail(c, apperr.Unauthenticated("Invalid credentials", err))
	}

	slog.Info("User successfully authenticated", "user_id", session.User.ID)
	return envelope.JSON(c, session)
}

func (s *Server) handleLogout(c *fiber.Ctx, user *models.User) error {
	token := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if err := s.deps.Accounts.SignOut(c.UserContext(), token); err != nil {
		slog.Error("Logout error", "user_id", user.ID, "error", err)
		return s.fail(c, err)
	}
	// The shell state belongs to the session.
	if err := s.deps.Workspaces.Clear(c.UserContext(), user.ID); err != nil {
		slog.Error("Failed to clear workspace on logout", "user_id", user.ID, "error", err)
	}
	return envelope.JSON(c, fiber.Map{"signed_out": true})
}

// detail adds the error text to msg outside production.
func (s *Server) detail(msg string, err error) string {
	if s.cfg.IsProduction() {
		return msg
	}
	return msg + ": " + err.Error()
}
