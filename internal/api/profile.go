package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/illegalcall/codeshell/internal/apperr"
	"github.com/illegalcall/codeshell/internal/envelope"
	"github.com/illegalcall/codeshell/internal/models"
)

func (s *Server) handleGetProfile(c *fiber.Ctx, user *models.User) error {
	p, err := s.deps.Profiles.Get(c.UserContext(), user.ID)
	if err != nil {
		return s.fail(c, err)
	}
	return envelope.JSON(c, p)
}

func (s *Server) handleUpdateProfile(c *fiber.Ctx, user *models.User) error {
	var upd models.ProfileUpdate
	if err := c.BodyParser(&upd); err != nil {
		return s.fail(c, apperr.Validation("Invalid request body"))
	}
	p, err := s.deps.Profiles.Update(c.UserContext(), user.ID, upd)
	if err != nil {
		return s.fail(c, err)
	}
	return envelope.JSON(c, p)
}
