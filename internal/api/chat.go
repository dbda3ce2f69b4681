package api

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/illegalcall/codeshell/internal/apperr"
	"github.com/illegalcall/codeshell/internal/envelope"
	"github.com/illegalcall/codeshell/internal/models"
	"github.com/illegalcall/codeshell/internal/store"
)

const (
	defaultConversationTitle = "New conversation"
	maxTitleLength           = 200
	maxMessageLength         = 32 * 1024
)

func (s *Server) handleListConversations(c *fiber.Ctx, user *models.User) error {
	convs, err := s.deps.Store.ListConversations(c.UserContext(), user.ID)
	if err != nil {
		return s.fail(c, err)
	}
	if convs == nil {
		convs = []models.ChatConversation{}
	}
	return envelope.JSON(c, convs)
}

func (s *Server) handleCreateConversation(c *fiber.Ctx, user *models.User) error {
	var req models.NewConversationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return s.fail(c, apperr.Validation("Invalid request body"))
		}
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = defaultConversationTitle
	}
	if len(title) > maxTitleLength {
		return s.fail(c, apperr.Validation("Title is too long"))
	}

	conv := &models.ChatConversation{UserID: user.ID, Title: title}
	if err := s.deps.Store.CreateConversation(c.UserContext(), conv); err != nil {
		return s.fail(c, err)
	}
	return envelope.JSON(c, conv, fiber.StatusCreated)
}

func (s *Server) handleListMessages(c *fiber.Ctx, user *models.User) error {
	conv, err := s.ownConversation(c.UserContext(), c.Params("id"), user)
	if err != nil {
		return s.fail(c, err)
	}
	msgs, err := s.deps.Store.ListMessages(c.UserContext(), conv.ID)
	if err != nil {
		return s.fail(c, err)
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	return envelope.JSON(c, msgs)
}

func (s *Server) handleAppendMessage(c *fiber.Ctx, user *models.User) error {
	var req models.NewMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return s.fail(c, apperr.Validation("Invalid request body"))
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if !models.ValidRole(req.Role) {
		return s.fail(c, apperr.Validation("Role must be user, assistant or system"))
	}
	if strings.TrimSpace(req.Content) == "" {
		return s.fail(c, apperr.Validation("Message content is required"))
	}
	if len(req.Content) > maxMessageLength {
		return s.fail(c, apperr.Validation("Message is too long"))
	}

	conv, err := s.ownConversation(c.UserContext(), c.Params("id"), user)
	if err != nil {
		return s.fail(c, err)
	}
	msg := &models.ChatMessage{
		ConversationID: conv.ID,
		UserID:         user.ID,
		Role:           req.Role,
		Content:        req.Content,
	}
	if err := s.deps.Store.AppendMessage(c.UserContext(), msg); err != nil {
		return s.fail(c, err)
	}
	return envelope.JSON(c, msg, fiber.StatusCreated)
}

// ownConversation hides conversations of other users behind a not found.
func (s *Server) ownConversation(ctx context.Context, id string, user *models.User) (*models.ChatConversation, error) {
	conv, err := s.deps.Store.GetConversation(ctx, id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && conv.UserID != user.ID) {
		return nil, apperr.NotFound("Conversation not found", err)
	}
	if err != nil {
		return nil, err
	}
	return conv, nil
}
