package store

import (
	"context"
	"errors"

	"github.com/illegalcall/codeshell/internal/models"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the data provider behind profiles, previews and chat history.
type Store interface {
	ProfileStore
	PreviewStore
	ChatStore
}

type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.Profile, error)
}

type PreviewStore interface {
	GetPreview(ctx context.Context, name string) (*models.AppPreview, error)
	SavePreview(ctx context.Context, p *models.AppPreview) error
}

type ChatStore interface {
	ListConversations(ctx context.Context, userID string) ([]models.ChatConversation, error)
	GetConversation(ctx context.Context, id string) (*models.ChatConversation, error)
	CreateConversation(ctx context.Context, conv *models.ChatConversation) error
	ListMessages(ctx context.Context, conversationID string) ([]models.ChatMessage, error)
	AppendMessage(ctx context.Context, msg *models.ChatMessage) error
}
