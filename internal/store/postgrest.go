package store

import (
	"context"
	"fmt"

	"github.com/supabase-community/postgrest-go"

	"github.com/illegalcall/codeshell/internal/models"
)

// PostgrestStore reads and writes through the Supabase REST API. It is used when the
// server has no direct database access.
type PostgrestStore struct {
	client *postgrest.Client
}

func NewPostgrestStore(client *postgrest.Client) *PostgrestStore {
	return &PostgrestStore{client: client}
}

func (s *PostgrestStore) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var rows []models.Profile
	if err := s.selectEq(ctx, "profiles", profileColumns, "id", userID, &rows); err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func (s *PostgrestStore) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.Profile, error) {
	if upd.Empty() {
		return s.GetProfile(ctx, userID)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rows []models.Profile
	_, err := s.client.From("profiles").
		Update(upd, "representation", "").
		Eq("id", userID).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func (s *PostgrestStore) GetPreview(ctx context.Context, name string) (*models.AppPreview, error) {
	var rows []models.AppPreview
	if err := s.selectEq(ctx, "app_previews", previewColumns, "name", name, &rows); err != nil {
		return nil, fmt.Errorf("failed to fetch preview: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func (s *PostgrestStore) SavePreview(ctx context.Context, p *models.AppPreview) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row := map[string]interface{}{
		"name":         p.Name,
		"html_content": p.HTMLContent,
		"files":        p.Files,
		"user_id":      p.UserID,
	}
	var rows []models.AppPreview
	_, err := s.client.From("app_previews").
		Insert(row, true, "name", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		return fmt.Errorf("failed to save preview: %w", err)
	}
	if len(rows) > 0 {
		p.CreatedAt = rows[0].CreatedAt
		p.UpdatedAt = rows[0].UpdatedAt
	}
	return nil
}

func (s *PostgrestStore) ListConversations(ctx context.Context, userID string) ([]models.ChatConversation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	convs := []models.ChatConversation{}
	_, err := s.client.From("chat_conversations").
		Select(conversationColumns, "", false).
		Eq("user_id", userID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&convs)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

func (s *PostgrestStore) GetConversation(ctx context.Context, id string) (*models.ChatConversation, error) {
	var rows []models.ChatConversation
	if err := s.selectEq(ctx, "chat_conversations", conversationColumns, "id", id, &rows); err != nil {
		return nil, fmt.Errorf("failed to fetch conversation: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func (s *PostgrestStore) CreateConversation(ctx context.Context, conv *models.ChatConversation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var rows []models.ChatConversation
	_, err := s.client.From("chat_conversations").
		Insert(map[string]interface{}{"user_id": conv.UserID, "title": conv.Title}, false, "", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	if len(rows) > 0 {
		conv.ID = rows[0].ID
		conv.CreatedAt = rows[0].CreatedAt
	}
	return nil
}

func (s *PostgrestStore) ListMessages(ctx context.Context, conversationID string) ([]models.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	msgs := []models.ChatMessage{}
	_, err := s.client.From("chat_messages").
		Select(messageColumns, "", false).
		Eq("conversation_id", conversationID).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&msgs)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

func (s *PostgrestStore) AppendMessage(ctx context.Context, msg *models.ChatMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row := map[string]interface{}{
		"conversation_id": msg.ConversationID,
		"user_id":         msg.UserID,
		"role":            msg.Role,
		"content":         msg.Content,
	}
	var rows []models.ChatMessage
	_, err := s.client.From("chat_messages").
		Insert(row, false, "", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	if len(rows) > 0 {
		msg.ID = rows[0].ID
		msg.CreatedAt = rows[0].CreatedAt
	}
	return nil
}

func (s *PostgrestStore) selectEq(ctx context.Context, table, columns, col, val string, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.client.From(table).
		Select(columns, "", false).
		Eq(col, val).
		ExecuteTo(out)
	return err
}
