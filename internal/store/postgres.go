package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/illegalcall/codeshell/internal/models"
)

const (
	profileColumns      = "id, display_name, username, bio, avatar_url, created_at, updated_at"
	previewColumns      = "name, html_content, files, user_id, created_at, updated_at"
	conversationColumns = "id, user_id, title, created_at"
	messageColumns      = "id, conversation_id, user_id, role, content, created_at"
)

// PostgresStore talks to the project database directly.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.GetContext(ctx, &p, "SELECT "+profileColumns+" FROM profiles WHERE id = $1", userID)
	if err != nil {
		return nil, notFound(err, "failed to fetch profile")
	}
	return &p, nil
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.Profile, error) {
	sets := []string{}
	args := []interface{}{}
	add := func(col string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("display_name", upd.DisplayName)
	add("username", upd.Username)
	add("bio", upd.Bio)
	add("avatar_url", upd.AvatarURL)
	if len(sets) == 0 {
		return s.GetProfile(ctx, userID)
	}
	args = append(args, userID)

	query := fmt.Sprintf("UPDATE profiles SET %s, updated_at = now() WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), profileColumns)

	var p models.Profile
	if err := s.db.GetContext(ctx, &p, query, args...); err != nil {
		return nil, notFound(err, "failed to update profile")
	}
	return &p, nil
}

func (s *PostgresStore) GetPreview(ctx context.Context, name string) (*models.AppPreview, error) {
	var p models.AppPreview
	err := s.db.GetContext(ctx, &p, "SELECT "+previewColumns+" FROM app_previews WHERE name = $1", name)
	if err != nil {
		return nil, notFound(err, "failed to fetch preview")
	}
	return &p, nil
}

func (s *PostgresStore) SavePreview(ctx context.Context, p *models.AppPreview) error {
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO app_previews (name, html_content, files, user_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET html_content = EXCLUDED.html_content, files = EXCLUDED.files, updated_at = now()
		RETURNING created_at, updated_at`,
		p.Name, p.HTMLContent, p.Files, p.UserID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save preview: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListConversations(ctx context.Context, userID string) ([]models.ChatConversation, error) {
	convs := []models.ChatConversation{}
	err := s.db.SelectContext(ctx, &convs,
		"SELECT "+conversationColumns+" FROM chat_conversations WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

func (s *PostgresStore) GetConversation(ctx context.Context, id string) (*models.ChatConversation, error) {
	var conv models.ChatConversation
	err := s.db.GetContext(ctx, &conv, "SELECT "+conversationColumns+" FROM chat_conversations WHERE id = $1", id)
	if err != nil {
		return nil, notFound(err, "failed to fetch conversation")
	}
	return &conv, nil
}

func (s *PostgresStore) CreateConversation(ctx context.Context, conv *models.ChatConversation) error {
	err := s.db.QueryRowxContext(ctx,
		"INSERT INTO chat_conversations (user_id, title) VALUES ($1, $2) RETURNING id, created_at",
		conv.UserID, conv.Title,
	).Scan(&conv.ID, &conv.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListMessages(ctx context.Context, conversationID string) ([]models.ChatMessage, error) {
	msgs := []models.ChatMessage{}
	err := s.db.SelectContext(ctx, &msgs,
		"SELECT "+messageColumns+" FROM chat_messages WHERE conversation_id = $1 ORDER BY created_at ASC", conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

func (s *PostgresStore) AppendMessage(ctx context.Context, msg *models.ChatMessage) error {
	err := s.db.QueryRowxContext(ctx,
		"INSERT INTO chat_messages (conversation_id, user_id, role, content) VALUES ($1, $2, $3, $4) RETURNING id, created_at",
		msg.ConversationID, msg.UserID, msg.Role, msg.Content,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

func notFound(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
