package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illegalcall/codeshell/internal/models"
)

func setupMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewPostgresStore(sqlx.NewDb(mockDB, "sqlmock")), mock
}

func TestPostgresStore_GetPreview(t *testing.T) {
	s, mock := setupMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + previewColumns + " FROM app_previews WHERE name = $1")).
		WithArgs("todo-app").
		WillReturnRows(sqlmock.NewRows([]string{"name", "html_content", "files", "user_id", "created_at", "updated_at"}).
			AddRow("todo-app", "<h1>Todo</h1>", []byte(`{"index.html":"<h1>Todo</h1>","app.js":"run()"}`), "user-1", now, now))

	p, err := s.GetPreview(context.Background(), "todo-app")
	require.NoError(t, err)
	assert.Equal(t, "<h1>Todo</h1>", p.HTMLContent)
	assert.Equal(t, "run()", p.Files["app.js"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetPreviewNotFound(t *testing.T) {
	s, mock := setupMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM app_previews WHERE name = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetPreview(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SavePreview(t *testing.T) {
	s, mock := setupMockStore(t)
	now := time.Now()
	p := &models.AppPreview{Name: "todo-app", HTMLContent: "<p>x</p>", Files: models.FileMap{"index.html": "<p>x</p>"}, UserID: "user-1"}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO app_previews (name, html_content, files, user_id)")).
		WithArgs("todo-app", "<p>x</p>", sqlmock.AnyArg(), "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, s.SavePreview(context.Background(), p))
	assert.Equal(t, now, p.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateProfile(t *testing.T) {
	s, mock := setupMockStore(t)
	now := time.Now()
	name := "Ada"
	bio := "Engines"

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE profiles SET display_name = $1, bio = $2, updated_at = now() WHERE id = $3 RETURNING " + profileColumns)).
		WithArgs("Ada", "Engines", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_name", "username", "bio", "avatar_url", "created_at", "updated_at"}).
			AddRow("user-1", "Ada", nil, "Engines", nil, now, now))

	p, err := s.UpdateProfile(context.Background(), "user-1", models.ProfileUpdate{DisplayName: &name, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Ada", *p.DisplayName)
	assert.Nil(t, p.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AppendMessage(t *testing.T) {
	s, mock := setupMockStore(t)
	now := time.Now()
	msg := &models.ChatMessage{ConversationID: "conv-1", UserID: "user-1", Role: models.RoleUser, Content: "hi"}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO chat_messages (conversation_id, user_id, role, content)")).
		WithArgs("conv-1", "user-1", "user", "hi").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("msg-1", now))

	require.NoError(t, s.AppendMessage(context.Background(), msg))
	assert.Equal(t, "msg-1", msg.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListMessages(t *testing.T) {
	s, mock := setupMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM chat_messages WHERE conversation_id = $1 ORDER BY created_at ASC")).
		WithArgs("conv-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "conversation_id", "user_id", "role", "content", "created_at"}).
			AddRow("m1", "conv-1", "user-1", "user", "hi", now).
			AddRow("m2", "conv-1", "user-1", "assistant", "hello", now))

	msgs, err := s.ListMessages(context.Background(), "conv-1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "assistant", msgs[1].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}
