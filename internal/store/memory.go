package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/illegalcall/codeshell/internal/models"
)

// MemoryStore keeps everything in process. It backs local development
// (DATA_PROVIDER=memory) and tests.
type MemoryStore struct {
	mu            sync.RWMutex
	profiles      map[string]models.Profile
	previews      map[string]models.AppPreview
	conversations map[string]models.ChatConversation
	messages      map[string][]models.ChatMessage
	now           func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles:      map[string]models.Profile{},
		previews:      map[string]models.AppPreview{},
		conversations: map[string]models.ChatConversation{},
		messages:      map[string][]models.ChatMessage{},
		now:           time.Now,
	}
}

// PutProfile inserts a profile row, as the signup trigger would.
func (s *MemoryStore) PutProfile(p models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
}

func (s *MemoryStore) GetProfile(_ context.Context, userID string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) UpdateProfile(_ context.Context, userID string, upd models.ProfileUpdate) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.DisplayName != nil {
		p.DisplayName = upd.DisplayName
	}
	if upd.Username != nil {
		p.Username = upd.Username
	}
	if upd.Bio != nil {
		p.Bio = upd.Bio
	}
	if upd.AvatarURL != nil {
		p.AvatarURL = upd.AvatarURL
	}
	p.UpdatedAt = s.now()
	s.profiles[userID] = p
	return &p, nil
}

func (s *MemoryStore) GetPreview(_ context.Context, name string) (*models.AppPreview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.previews[name]
	if !ok {
		return nil, ErrNotFound
	}
	p.Files = p.Files.Clone()
	return &p, nil
}

func (s *MemoryStore) SavePreview(_ context.Context, p *models.AppPreview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if existing, ok := s.previews[p.Name]; ok {
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	stored := *p
	stored.Files = p.Files.Clone()
	s.previews[p.Name] = stored
	return nil
}

func (s *MemoryStore) ListConversations(_ context.Context, userID string) ([]models.ChatConversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.ChatConversation{}
	for _, c := range s.conversations {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) GetConversation(_ context.Context, id string) (*models.ChatConversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) CreateConversation(_ context.Context, conv *models.ChatConversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv.ID = uuid.NewString()
	conv.CreatedAt = s.now()
	s.conversations[conv.ID] = *conv
	return nil
}

func (s *MemoryStore) ListMessages(_ context.Context, conversationID string) ([]models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ChatMessage, len(s.messages[conversationID]))
	copy(out, s.messages[conversationID])
	return out, nil
}

func (s *MemoryStore) AppendMessage(_ context.Context, msg *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[msg.ConversationID]; !ok {
		return ErrNotFound
	}
	msg.ID = uuid.NewString()
	msg.CreatedAt = s.now()
	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], *msg)
	return nil
}
