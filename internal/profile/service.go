package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/illegalcall/codeshell/internal/apperr"
	"github.com/illegalcall/codeshell/internal/models"
	"github.com/illegalcall/codeshell/internal/store"
	"github.com/illegalcall/codeshell/internal/workspace"
)

const (
	maxDisplayNameLength = 80
	maxBioLength         = 500
)

// Service reads and edits profiles. Profiles are created by a database trigger
// when the user signs up, so a read right after signup can race the trigger.
type Service struct {
	store      store.ProfileStore
	retryDelay time.Duration
}

func NewService(s store.ProfileStore, retryDelay time.Duration) *Service {
	return &Service{store: s, retryDelay: retryDelay}
}

// Get returns the user's profile. A missing profile is fetched once more after
// the retry delay; the wait ends early if ctx is cancelled.
func (s *Service) Get(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	slog.Info("Profile not found yet, retrying", "user_id", userID, "delay", s.retryDelay)
	timer := time.NewTimer(s.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	p, err = s.store.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Profile not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile on retry: %w", err)
	}
	return p, nil
}

// Update validates and applies upd to the user's own profile.
func (s *Service) Update(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.Profile, error) {
	if upd.Empty() {
		return nil, apperr.Validation("No profile fields to update")
	}
	if upd.Username != nil {
		name := strings.TrimSpace(*upd.Username)
		if err := workspace.ValidateUsername(name); err != nil {
			return nil, err
		}
		upd.Username = &name
	}
	if upd.DisplayName != nil && len(*upd.DisplayName) > maxDisplayNameLength {
		return nil, apperr.Validation("Display name is too long")
	}
	if upd.Bio != nil && len(*upd.Bio) > maxBioLength {
		return nil, apperr.Validation("Bio is too long")
	}

	p, err := s.store.UpdateProfile(ctx, userID, upd)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Profile not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	slog.Info("Profile updated", "user_id", userID)
	return p, nil
}
