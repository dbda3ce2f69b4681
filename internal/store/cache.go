package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/illegalcall/codeshell/internal/metrics"
	"github.com/illegalcall/codeshell/internal/models"
)

const (
	previewKeyTemplate    = "preview:%s"
	deploymentKeyTemplate = "preview:%s:deployment"
)

// CachedStore serves previews from Redis in front of another Store. Everything
// else passes straight through.
type CachedStore struct {
	Store
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedStore(inner Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{Store: inner, redis: rdb, ttl: ttl}
}

func (s *CachedStore) GetPreview(ctx context.Context, name string) (*models.AppPreview, error) {
	key := fmt.Sprintf(previewKeyTemplate, name)
	if raw, err := s.redis.Get(ctx, key).Bytes(); err == nil {
		var p models.AppPreview
		if err := json.Unmarshal(raw, &p); err == nil {
			metrics.PreviewCache.WithLabelValues("hit").Inc()
			return &p, nil
		}
		slog.Warn("Dropping undecodable cached preview", "key", key)
	} else if !errors.Is(err, redis.Nil) {
		// Cache trouble must not fail the read.
		slog.Error("Failed to read preview cache", "key", key, "error", err)
	}
	metrics.PreviewCache.WithLabelValues("miss").Inc()

	p, err := s.Store.GetPreview(ctx, name)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(p); err == nil {
		if err := s.redis.Set(ctx, key, raw, s.ttl).Err(); err != nil {
			slog.Error("Failed to cache preview", "key", key, "error", err)
		}
	}
	return p, nil
}

func (s *CachedStore) SavePreview(ctx context.Context, p *models.AppPreview) error {
	if err := s.Store.SavePreview(ctx, p); err != nil {
		return err
	}
	// The write already landed; a stale cache entry expires with its TTL.
	if err := s.Invalidate(ctx, p.Name); err != nil {
		slog.Error("Failed to invalidate preview cache after save", "app", p.Name, "error", err)
	}
	return nil
}

// Invalidate drops the cached copy of a preview.
func (s *CachedStore) Invalidate(ctx context.Context, name string) error {
	if err := s.redis.Del(ctx, fmt.Sprintf(previewKeyTemplate, name)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate preview cache: %w", err)
	}
	return nil
}

// RecordDeployment remembers the last successful deployment of a preview.
func (s *CachedStore) RecordDeployment(ctx context.Context, d models.Deployment) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode deployment: %w", err)
	}
	if err := s.redis.Set(ctx, fmt.Sprintf(deploymentKeyTemplate, d.AppName), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to record deployment: %w", err)
	}
	return nil
}

// LastDeployment returns the last recorded deployment, or ErrNotFound.
func (s *CachedStore) LastDeployment(ctx context.Context, name string) (*models.Deployment, error) {
	raw, err := s.redis.Get(ctx, fmt.Sprintf(deploymentKeyTemplate, name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read deployment: %w", err)
	}
	var d models.Deployment
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("failed to decode deployment: %w", err)
	}
	return &d, nil
}
