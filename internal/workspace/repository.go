package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	stateKeyTemplate   = "workspace:%s"
	maxDispatchRetries = 16
)

// Repository keeps each user's shell state in Redis so that it survives reloads.
type Repository struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRepository(rdb *redis.Client, ttl time.Duration) *Repository {
	return &Repository{redis: rdb, ttl: ttl}
}

// Load returns the stored state, or a fresh one if nothing is stored.
func (r *Repository) Load(ctx context.Context, userID string) (State, error) {
	raw, err := r.redis.Get(ctx, fmt.Sprintf(stateKeyTemplate, userID)).Bytes()
	return decodeState(raw, err)
}

func decodeState(raw []byte, err error) (State, error) {
	if errors.Is(err, redis.Nil) {
		return NewState(), nil
	}
	if err != nil {
		return State{}, fmt.Errorf("failed to load workspace: %w", err)
	}
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return State{}, fmt.Errorf("failed to decode workspace: %w", err)
	}
	return s, nil
}

func (r *Repository) Save(ctx context.Context, userID string, s State) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode workspace: %w", err)
	}
	if err := r.redis.Set(ctx, fmt.Sprintf(stateKeyTemplate, userID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save workspace: %w", err)
	}
	return nil
}

// Dispatch applies ev to the user's stored state under WATCH, retrying when a
// concurrent dispatch changed the state first.
func (r *Repository) Dispatch(ctx context.Context, userID string, ev Event) (State, error) {
	key := fmt.Sprintf(stateKeyTemplate, userID)

	var next State
	txf := func(tx *redis.Tx) error {
		s, err := decodeState(tx.Get(ctx, key).Bytes())
		if err != nil {
			return err
		}
		next, err = s.Apply(ev)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to encode workspace: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, r.ttl)
			return nil
		})
		if err != nil && !errors.Is(err, redis.TxFailedErr) {
			return fmt.Errorf("failed to save workspace: %w", err)
		}
		return err
	}

	for i := 0; i < maxDispatchRetries; i++ {
		err := r.redis.Watch(ctx, txf, key)
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return State{}, err
		}
	}
	return State{}, fmt.Errorf("failed to save workspace: %w", redis.TxFailedErr)
}

// Clear drops the stored state, as on logout.
func (r *Repository) Clear(ctx context.Context, userID string) error {
	if err := r.redis.Del(ctx, fmt.Sprintf(stateKeyTemplate, userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear workspace: %w", err)
	}
	return nil
}
