package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisStore keeps each cart as a JSON document under cart:<sessionID>.
// Every save renews the TTL so active sessions keep their cart.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed cart store.
func NewRedisStore(client redis.Cmdable, ttl time.Duration, logger zerolog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "cart-store").Str("backend", "redis").Logger(),
	}
}

// Load returns the cart stored for sessionID, or an empty cart.
func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}

	data, err := s.client.Get(ctx, cacheKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(), nil
	}
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to load cart")
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	c := New()
	if err := json.Unmarshal(data, c); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to decode cart")
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return c, nil
}

// Save writes c for sessionID. An empty cart deletes the key.
func (s *RedisStore) Save(ctx context.Context, sessionID string, c *Cart) error {
	if sessionID == "" {
		return ErrNoSession
	}
	if c == nil || c.Len() == 0 {
		return s.Clear(ctx, sessionID)
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := s.client.Set(ctx, cacheKey(sessionID), data, s.ttl).Err(); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to save cart")
		return fmt.Errorf("redis set failed: %w", err)
	}

	s.logger.Debug().
		Str("session_id", sessionID).
		Int("entries", c.Len()).
		Msg("cart saved")
	return nil
}

// Clear removes the cart for sessionID.
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrNoSession
	}
	if err := s.client.Del(ctx, cacheKey(sessionID)).Err(); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to clear cart")
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}
