package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"froid-storefront/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// redisCartRepository implements CartRepository on Redis.
// Every read or write slides the expiry forward by ttl.
type redisCartRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisCartRepository creates a Redis-backed cart repository.
func NewRedisCartRepository(client *redis.Client, ttl time.Duration, logger zerolog.Logger) CartRepository {
	return &redisCartRepository{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("repository", "redis_cart").Logger(),
	}
}

func (r *redisCartRepository) Load(ctx context.Context, key string) ([]model.CartLine, error) {
	k := cartKey(key)

	data, err := r.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Str("cart", key).Msg("redis get failed")
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var lines []model.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}

	if r.ttl > 0 {
		if err := r.client.Expire(ctx, k, r.ttl).Err(); err != nil {
			r.logger.Warn().Err(err).Str("cart", key).Msg("failed to refresh cart expiry")
		}
	}

	return lines, nil
}

func (r *redisCartRepository) Save(ctx context.Context, key string, lines []model.CartLine) error {
	if lines == nil {
		lines = []model.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := r.client.Set(ctx, cartKey(key), data, r.ttl).Err(); err != nil {
		r.logger.Error().Err(err).Str("cart", key).Msg("redis set failed")
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *redisCartRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, cartKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cartKey(key string) string {
	return fmt.Sprintf("cart:%s", key)
}
