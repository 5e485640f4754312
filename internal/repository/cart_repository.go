package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"froid-storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements ExpiringCartRepository using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) ExpiringCartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// Load retrieves the persisted lines for a session.
func (r *cartRepository) Load(ctx context.Context, key string) ([]model.CartLine, error) {
	query := `
		SELECT lines
		FROM cart_snapshots
		WHERE session_key = $1
	`

	var data []byte
	err := r.pool.QueryRow(ctx, query, key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("cart", key).Msg("no persisted cart")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("cart", key).Msg("failed to load cart")
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var lines []model.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		r.logger.Error().Err(err).Str("cart", key).Msg("failed to decode persisted cart")
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}

	return lines, nil
}

// Save upserts the lines for a session.
func (r *cartRepository) Save(ctx context.Context, key string, lines []model.CartLine) error {
	if lines == nil {
		lines = []model.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	query := `
		INSERT INTO cart_snapshots (session_key, lines, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (session_key)
		DO UPDATE SET lines = EXCLUDED.lines, updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, key, data); err != nil {
		r.logger.Error().Err(err).
			Str("cart", key).
			Int("lines", len(lines)).
			Msg("failed to save cart")
		return fmt.Errorf("failed to save cart: %w", err)
	}

	r.logger.Debug().Str("cart", key).Int("lines", len(lines)).Msg("cart saved")
	return nil
}

// Delete removes the persisted cart for a session.
func (r *cartRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_snapshots WHERE session_key = $1`, key); err != nil {
		r.logger.Error().Err(err).Str("cart", key).Msg("failed to delete cart")
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

// PurgeStale deletes carts last updated before cutoff.
func (r *cartRepository) PurgeStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cart_snapshots WHERE updated_at < $1`, cutoff)
	if err != nil {
		r.logger.Error().Err(err).Time("cutoff", cutoff).Msg("failed to purge stale carts")
		return 0, fmt.Errorf("failed to purge stale carts: %w", err)
	}

	if n := tag.RowsAffected(); n > 0 {
		r.logger.Info().Int64("purged", n).Msg("purged stale carts")
	}
	return tag.RowsAffected(), nil
}
