package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pasta-logger/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// userRepository implements UserRepository using PostgreSQL.
type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

// UpsertByEmail returns the user with the given email, creating it if needed.
func (r *userRepository) UpsertByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		INSERT INTO users (id, email)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, email, created_at
	`

	var u model.User
	err := r.pool.QueryRow(ctx, query, uuid.New(), email).Scan(&u.ID, &u.Email, &u.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("email", email).Msg("failed to upsert user")
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return &u, nil
}

// GetByID retrieves a user by ID.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT id, email, created_at FROM users WHERE id = $1`

	var u model.User
	err := r.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("user_id", id.String()).Msg("user not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &u, nil
}

// magicLinkRepository implements MagicLinkRepository using PostgreSQL.
type magicLinkRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewMagicLinkRepository creates a new PostgreSQL-backed magic link repository.
func NewMagicLinkRepository(pool *pgxpool.Pool, logger zerolog.Logger) MagicLinkRepository {
	return &magicLinkRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "magic_link").Logger(),
	}
}

// Create stores a new pending link.
func (r *magicLinkRepository) Create(ctx context.Context, link *model.MagicLink) error {
	query := `
		INSERT INTO magic_links (token_hash, email, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query, link.TokenHash, link.Email, link.ExpiresAt, link.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("email", link.Email).Msg("failed to create magic link")
		return fmt.Errorf("failed to create magic link: %w", err)
	}

	return nil
}

// Consume atomically marks an unused, unexpired link as used.
func (r *magicLinkRepository) Consume(ctx context.Context, tokenHash string, now time.Time) (*model.MagicLink, error) {
	query := `
		UPDATE magic_links
		SET used_at = $2
		WHERE token_hash = $1 AND used_at IS NULL AND expires_at > $2
		RETURNING token_hash, email, expires_at, created_at
	`

	var l model.MagicLink
	err := r.pool.QueryRow(ctx, query, tokenHash, now).Scan(&l.TokenHash, &l.Email, &l.ExpiresAt, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to consume magic link")
		return nil, fmt.Errorf("failed to consume magic link: %w", err)
	}

	return &l, nil
}
