package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mutemutemute/excursions/internal/domain"
)

// TokenRepo stores refresh tokens by hash. Raw token material never touches
// the database — callers hash before storing and before looking up.
type TokenRepo interface {
	// Store saves a refresh token hash with its expiry for the given user.
	Store(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error

	// Consume deletes the token by hash and returns the owning user ID.
	// Returns domain.ErrNotFound when the hash is unknown or expired —
	// a consumed token can never be replayed.
	Consume(ctx context.Context, tokenHash string) (int64, error)

	// DeleteForUser removes all refresh tokens of a user (logout-everywhere).
	DeleteForUser(ctx context.Context, userID int64) error
}

// pgTokenRepo is the Postgres implementation of TokenRepo.
type pgTokenRepo struct {
	db db
}

// NewTokenRepo constructs a TokenRepo backed by the provided db.
func NewTokenRepo(db db) TokenRepo {
	return &pgTokenRepo{db: db}
}

func (r *pgTokenRepo) Store(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	const q = `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES (@user_id, @token_hash, @expires_at)`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"user_id":    userID,
		"token_hash": tokenHash,
		"expires_at": expiresAt,
	})
	if err != nil {
		return fmt.Errorf("repo.TokenRepo.Store: %w", err)
	}
	return nil
}

func (r *pgTokenRepo) Consume(ctx context.Context, tokenHash string) (int64, error) {
	const q = `
		DELETE FROM refresh_tokens
		WHERE token_hash = @token_hash AND expires_at > now()
		RETURNING user_id`

	var userID int64
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"token_hash": tokenHash}).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = domain.ErrNotFound
		}
		return 0, fmt.Errorf("repo.TokenRepo.Consume: %w", err)
	}
	return userID, nil
}

func (r *pgTokenRepo) DeleteForUser(ctx context.Context, userID int64) error {
	const q = `DELETE FROM refresh_tokens WHERE user_id = @user_id`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"user_id": userID}); err != nil {
		return fmt.Errorf("repo.TokenRepo.DeleteForUser: %w", err)
	}
	return nil
}
