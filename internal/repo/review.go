package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mutemutemute/excursions/internal/domain"
)

// ReviewRepo defines the persistence operations for reviews.
type ReviewRepo interface {
	// Create appends a review bound to an existing excursion. Returns
	// domain.ErrNotFound when the excursion does not exist. A nil comment
	// is stored as NULL, not as an empty string.
	Create(ctx context.Context, draft domain.ReviewDraft) (domain.Review, error)

	// ListByExcursion returns all reviews for an excursion, newest first.
	ListByExcursion(ctx context.Context, excursionID int64) ([]domain.Review, error)
}

// pgReviewRepo is the Postgres implementation of ReviewRepo.
type pgReviewRepo struct {
	db db
}

// NewReviewRepo constructs a ReviewRepo backed by the provided db.
func NewReviewRepo(db db) ReviewRepo {
	return &pgReviewRepo{db: db}
}

func (r *pgReviewRepo) Create(ctx context.Context, draft domain.ReviewDraft) (domain.Review, error) {
	const q = `
		INSERT INTO reviews (excursion_id, name, user_id, rating, comment)
		VALUES (@excursion_id, @name, @user_id, @rating, @comment)
		RETURNING id, excursion_id, name, user_id, rating, comment, created_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"excursion_id": draft.ExcursionID,
		"name":         draft.Name,
		"user_id":      draft.UserID,
		"rating":       draft.Rating,
		"comment":      draft.Comment, // nil becomes NULL
	})
	rev, err := scanReview(row)
	if err != nil {
		return domain.Review{}, fmt.Errorf("repo.ReviewRepo.Create: %w", mapFKViolation(err))
	}
	return rev, nil
}

func (r *pgReviewRepo) ListByExcursion(ctx context.Context, excursionID int64) ([]domain.Review, error) {
	const q = `
		SELECT id, excursion_id, name, user_id, rating, comment, created_at
		FROM reviews
		WHERE excursion_id = @excursion_id
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"excursion_id": excursionID})
	if err != nil {
		return nil, fmt.Errorf("repo.ReviewRepo.ListByExcursion: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ReviewRepo.ListByExcursion: scan: %w", err)
		}
		reviews = append(reviews, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ReviewRepo.ListByExcursion: rows: %w", err)
	}
	return reviews, nil
}

// scanReview maps a single database row into a domain.Review.
func scanReview(s scanner) (domain.Review, error) {
	var rev domain.Review
	err := s.Scan(&rev.ID, &rev.ExcursionID, &rev.Name, &rev.UserID,
		&rev.Rating, &rev.Comment, &rev.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Review{}, domain.ErrNotFound
		}
		return domain.Review{}, err
	}
	return rev, nil
}
