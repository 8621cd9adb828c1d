package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mutemutemute/excursions/internal/domain"
	"github.com/mutemutemute/excursions/internal/repo"
)

// ReviewService implements business logic for post-visit reviews.
// It holds the excursion repo as well, because leaving a review requires the
// reviewed excursion to exist.
type ReviewService struct {
	reviews    repo.ReviewRepo
	excursions repo.ExcursionRepo
}

// NewReviewService constructs a ReviewService backed by the provided repos.
func NewReviewService(reviews repo.ReviewRepo, excursions repo.ExcursionRepo) *ReviewService {
	return &ReviewService{reviews: reviews, excursions: excursions}
}

// Leave validates the draft, verifies the excursion exists, and appends the
// review with the calling actor's user id. The display name is free text and
// need not match the account name. An absent comment stays absent.
func (s *ReviewService) Leave(ctx context.Context, actor domain.Actor, draft domain.ReviewDraft) (domain.Review, error) {
	if len(strings.TrimSpace(draft.Name)) < 3 {
		return domain.Review{}, fmt.Errorf("%w: name must be at least 3 characters long", domain.ErrValidation)
	}
	if draft.Rating < 1 || draft.Rating > 5 {
		return domain.Review{}, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
	}
	if _, err := s.excursions.GetByID(ctx, draft.ExcursionID); err != nil {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Leave: %w", err)
	}

	draft.UserID = actor.ID
	rev, err := s.reviews.Create(ctx, draft)
	if err != nil {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Leave: %w", err)
	}
	return rev, nil
}

// ListByExcursion returns all reviews of an excursion, newest first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ReviewService) ListByExcursion(ctx context.Context, excursionID int64) ([]domain.Review, error) {
	reviews, err := s.reviews.ListByExcursion(ctx, excursionID)
	if err != nil {
		return nil, fmt.Errorf("service.ReviewService.ListByExcursion: %w", err)
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, nil
}
