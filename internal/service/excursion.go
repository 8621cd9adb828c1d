// Package service contains the business logic for the excursions API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here — services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mutemutemute/excursions/internal/domain"
	"github.com/mutemutemute/excursions/internal/repo"
)

// imageURLRe accepts http(s) URLs pointing at a common image extension,
// optionally followed by a query string.
var imageURLRe = regexp.MustCompile(`^https?://.*\.(?:png|jpg|jpeg|gif|bmp|svg|webp|tiff)(\?.*)?$`)

// timeOfDayRe matches "HH:MM:SS" with 24-hour hours.
var timeOfDayRe = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]:[0-5][0-9]$`)

// ExcursionService implements business logic for excursion operations.
type ExcursionService struct {
	excursions repo.ExcursionRepo
	search     repo.ExcursionSearch
}

// NewExcursionService constructs an ExcursionService backed by the provided repos.
func NewExcursionService(excursions repo.ExcursionRepo, search repo.ExcursionSearch) *ExcursionService {
	return &ExcursionService{excursions: excursions, search: search}
}

// Create validates the draft and persists the excursion together with all of
// its dates. Returns domain.ErrValidation for malformed input and
// domain.ErrNotFound when the category does not exist.
func (s *ExcursionService) Create(ctx context.Context, draft domain.ExcursionDraft) (domain.Excursion, error) {
	if err := validateDraft(draft); err != nil {
		return domain.Excursion{}, err
	}
	result, err := s.excursions.Create(ctx, draft)
	if err != nil {
		return domain.Excursion{}, fmt.Errorf("service.ExcursionService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single excursion aggregate by ID.
func (s *ExcursionService) GetByID(ctx context.Context, id int64) (domain.Excursion, error) {
	result, err := s.excursions.GetByID(ctx, id)
	if err != nil {
		return domain.Excursion{}, fmt.Errorf("service.ExcursionService.GetByID: %w", err)
	}
	return result, nil
}

// Search returns one page of excursions matching the filters plus the total
// count of distinct matches before pagination.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ExcursionService) Search(ctx context.Context, q repo.SearchQuery, page domain.PageParams) ([]domain.Excursion, int64, error) {
	items, total, err := s.search.Search(ctx, q, page)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ExcursionService.Search: %w", err)
	}
	if items == nil {
		items = []domain.Excursion{}
	}
	return items, total, nil
}

// Update validates the supplied fields and applies the partial update,
// including date reconciliation when a date list is present.
func (s *ExcursionService) Update(ctx context.Context, id int64, patch domain.ExcursionPatch) (domain.Excursion, error) {
	if err := validatePatch(patch); err != nil {
		return domain.Excursion{}, err
	}
	result, err := s.excursions.Update(ctx, id, patch)
	if err != nil {
		return domain.Excursion{}, fmt.Errorf("service.ExcursionService.Update: %w", err)
	}
	return result, nil
}

// Delete removes an excursion (its dates cascade) and returns the deleted record.
func (s *ExcursionService) Delete(ctx context.Context, id int64) (domain.Excursion, error) {
	result, err := s.excursions.Delete(ctx, id)
	if err != nil {
		return domain.Excursion{}, fmt.Errorf("service.ExcursionService.Delete: %w", err)
	}
	return result, nil
}

// validateDraft enforces the field rules for a new excursion:
//   - name at least 3 characters after trimming
//   - image URL of an http(s) image shape
//   - duration in HH:MM:SS form
//   - non-negative price, rating within 0–5
//   - a non-empty date list of well-formed entries
func validateDraft(d domain.ExcursionDraft) error {
	if len(strings.TrimSpace(d.Name)) < 3 {
		return fmt.Errorf("%w: name must be at least 3 characters long", domain.ErrValidation)
	}
	if !imageURLRe.MatchString(strings.TrimSpace(d.ImageURL)) {
		return fmt.Errorf("%w: image_url must be a valid image URL", domain.ErrValidation)
	}
	if !timeOfDayRe.MatchString(d.Duration) {
		return fmt.Errorf("%w: duration must be in the format HH:MM:SS", domain.ErrValidation)
	}
	if d.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	if d.UserRating != nil && (*d.UserRating < 0 || *d.UserRating > 5) {
		return fmt.Errorf("%w: user_rating must be between 0 and 5", domain.ErrValidation)
	}
	if d.CategoryID <= 0 {
		return fmt.Errorf("%w: category_id is required", domain.ErrValidation)
	}
	if len(d.Dates) == 0 {
		return fmt.Errorf("%w: dates must be provided as a list", domain.ErrValidation)
	}
	for _, e := range d.Dates {
		if err := validateDateEntry(e); err != nil {
			return err
		}
	}
	return nil
}

// validatePatch enforces the same field rules as validateDraft, but only for
// the fields actually present. An entirely empty patch is rejected.
func validatePatch(p domain.ExcursionPatch) error {
	if p.Empty() {
		return fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}
	if p.Name != nil && len(strings.TrimSpace(*p.Name)) < 3 {
		return fmt.Errorf("%w: name must be at least 3 characters long", domain.ErrValidation)
	}
	if p.ImageURL != nil && !imageURLRe.MatchString(strings.TrimSpace(*p.ImageURL)) {
		return fmt.Errorf("%w: image_url must be a valid image URL", domain.ErrValidation)
	}
	if p.Duration != nil && !timeOfDayRe.MatchString(*p.Duration) {
		return fmt.Errorf("%w: duration must be in the format HH:MM:SS", domain.ErrValidation)
	}
	if p.Price != nil && *p.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	if p.UserRating != nil && (*p.UserRating < 0 || *p.UserRating > 5) {
		return fmt.Errorf("%w: user_rating must be between 0 and 5", domain.ErrValidation)
	}
	if p.CategoryID != nil && *p.CategoryID <= 0 {
		return fmt.Errorf("%w: category_id must be positive", domain.ErrValidation)
	}
	if p.Dates != nil {
		for _, e := range *p.Dates {
			if err := validateDateEntry(e); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateDateEntry checks one {date, time} pair of a draft or patch.
func validateDateEntry(e domain.DateEntry) error {
	if e.ID < 0 {
		return fmt.Errorf("%w: date id must be positive", domain.ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", e.Date); err != nil {
		return fmt.Errorf("%w: date must be in the format YYYY-MM-DD", domain.ErrValidation)
	}
	if !timeOfDayRe.MatchString(e.Time) {
		return fmt.Errorf("%w: time must be in the format HH:MM:SS", domain.ErrValidation)
	}
	return nil
}
