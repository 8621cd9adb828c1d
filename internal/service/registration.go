package service

import (
	"context"
	"fmt"

	"github.com/mutemutemute/excursions/internal/domain"
	"github.com/mutemutemute/excursions/internal/repo"
)

// RegistrationService implements the booking workflow. Mutation rights on a
// registration depend on who is calling: admins manage the status, owners
// move their booking to another date of the same excursion. That split is
// enforced here in one exhaustive dispatch over the actor's role, never in
// the repo layer.
type RegistrationService struct {
	registrations repo.RegistrationRepo
}

// NewRegistrationService constructs a RegistrationService backed by the
// provided repo.
func NewRegistrationService(registrations repo.RegistrationRepo) *RegistrationService {
	return &RegistrationService{registrations: registrations}
}

// Register books the excursion date for the calling actor. The stored
// registration always starts as Pending with the actor's own user id — any
// status or user id in the client payload is ignored before this point.
// Returns domain.ErrNotFound when the excursion date does not exist.
func (s *RegistrationService) Register(ctx context.Context, actor domain.Actor, excursionDateID int64) (domain.Registration, error) {
	if excursionDateID <= 0 {
		return domain.Registration{}, fmt.Errorf("%w: excursion_date_id must be positive", domain.ErrValidation)
	}
	reg, err := s.registrations.Create(ctx, actor.ID, excursionDateID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("service.RegistrationService.Register: %w", err)
	}
	return reg, nil
}

// Update applies a role-gated mutation to a registration. Exactly one field
// may change per call:
//
//   - admin callers change only the status; a supplied date is rejected with
//     domain.ErrForbidden.
//   - regular callers change only the scheduled date of their own
//     registration; a supplied status is rejected with domain.ErrForbidden,
//     a foreign registration with domain.ErrForbidden, and a date belonging
//     to a different excursion with domain.ErrConflict.
func (s *RegistrationService) Update(ctx context.Context, actor domain.Actor, id int64, patch domain.RegistrationPatch) (domain.Registration, error) {
	switch actor.Role {
	case domain.RoleAdmin:
		if patch.ExcursionDateID != nil {
			return domain.Registration{}, fmt.Errorf("%w: admins may only change status", domain.ErrForbidden)
		}
		if patch.Status == nil {
			return domain.Registration{}, fmt.Errorf("%w: status is required", domain.ErrValidation)
		}
		if !patch.Status.Valid() {
			return domain.Registration{}, fmt.Errorf("%w: status must be one of Pending, Confirmed, Canceled, Closed", domain.ErrValidation)
		}
		reg, err := s.registrations.UpdateStatus(ctx, id, *patch.Status)
		if err != nil {
			return domain.Registration{}, fmt.Errorf("service.RegistrationService.Update: %w", err)
		}
		return reg, nil

	case domain.RoleUser:
		if patch.Status != nil {
			return domain.Registration{}, fmt.Errorf("%w: users may only change the scheduled date", domain.ErrForbidden)
		}
		if patch.ExcursionDateID == nil || *patch.ExcursionDateID <= 0 {
			return domain.Registration{}, fmt.Errorf("%w: excursion_date_id is required", domain.ErrValidation)
		}
		if err := s.requireOwnership(ctx, actor, id); err != nil {
			return domain.Registration{}, err
		}
		reg, err := s.registrations.UpdateDate(ctx, id, *patch.ExcursionDateID)
		if err != nil {
			return domain.Registration{}, fmt.Errorf("service.RegistrationService.Update: %w", err)
		}
		return reg, nil

	default:
		return domain.Registration{}, fmt.Errorf("%w: unknown role %q", domain.ErrForbidden, actor.Role)
	}
}

// Delete removes a registration. Admins may delete any registration; a
// regular caller only their own.
func (s *RegistrationService) Delete(ctx context.Context, actor domain.Actor, id int64) (domain.Registration, error) {
	if !actor.IsAdmin() {
		if err := s.requireOwnership(ctx, actor, id); err != nil {
			return domain.Registration{}, err
		}
	}
	reg, err := s.registrations.Delete(ctx, id)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("service.RegistrationService.Delete: %w", err)
	}
	return reg, nil
}

// ListByUser returns one page of a user's registrations with details, plus
// the user-scoped total. Admins may list anyone; a regular caller only
// themselves. Always returns a non-nil slice.
func (s *RegistrationService) ListByUser(ctx context.Context, actor domain.Actor, userID int64, page domain.PageParams) ([]domain.RegistrationDetail, int64, error) {
	if !actor.IsAdmin() && actor.ID != userID {
		return nil, 0, fmt.Errorf("%w: cannot list another user's registrations", domain.ErrForbidden)
	}
	details, total, err := s.registrations.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("service.RegistrationService.ListByUser: %w", err)
	}
	if details == nil {
		details = []domain.RegistrationDetail{}
	}
	return details, total, nil
}

// ListAll is the admin view of every registration with the unfiltered total.
// Always returns a non-nil slice.
func (s *RegistrationService) ListAll(ctx context.Context, page domain.PageParams) ([]domain.RegistrationDetail, int64, error) {
	details, total, err := s.registrations.ListAll(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("service.RegistrationService.ListAll: %w", err)
	}
	if details == nil {
		details = []domain.RegistrationDetail{}
	}
	return details, total, nil
}

// requireOwnership loads the registration and rejects actors that do not own
// it. NotFound passes through so a missing registration reads as 404, not 403.
func (s *RegistrationService) requireOwnership(ctx context.Context, actor domain.Actor, id int64) error {
	reg, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.RegistrationService: %w", err)
	}
	if reg.UserID != actor.ID {
		return fmt.Errorf("%w: not your registration", domain.ErrForbidden)
	}
	return nil
}
