package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutemutemute/excursions/internal/domain"
	"github.com/mutemutemute/excursions/internal/repo"
	"github.com/mutemutemute/excursions/internal/service"
)

// mockRegistrationRepo is a test double for repo.RegistrationRepo.
// Set only the method fields your test needs.
type mockRegistrationRepo struct {
	create       func(ctx context.Context, userID, excursionDateID int64) (domain.Registration, error)
	getByID      func(ctx context.Context, id int64) (domain.Registration, error)
	updateStatus func(ctx context.Context, id int64, status domain.RegistrationStatus) (domain.Registration, error)
	updateDate   func(ctx context.Context, id, excursionDateID int64) (domain.Registration, error)
	delete       func(ctx context.Context, id int64) (domain.Registration, error)
	listByUser   func(ctx context.Context, userID int64, page domain.PageParams) ([]domain.RegistrationDetail, int64, error)
	listAll      func(ctx context.Context, page domain.PageParams) ([]domain.RegistrationDetail, int64, error)
}

func (m *mockRegistrationRepo) Create(ctx context.Context, userID, dateID int64) (domain.Registration, error) {
	return m.create(ctx, userID, dateID)
}
func (m *mockRegistrationRepo) GetByID(ctx context.Context, id int64) (domain.Registration, error) {
	return m.getByID(ctx, id)
}
func (m *mockRegistrationRepo) UpdateStatus(ctx context.Context, id int64, s domain.RegistrationStatus) (domain.Registration, error) {
	return m.updateStatus(ctx, id, s)
}
func (m *mockRegistrationRepo) UpdateDate(ctx context.Context, id, dateID int64) (domain.Registration, error) {
	return m.updateDate(ctx, id, dateID)
}
func (m *mockRegistrationRepo) Delete(ctx context.Context, id int64) (domain.Registration, error) {
	return m.delete(ctx, id)
}
func (m *mockRegistrationRepo) ListByUser(ctx context.Context, userID int64, page domain.PageParams) ([]domain.RegistrationDetail, int64, error) {
	return m.listByUser(ctx, userID, page)
}
func (m *mockRegistrationRepo) ListAll(ctx context.Context, page domain.PageParams) ([]domain.RegistrationDetail, int64, error) {
	return m.listAll(ctx, page)
}

// compile-time check: mockRegistrationRepo must satisfy repo.RegistrationRepo.
var _ repo.RegistrationRepo = (*mockRegistrationRepo)(nil)

var (
	admin = domain.Actor{ID: 1, Role: domain.RoleAdmin}
	alice = domain.Actor{ID: 2, Role: domain.RoleUser}
	bob   = domain.Actor{ID: 3, Role: domain.RoleUser}
)

// ---- Register --------------------------------------------------------------

func TestRegister_ForcesCallerID(t *testing.T) {
	repoMock := &mockRegistrationRepo{
		create: func(_ context.Context, userID, dateID int64) (domain.Registration, error) {
			assert.Equal(t, alice.ID, userID)
			assert.Equal(t, int64(10), dateID)
			return domain.Registration{ID: 1, UserID: userID, ExcursionDateID: dateID, Status: domain.StatusPending}, nil
		},
	}
	svc := service.NewRegistrationService(repoMock)

	reg, err := svc.Register(context.Background(), alice, 10)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, reg.Status)
	assert.Equal(t, alice.ID, reg.UserID)
}

func TestRegister_BadDateID(t *testing.T) {
	svc := service.NewRegistrationService(&mockRegistrationRepo{})

	_, err := svc.Register(context.Background(), alice, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRegister_MissingDate(t *testing.T) {
	repoMock := &mockRegistrationRepo{
		create: func(_ context.Context, _, _ int64) (domain.Registration, error) {
			return domain.Registration{}, domain.ErrNotFound
		},
	}
	svc := service.NewRegistrationService(repoMock)

	_, err := svc.Register(context.Background(), alice, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Update: admin ---------------------------------------------------------

func TestUpdate_AdminChangesStatus(t *testing.T) {
	status := domain.StatusConfirmed
	repoMock := &mockRegistrationRepo{
		updateStatus: func(_ context.Context, id int64, s domain.RegistrationStatus) (domain.Registration, error) {
			assert.Equal(t, int64(5), id)
			assert.Equal(t, domain.StatusConfirmed, s)
			return domain.Registration{ID: id, Status: s}, nil
		},
	}
	svc := service.NewRegistrationService(repoMock)

	reg, err := svc.Update(context.Background(), admin, 5, domain.RegistrationPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, reg.Status)
}

func TestUpdate_AdminMayNotChangeDate(t *testing.T) {
	dateID := int64(10)
	svc := service.NewRegistrationService(&mockRegistrationRepo{})

	_, err := svc.Update(context.Background(), admin, 5, domain.RegistrationPatch{ExcursionDateID: &dateID})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdate_AdminMissingStatus(t *testing.T) {
	svc := service.NewRegistrationService(&mockRegistrationRepo{})

	_, err := svc.Update(context.Background(), admin, 5, domain.RegistrationPatch{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdate_AdminBadStatus(t *testing.T) {
	bad := domain.RegistrationStatus("Rejected")
	svc := service.NewRegistrationService(&mockRegistrationRepo{})

	_, err := svc.Update(context.Background(), admin, 5, domain.RegistrationPatch{Status: &bad})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- Update: user ----------------------------------------------------------

func TestUpdate_UserMovesOwnRegistration(t *testing.T) {
	dateID := int64(20)
	repoMock := &mockRegistrationRepo{
		getByID: func(_ context.Context, id int64) (domain.Registration, error) {
			return domain.Registration{ID: id, UserID: alice.ID}, nil
		},
		updateDate: func(_ context.Context, id, newDateID int64) (domain.Registration, error) {
			assert.Equal(t, int64(5), id)
			assert.Equal(t, dateID, newDateID)
			return domain.Registration{ID: id, UserID: alice.ID, ExcursionDateID: newDateID}, nil
		},
	}
	svc := service.NewRegistrationService(repoMock)

	reg, err := svc.Update(context.Background(), alice, 5, domain.RegistrationPatch{ExcursionDateID: &dateID})
	require.NoError(t, err)
	assert.Equal(t, dateID, reg.ExcursionDateID)
}

func TestUpdate_UserMayNotChangeStatus(t *testing.T) {
	status := domain.StatusConfirmed
	svc := service.NewRegistrationService(&mockRegistrationRepo{})

	_, err := svc.Update(context.Background(), alice, 5, domain.RegistrationPatch{Status: &status})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdate_UserMissingDate(t *testing.T) {
	svc := service.NewRegistrationService(&mockRegistrationRepo{})

	_, err := svc.Update(context.Background(), alice, 5, domain.RegistrationPatch{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdate_UserForeignRegistration(t *testing.T) {
	dateID := int64(20)
	repoMock := &mockRegistrationRepo{
		getByID: func(_ context.Context, id int64) (domain.Registration, error) {
			return domain.Registration{ID: id, UserID: alice.ID}, nil
		},
	}
	svc := service.NewRegistrationService(repoMock)

	_, err := svc.Update(context.Background(), bob, 5, domain.RegistrationPatch{ExcursionDateID: &dateID})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdate_UserMissingRegistration(t *testing.T) {
	dateID := int64(20)
	repoMock := &mockRegistrationRepo{
		getByID: func(_ context.Context, _ int64) (domain.Registration, error) {
			return domain.Registration{}, domain.ErrNotFound
		},
	}
	svc := service.NewRegistrationService(repoMock)

	// a missing registration reads as not-found, never forbidden
	_, err := svc.Update(context.Background(), alice, 99, domain.RegistrationPatch{ExcursionDateID: &dateID})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdate_UserDateOfDifferentExcursion(t *testing.T) {
	dateID := int64(20)
	repoMock := &mockRegistrationRepo{
		getByID: func(_ context.Context, id int64) (domain.Registration, error) {
			return domain.Registration{ID: id, UserID: alice.ID}, nil
		},
		updateDate: func(_ context.Context, _, _ int64) (domain.Registration, error) {
			return domain.Registration{}, domain.ErrConflict
		},
	}
	svc := service.NewRegistrationService(repoMock)

	_, err := svc.Update(context.Background(), alice, 5, domain.RegistrationPatch{ExcursionDateID: &dateID})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUpdate_UnknownRole(t *testing.T) {
	status := domain.StatusConfirmed
	svc := service.NewRegistrationService(&mockRegistrationRepo{})

	_, err := svc.Update(context.Background(), domain.Actor{ID: 4, Role: "owner"}, 5,
		domain.RegistrationPatch{Status: &status})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ---- Delete ----------------------------------------------------------------

func TestDelete_AdminDeletesAny(t *testing.T) {
	repoMock := &mockRegistrationRepo{
		delete: func(_ context.Context, id int64) (domain.Registration, error) {
			return domain.Registration{ID: id, UserID: alice.ID}, nil
		},
	}
	svc := service.NewRegistrationService(repoMock)

	reg, err := svc.Delete(context.Background(), admin, 5)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, reg.UserID)
}

func TestDelete_OwnerDeletesOwn(t *testing.T) {
	repoMock := &mockRegistrationRepo{
		getByID: func(_ context.Context, id int64) (domain.Registration, error) {
			return domain.Registration{ID: id, UserID: alice.ID}, nil
		},
		delete: func(_ context.Context, id int64) (domain.Registration, error) {
			return domain.Registration{ID: id, UserID: alice.ID}, nil
		},
	}
	svc := service.NewRegistrationService(repoMock)

	_, err := svc.Delete(context.Background(), alice, 5)
	assert.NoError(t, err)
}

func TestDelete_ForeignForbidden(t *testing.T) {
	repoMock := &mockRegistrationRepo{
		getByID: func(_ context.Context, id int64) (domain.Registration, error) {
			return domain.Registration{ID: id, UserID: alice.ID}, nil
		},
	}
	svc := service.NewRegistrationService(repoMock)

	_, err := svc.Delete(context.Background(), bob, 5)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ---- Lists -----------------------------------------------------------------

func TestListByUser_SelfOK(t *testing.T) {
	repoMock := &mockRegistrationRepo{
		listByUser: func(_ context.Context, userID int64, page domain.PageParams) ([]domain.RegistrationDetail, int64, error) {
			assert.Equal(t, alice.ID, userID)
			return []domain.RegistrationDetail{{ID: 1, UserID: userID}}, 1, nil
		},
	}
	svc := service.NewRegistrationService(repoMock)

	details, total, err := svc.ListByUser(context.Background(), alice, alice.ID, domain.PageParams{})
	require.NoError(t, err)
	assert.Len(t, details, 1)
	assert.Equal(t, int64(1), total)
}

func TestListByUser_AdminListsAnyone(t *testing.T) {
	repoMock := &mockRegistrationRepo{
		listByUser: func(_ context.Context, userID int64, _ domain.PageParams) ([]domain.RegistrationDetail, int64, error) {
			assert.Equal(t, bob.ID, userID)
			return nil, 0, nil
		},
	}
	svc := service.NewRegistrationService(repoMock)

	details, _, err := svc.ListByUser(context.Background(), admin, bob.ID, domain.PageParams{})
	require.NoError(t, err)
	assert.NotNil(t, details)
}

func TestListByUser_ForeignForbidden(t *testing.T) {
	svc := service.NewRegistrationService(&mockRegistrationRepo{})

	_, _, err := svc.ListByUser(context.Background(), alice, bob.ID, domain.PageParams{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestListAll_PassesPage(t *testing.T) {
	repoMock := &mockRegistrationRepo{
		listAll: func(_ context.Context, page domain.PageParams) ([]domain.RegistrationDetail, int64, error) {
			assert.True(t, page.Bounded)
			assert.Equal(t, 10, page.Limit)
			return []domain.RegistrationDetail{{ID: 1}, {ID: 2}}, 12, nil
		},
	}
	svc := service.NewRegistrationService(repoMock)

	details, total, err := svc.ListAll(context.Background(), domain.PageParams{Limit: 10, Bounded: true})
	require.NoError(t, err)
	assert.Len(t, details, 2)
	assert.Equal(t, int64(12), total)
}
