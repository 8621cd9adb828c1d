package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mutemutemute/excursions/internal/domain"
)

// RegistrationRepo defines the persistence operations for registrations.
// Status changes and date changes are separate operations because they are
// granted to different roles; the service layer selects which one to call.
type RegistrationRepo interface {
	// Create inserts a registration for the given user and excursion date.
	// Status is always persisted as Pending — the column default, never a
	// client-supplied value. Returns domain.ErrNotFound when the excursion
	// date does not exist (foreign key failure).
	Create(ctx context.Context, userID, excursionDateID int64) (domain.Registration, error)

	// GetByID retrieves a registration by primary key.
	// Returns domain.ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id int64) (domain.Registration, error)

	// UpdateStatus overwrites the status, leaving the scheduled date
	// untouched. Returns domain.ErrNotFound if the registration does not
	// exist.
	UpdateStatus(ctx context.Context, id int64, status domain.RegistrationStatus) (domain.Registration, error)

	// UpdateDate moves the registration to another scheduled date of the
	// same excursion, leaving the status untouched. Returns
	// domain.ErrNotFound when the registration or the new date does not
	// exist and domain.ErrConflict when the new date belongs to a different
	// excursion than the registration's current one.
	UpdateDate(ctx context.Context, id, excursionDateID int64) (domain.Registration, error)

	// Delete removes a registration and returns the deleted record.
	// Returns domain.ErrNotFound if no row matched.
	Delete(ctx context.Context, id int64) (domain.Registration, error)

	// ListByUser returns one page of the user's registrations joined with
	// excursion and account details, plus the total count for that user.
	ListByUser(ctx context.Context, userID int64, page domain.PageParams) ([]domain.RegistrationDetail, int64, error)

	// ListAll is the admin view: every registration with the same joins,
	// plus the unfiltered total count.
	ListAll(ctx context.Context, page domain.PageParams) ([]domain.RegistrationDetail, int64, error)
}

// pgRegistrationRepo is the Postgres implementation of RegistrationRepo.
type pgRegistrationRepo struct {
	db db
}

// NewRegistrationRepo constructs a RegistrationRepo backed by the provided db.
func NewRegistrationRepo(db db) RegistrationRepo {
	return &pgRegistrationRepo{db: db}
}

func (r *pgRegistrationRepo) Create(ctx context.Context, userID, excursionDateID int64) (domain.Registration, error) {
	const q = `
		INSERT INTO registrations (user_id, excursion_date_id, status)
		VALUES (@user_id, @excursion_date_id, 'Pending')
		RETURNING id, user_id, excursion_date_id, status, created_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"user_id":           userID,
		"excursion_date_id": excursionDateID,
	})
	reg, err := scanRegistration(row)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("repo.RegistrationRepo.Create: %w", mapFKViolation(err))
	}
	return reg, nil
}

func (r *pgRegistrationRepo) GetByID(ctx context.Context, id int64) (domain.Registration, error) {
	const q = `
		SELECT id, user_id, excursion_date_id, status, created_at
		FROM registrations
		WHERE id = @id`

	reg, err := scanRegistration(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Registration{}, fmt.Errorf("repo.RegistrationRepo.GetByID: %w", err)
	}
	return reg, nil
}

func (r *pgRegistrationRepo) UpdateStatus(ctx context.Context, id int64, status domain.RegistrationStatus) (domain.Registration, error) {
	const q = `
		UPDATE registrations
		SET status = @status
		WHERE id = @id
		RETURNING id, user_id, excursion_date_id, status, created_at`

	reg, err := scanRegistration(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "status": status}))
	if err != nil {
		return domain.Registration{}, fmt.Errorf("repo.RegistrationRepo.UpdateStatus: %w", err)
	}
	return reg, nil
}

func (r *pgRegistrationRepo) UpdateDate(ctx context.Context, id, excursionDateID int64) (domain.Registration, error) {
	var reg domain.Registration

	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		// Resolve the excursion the registration currently points at,
		// transitively through its date.
		var currentExcursion int64
		err := tx.QueryRow(ctx, `
			SELECT ed.excursion_id
			FROM registrations r
			JOIN excursion_dates ed ON ed.id = r.excursion_date_id
			WHERE r.id = @id`,
			pgx.NamedArgs{"id": id},
		).Scan(&currentExcursion)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}

		var newExcursion int64
		err = tx.QueryRow(ctx,
			`SELECT excursion_id FROM excursion_dates WHERE id = @id`,
			pgx.NamedArgs{"id": excursionDateID},
		).Scan(&newExcursion)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("excursion date %d: %w", excursionDateID, domain.ErrNotFound)
			}
			return err
		}

		if newExcursion != currentExcursion {
			return fmt.Errorf("%w: date does not belong to this excursion", domain.ErrConflict)
		}

		const q = `
			UPDATE registrations
			SET excursion_date_id = @excursion_date_id
			WHERE id = @id
			RETURNING id, user_id, excursion_date_id, status, created_at`
		reg, err = scanRegistration(tx.QueryRow(ctx, q, pgx.NamedArgs{
			"id":                id,
			"excursion_date_id": excursionDateID,
		}))
		return err
	})
	if err != nil {
		return domain.Registration{}, fmt.Errorf("repo.RegistrationRepo.UpdateDate: %w", err)
	}
	return reg, nil
}

func (r *pgRegistrationRepo) Delete(ctx context.Context, id int64) (domain.Registration, error) {
	const q = `
		DELETE FROM registrations
		WHERE id = @id
		RETURNING id, user_id, excursion_date_id, status, created_at`

	reg, err := scanRegistration(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Registration{}, fmt.Errorf("repo.RegistrationRepo.Delete: %w", err)
	}
	return reg, nil
}

func (r *pgRegistrationRepo) ListByUser(ctx context.Context, userID int64, page domain.PageParams) ([]domain.RegistrationDetail, int64, error) {
	details, total, err := r.list(ctx, `r.user_id = @user_id`, pgx.NamedArgs{"user_id": userID}, page)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.RegistrationRepo.ListByUser: %w", err)
	}
	return details, total, nil
}

func (r *pgRegistrationRepo) ListAll(ctx context.Context, page domain.PageParams) ([]domain.RegistrationDetail, int64, error) {
	details, total, err := r.list(ctx, `TRUE`, pgx.NamedArgs{}, page)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.RegistrationRepo.ListAll: %w", err)
	}
	return details, total, nil
}

// list runs the joined listing and its count over the same filter condition.
func (r *pgRegistrationRepo) list(ctx context.Context, cond string, args pgx.NamedArgs, page domain.PageParams) ([]domain.RegistrationDetail, int64, error) {
	var total int64
	countSQL := `SELECT COUNT(*) FROM registrations r WHERE ` + cond
	if err := r.db.QueryRow(ctx, countSQL, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	dataSQL := `
		SELECT r.id, r.user_id, u.username, u.email,
		       r.excursion_date_id, e.id, e.name,
		       ed.date::text, ed.time::text,
		       r.status, r.created_at
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		JOIN excursion_dates ed ON ed.id = r.excursion_date_id
		JOIN excursions e ON e.id = ed.excursion_id
		WHERE ` + cond + `
		ORDER BY r.id ASC`

	if page.Bounded {
		dataSQL += ` LIMIT @limit OFFSET @offset`
		args["limit"] = page.Limit
		args["offset"] = page.Offset
	}

	rows, err := r.db.Query(ctx, dataSQL, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	details := []domain.RegistrationDetail{}
	for rows.Next() {
		var d domain.RegistrationDetail
		err := rows.Scan(&d.ID, &d.UserID, &d.Username, &d.Email,
			&d.ExcursionDateID, &d.ExcursionID, &d.ExcursionName,
			&d.Date, &d.Time, &d.Status, &d.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows: %w", err)
	}
	return details, total, nil
}

// scanRegistration maps a single database row into a domain.Registration.
func scanRegistration(s scanner) (domain.Registration, error) {
	var reg domain.Registration
	err := s.Scan(&reg.ID, &reg.UserID, &reg.ExcursionDateID, &reg.Status, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Registration{}, domain.ErrNotFound
		}
		return domain.Registration{}, err
	}
	return reg, nil
}
