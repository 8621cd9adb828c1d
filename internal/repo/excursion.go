package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/mutemutemute/excursions/internal/domain"
)

// ExcursionRepo defines the persistence operations for the excursion
// aggregate: an excursion row together with its owned excursion_dates rows,
// treated as one consistency unit for writes.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type ExcursionRepo interface {
	// Create inserts a new excursion and all of its dates as one atomic unit.
	// Returns domain.ErrNotFound if the referenced category does not exist.
	// A failure on any date insert rolls back the excursion insert too — a
	// partial excursion with zero dates is never observable.
	Create(ctx context.Context, draft domain.ExcursionDraft) (domain.Excursion, error)

	// GetByID retrieves an excursion joined with its category name and full
	// date list. An excursion with zero dates yields an empty list, not an
	// error. Returns domain.ErrNotFound if no excursion with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.Excursion, error)

	// Update applies the non-nil scalar fields of the patch and, when a date
	// list is supplied, reconciles the owned date set against it: entries
	// with a positive ID overwrite their row, entries without an ID are
	// inserted, and owned rows absent from the payload are deleted. The
	// whole update runs in one atomic unit behind a row lock on the
	// excursion, so concurrent edits of the same aggregate serialize instead
	// of acting on stale snapshots.
	// Returns domain.ErrNotFound if the excursion does not exist.
	Update(ctx context.Context, id int64, patch domain.ExcursionPatch) (domain.Excursion, error)

	// Delete removes an excursion and returns the deleted record. Owned
	// dates (and rows referencing them) are removed by the schema's
	// ON DELETE CASCADE. Returns domain.ErrNotFound if no row matched.
	Delete(ctx context.Context, id int64) (domain.Excursion, error)
}

// pgExcursionRepo is the Postgres implementation of ExcursionRepo.
type pgExcursionRepo struct {
	db db
}

// NewExcursionRepo constructs an ExcursionRepo backed by the provided db
// connection. In production pass *pgxpool.Pool; in tests pass a pgx.Tx for
// rollback isolation.
func NewExcursionRepo(db db) ExcursionRepo {
	return &pgExcursionRepo{db: db}
}

func (r *pgExcursionRepo) Create(ctx context.Context, draft domain.ExcursionDraft) (domain.Excursion, error) {
	var exc domain.Excursion

	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		// Resolve the category first; dependent inserts must not run against
		// a category that is about to turn out missing.
		var categoryName string
		err := tx.QueryRow(ctx,
			`SELECT name FROM categories WHERE id = @id`,
			pgx.NamedArgs{"id": draft.CategoryID},
		).Scan(&categoryName)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("category %d: %w", draft.CategoryID, domain.ErrNotFound)
			}
			return err
		}

		rating := 0
		if draft.UserRating != nil {
			rating = *draft.UserRating
		}

		const insertExcursion = `
			INSERT INTO excursions (name, image_url, duration, price, user_rating, category_id, description)
			VALUES (@name, @image_url, @duration, @price, @user_rating, @category_id, @description)
			RETURNING id, name, image_url, duration::text, price, user_rating, category_id, description`

		row := tx.QueryRow(ctx, insertExcursion, pgx.NamedArgs{
			"name":        draft.Name,
			"image_url":   draft.ImageURL,
			"duration":    draft.Duration,
			"price":       draft.Price,
			"user_rating": rating,
			"category_id": draft.CategoryID,
			"description": draft.Description, // nil becomes NULL
		})
		if err := scanExcursion(row, &exc); err != nil {
			return err
		}
		exc.CategoryName = categoryName

		dates, err := insertDates(ctx, tx, exc.ID, draft.Dates)
		if err != nil {
			return err
		}
		exc.Dates = dates
		exc.Reviews = []domain.Review{}
		return nil
	})
	if err != nil {
		return domain.Excursion{}, fmt.Errorf("repo.ExcursionRepo.Create: %w", err)
	}
	return exc, nil
}

func (r *pgExcursionRepo) GetByID(ctx context.Context, id int64) (domain.Excursion, error) {
	const q = `
		SELECT e.id, e.name, e.image_url, e.duration::text, e.price, e.user_rating,
		       e.category_id, e.description, c.name AS category_name
		FROM excursions e
		JOIN categories c ON c.id = e.category_id
		WHERE e.id = @id`

	var exc domain.Excursion
	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	if err := scanExcursionWithCategory(row, &exc); err != nil {
		return domain.Excursion{}, fmt.Errorf("repo.ExcursionRepo.GetByID: %w", err)
	}

	dates, err := listDates(ctx, r.db, id)
	if err != nil {
		return domain.Excursion{}, fmt.Errorf("repo.ExcursionRepo.GetByID: %w", err)
	}
	exc.Dates = dates
	exc.Reviews = []domain.Review{}
	return exc, nil
}

func (r *pgExcursionRepo) Update(ctx context.Context, id int64, patch domain.ExcursionPatch) (domain.Excursion, error) {
	var exc domain.Excursion

	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		// Lock the aggregate for the duration of the unit of work. The
		// snapshot-then-diff reconciliation below is a check-then-act
		// sequence; without the lock two concurrent edits could each diff
		// against a stale snapshot and silently resurrect or drop rows.
		err := tx.QueryRow(ctx,
			`SELECT id FROM excursions WHERE id = @id FOR UPDATE`,
			pgx.NamedArgs{"id": id},
		).Scan(&id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}

		if err := applyScalarPatch(ctx, tx, id, patch); err != nil {
			return err
		}
		if patch.Dates != nil {
			if err := reconcileDates(ctx, tx, id, *patch.Dates); err != nil {
				return err
			}
		}

		const q = `
			SELECT e.id, e.name, e.image_url, e.duration::text, e.price, e.user_rating,
			       e.category_id, e.description, c.name AS category_name
			FROM excursions e
			JOIN categories c ON c.id = e.category_id
			WHERE e.id = @id`
		if err := scanExcursionWithCategory(tx.QueryRow(ctx, q, pgx.NamedArgs{"id": id}), &exc); err != nil {
			return err
		}

		dates, err := listDates(ctx, tx, id)
		if err != nil {
			return err
		}
		exc.Dates = dates
		exc.Reviews = []domain.Review{}
		return nil
	})
	if err != nil {
		return domain.Excursion{}, fmt.Errorf("repo.ExcursionRepo.Update: %w", err)
	}
	return exc, nil
}

func (r *pgExcursionRepo) Delete(ctx context.Context, id int64) (domain.Excursion, error) {
	const q = `
		DELETE FROM excursions
		WHERE id = @id
		RETURNING id, name, image_url, duration::text, price, user_rating, category_id, description`

	var exc domain.Excursion
	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	if err := scanExcursion(row, &exc); err != nil {
		return domain.Excursion{}, fmt.Errorf("repo.ExcursionRepo.Delete: %w", err)
	}
	exc.Dates = []domain.ExcursionDate{}
	exc.Reviews = []domain.Review{}
	return exc, nil
}

// applyScalarPatch updates only the fields present in the patch. Absent
// fields never reach the SET clause, so they are never overwritten with
// NULL. A patch with no scalar fields is a no-op.
func applyScalarPatch(ctx context.Context, tx pgx.Tx, id int64, patch domain.ExcursionPatch) error {
	set := []string{}
	args := pgx.NamedArgs{"id": id}

	if patch.Name != nil {
		set = append(set, "name = @name")
		args["name"] = *patch.Name
	}
	if patch.ImageURL != nil {
		set = append(set, "image_url = @image_url")
		args["image_url"] = *patch.ImageURL
	}
	if patch.Duration != nil {
		set = append(set, "duration = @duration")
		args["duration"] = *patch.Duration
	}
	if patch.Price != nil {
		set = append(set, "price = @price")
		args["price"] = *patch.Price
	}
	if patch.UserRating != nil {
		set = append(set, "user_rating = @user_rating")
		args["user_rating"] = *patch.UserRating
	}
	if patch.CategoryID != nil {
		set = append(set, "category_id = @category_id")
		args["category_id"] = *patch.CategoryID
	}
	if patch.Description != nil {
		set = append(set, "description = @description")
		args["description"] = *patch.Description
	}
	if len(set) == 0 {
		return nil
	}

	q := `UPDATE excursions SET ` + strings.Join(set, ", ") + ` WHERE id = @id`
	if _, err := tx.Exec(ctx, q, args); err != nil {
		return mapFKViolation(err)
	}
	return nil
}

// reconcileDates diffs the payload against the stored date set, keyed by ID:
//
//  1. snapshot the IDs currently owned by the excursion
//  2. split the payload into update candidates (positive ID) and insert
//     candidates (no ID)
//  3. delete owned IDs absent from the update candidates
//  4. overwrite date/time on each update candidate's row
//  5. insert each insert candidate bound to this excursion
//
// The caller runs this inside the aggregate's locked transaction.
func reconcileDates(ctx context.Context, tx pgx.Tx, excursionID int64, entries []domain.DateEntry) error {
	rows, err := tx.Query(ctx,
		`SELECT id FROM excursion_dates WHERE excursion_id = @excursion_id`,
		pgx.NamedArgs{"excursion_id": excursionID})
	if err != nil {
		return err
	}
	owned := map[int64]bool{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		owned[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	var updates, inserts []domain.DateEntry
	keep := map[int64]bool{}
	for _, e := range entries {
		if e.ID > 0 {
			updates = append(updates, e)
			keep[e.ID] = true
		} else {
			inserts = append(inserts, e)
		}
	}

	for id := range owned {
		if keep[id] {
			continue
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM excursion_dates WHERE id = @id AND excursion_id = @excursion_id`,
			pgx.NamedArgs{"id": id, "excursion_id": excursionID}); err != nil {
			return err
		}
	}

	for _, e := range updates {
		tag, err := tx.Exec(ctx,
			`UPDATE excursion_dates SET date = @date, time = @time
			 WHERE id = @id AND excursion_id = @excursion_id`,
			pgx.NamedArgs{"id": e.ID, "excursion_id": excursionID, "date": e.Date, "time": e.Time})
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("date %d: %w", e.ID, domain.ErrNotFound)
		}
	}

	if _, err := insertDates(ctx, tx, excursionID, inserts); err != nil {
		return err
	}
	return nil
}

// insertDates bulk-inserts one row per entry, each stamped with excursionID,
// and returns the created rows in insertion order. An empty slice inserts
// nothing and returns an empty list.
func insertDates(ctx context.Context, tx pgx.Tx, excursionID int64, entries []domain.DateEntry) ([]domain.ExcursionDate, error) {
	dates := make([]domain.ExcursionDate, 0, len(entries))
	if len(entries) == 0 {
		return dates, nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO excursion_dates (excursion_id, date, time) VALUES `)
	args := make([]any, 0, len(entries)*3)
	for i, e := range entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "($%d, $%d, $%d)", i*3+1, i*3+2, i*3+3)
		args = append(args, excursionID, e.Date, e.Time)
	}
	sb.WriteString(` RETURNING id, excursion_id, date::text, time::text`)

	rows, err := tx.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var d domain.ExcursionDate
		if err := rows.Scan(&d.ID, &d.ExcursionID, &d.Date, &d.Time); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dates, nil
}

// listDates returns all dates owned by an excursion, ordered by id so the
// result is deterministic across reads.
func listDates(ctx context.Context, d db, excursionID int64) ([]domain.ExcursionDate, error) {
	const q = `
		SELECT id, excursion_id, date::text, time::text
		FROM excursion_dates
		WHERE excursion_id = @excursion_id
		ORDER BY id`

	rows, err := d.Query(ctx, q, pgx.NamedArgs{"excursion_id": excursionID})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := []domain.ExcursionDate{}
	for rows.Next() {
		var ed domain.ExcursionDate
		if err := rows.Scan(&ed.ID, &ed.ExcursionID, &ed.Date, &ed.Time); err != nil {
			return nil, err
		}
		dates = append(dates, ed)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dates, nil
}

// scanExcursion maps a row without category name into a domain.Excursion.
func scanExcursion(s scanner, exc *domain.Excursion) error {
	err := s.Scan(&exc.ID, &exc.Name, &exc.ImageURL, &exc.Duration,
		&exc.Price, &exc.UserRating, &exc.CategoryID, &exc.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

// scanExcursionWithCategory maps a row joined with categories.name.
func scanExcursionWithCategory(s scanner, exc *domain.Excursion) error {
	err := s.Scan(&exc.ID, &exc.Name, &exc.ImageURL, &exc.Duration,
		&exc.Price, &exc.UserRating, &exc.CategoryID, &exc.Description,
		&exc.CategoryName)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}
