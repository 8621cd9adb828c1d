package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/mutemutemute/excursions/internal/domain"
)

// SearchQuery defines the optional filters for the public excursion listing.
// Name matches the excursion name case-insensitively as a substring. Date
// matches the text rendering of any scheduled date, so a bare year or a
// "year-month" fragment qualifies an excursion through any one of its dates.
// When both are set an excursion must satisfy both, through any date.
type SearchQuery struct {
	Name string
	Date string
}

// ExcursionSearch builds the filtered, paginated, aggregated read query for
// listing excursions and computes a matching total count over the same
// predicate. The count is taken over distinct excursions so the one-to-many
// joins never inflate it.
type ExcursionSearch interface {
	// Search returns one page of excursions — each with category name and
	// de-duplicated date and review sub-lists — plus the total number of
	// distinct excursions matching the filters before pagination.
	Search(ctx context.Context, q SearchQuery, page domain.PageParams) ([]domain.Excursion, int64, error)
}

// pgExcursionSearch is the Postgres implementation of ExcursionSearch.
type pgExcursionSearch struct {
	db db
}

// NewExcursionSearch constructs an ExcursionSearch backed by the provided db.
func NewExcursionSearch(db db) ExcursionSearch {
	return &pgExcursionSearch{db: db}
}

func (r *pgExcursionSearch) Search(ctx context.Context, q SearchQuery, page domain.PageParams) ([]domain.Excursion, int64, error) {
	where := []string{}
	args := pgx.NamedArgs{}

	if q.Name != "" {
		where = append(where, `e.name ILIKE '%' || @name || '%'`)
		args["name"] = q.Name
	}
	if q.Date != "" {
		// An excursion qualifies when any of its dates matches; using EXISTS
		// keeps the filter independent of the aggregation joins below.
		where = append(where, `EXISTS (
			SELECT 1 FROM excursion_dates d
			WHERE d.excursion_id = e.id AND d.date::text ILIKE '%' || @date || '%')`)
		args["date"] = q.Date
	}

	cond := "TRUE"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	// Count and listing are independent statements over the same predicate,
	// executed inside the same read. COUNT(DISTINCT ...) guards against any
	// future fan-out in the predicate itself.
	var total int64
	countSQL := `SELECT COUNT(DISTINCT e.id) FROM excursions e WHERE ` + cond
	if err := r.db.QueryRow(ctx, countSQL, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ExcursionSearch.Search: count: %w", err)
	}

	// jsonb_agg(DISTINCT ...) collapses the row multiplication caused by
	// joining dates and reviews at the same time; FILTER plus COALESCE turns
	// "no children" into an empty list instead of [null] or a missing row.
	dataSQL := `
		SELECT e.id, e.name, e.image_url, e.duration::text, e.price, e.user_rating,
		       e.category_id, e.description, c.name AS category_name,
		       COALESCE(jsonb_agg(DISTINCT jsonb_build_object(
		           'id', ed.id, 'excursion_id', ed.excursion_id,
		           'date', ed.date::text, 'time', ed.time::text
		       )) FILTER (WHERE ed.id IS NOT NULL), '[]') AS dates,
		       COALESCE(jsonb_agg(DISTINCT jsonb_build_object(
		           'id', rv.id, 'excursion_id', rv.excursion_id, 'name', rv.name,
		           'user_id', rv.user_id, 'rating', rv.rating, 'comment', rv.comment,
		           'created_at', rv.created_at
		       )) FILTER (WHERE rv.id IS NOT NULL), '[]') AS reviews
		FROM excursions e
		JOIN categories c ON c.id = e.category_id
		LEFT JOIN excursion_dates ed ON ed.excursion_id = e.id
		LEFT JOIN reviews rv ON rv.excursion_id = e.id
		WHERE ` + cond + `
		GROUP BY e.id, c.name
		ORDER BY e.id ASC`

	if page.Bounded {
		dataSQL += ` LIMIT @limit OFFSET @offset`
		args["limit"] = page.Limit
		args["offset"] = page.Offset
	}

	rows, err := r.db.Query(ctx, dataSQL, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ExcursionSearch.Search: %w", err)
	}
	defer rows.Close()

	excursions := []domain.Excursion{}
	for rows.Next() {
		var (
			exc         domain.Excursion
			datesJSON   []byte
			reviewsJSON []byte
		)
		err := rows.Scan(&exc.ID, &exc.Name, &exc.ImageURL, &exc.Duration,
			&exc.Price, &exc.UserRating, &exc.CategoryID, &exc.Description,
			&exc.CategoryName, &datesJSON, &reviewsJSON)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.ExcursionSearch.Search: scan: %w", err)
		}
		if err := json.Unmarshal(datesJSON, &exc.Dates); err != nil {
			return nil, 0, fmt.Errorf("repo.ExcursionSearch.Search: dates: %w", err)
		}
		if err := json.Unmarshal(reviewsJSON, &exc.Reviews); err != nil {
			return nil, 0, fmt.Errorf("repo.ExcursionSearch.Search: reviews: %w", err)
		}
		excursions = append(excursions, exc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.ExcursionSearch.Search: rows: %w", err)
	}
	return excursions, total, nil
}
