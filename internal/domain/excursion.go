// Package domain contains the core data types for the excursions API.
// This package has zero external dependencies and is imported by every other
// internal package (repo, service, handler).
package domain

// Category is immutable reference data; excursions point to it by ID.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Excursion is the top-level aggregate; excursion dates belong to it and are
// created, edited, and removed only together with their parent.
// Dates and Reviews are always non-nil on aggregate reads — an excursion
// without either carries an empty slice, never null.
type Excursion struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	ImageURL    string  `json:"image_url"`
	Duration    string  `json:"duration"` // time-of-day interval, "15:04:05"
	Price       int64   `json:"price"`
	UserRating  int     `json:"user_rating"` // 0–5, defaults to 0
	CategoryID  int64   `json:"category_id"`
	Description *string `json:"description,omitempty"`

	CategoryName string          `json:"category_name,omitempty"` // joined from categories
	Dates        []ExcursionDate `json:"dates"`
	Reviews      []Review        `json:"reviews,omitempty"`
}

// ExcursionDate is one scheduled occurrence of an excursion.
// Date and Time are the text renderings of the stored DATE and TIME columns
// ("2006-01-02" and "15:04:05"); the search date filter is defined over the
// text rendering, so the domain carries the same shape.
type ExcursionDate struct {
	ID          int64  `json:"id"`
	ExcursionID int64  `json:"excursion_id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// DateEntry is one {date, time} pair in a create or update payload.
// ID is zero for entries that do not exist yet; a positive ID targets an
// existing row during reconciliation.
type DateEntry struct {
	ID   int64  `json:"id,omitempty"`
	Date string `json:"date"`
	Time string `json:"time"`
}

// ExcursionDraft is the input for creating an excursion together with its
// scheduled dates. UserRating is optional and defaults to 0.
type ExcursionDraft struct {
	Name        string      `json:"name"`
	ImageURL    string      `json:"image_url"`
	Duration    string      `json:"duration"`
	Price       int64       `json:"price"`
	UserRating  *int        `json:"user_rating,omitempty"`
	CategoryID  int64       `json:"category_id"`
	Description *string     `json:"description,omitempty"`
	Dates       []DateEntry `json:"dates"`
}

// ExcursionPatch is a partial update. Nil fields are left untouched — they
// are never overwritten with zero values. A non-nil Dates pointer replaces
// the owned date set via id-keyed reconciliation (an empty list deletes all
// dates); a nil pointer leaves the dates alone.
type ExcursionPatch struct {
	Name        *string      `json:"name,omitempty"`
	ImageURL    *string      `json:"image_url,omitempty"`
	Duration    *string      `json:"duration,omitempty"`
	Price       *int64       `json:"price,omitempty"`
	UserRating  *int         `json:"user_rating,omitempty"`
	CategoryID  *int64       `json:"category_id,omitempty"`
	Description *string      `json:"description,omitempty"`
	Dates       *[]DateEntry `json:"dates,omitempty"`
}

// Empty reports whether the patch carries no changes at all.
func (p ExcursionPatch) Empty() bool {
	return p.Name == nil && p.ImageURL == nil && p.Duration == nil &&
		p.Price == nil && p.UserRating == nil && p.CategoryID == nil &&
		p.Description == nil && p.Dates == nil
}
