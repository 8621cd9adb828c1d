package domain

import "time"

// Review is a post-visit review bound to an existing excursion.
// Name is a user-supplied display name, not necessarily the account name.
// Comment is nil when the reviewer left none — stored as NULL, never "".
//
// Nothing prevents a user from reviewing the same excursion more than once;
// the original system permits it and so does this one.
type Review struct {
	ID          int64     `json:"id"`
	ExcursionID int64     `json:"excursion_id"`
	Name        string    `json:"name"`
	UserID      int64     `json:"user_id"`
	Rating      int       `json:"rating"` // 1–5
	Comment     *string   `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReviewDraft is the input for leaving a review. UserID is always the
// authenticated caller's id, never client-supplied.
type ReviewDraft struct {
	ExcursionID int64   `json:"excursion_id"`
	Name        string  `json:"name"`
	Rating      int     `json:"rating"`
	Comment     *string `json:"comment,omitempty"`
	UserID      int64   `json:"-"`
}
