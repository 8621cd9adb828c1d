package domain

import "time"

// RegistrationStatus enumerates the lifecycle states of a registration.
// The zero value is not valid; new registrations always start as Pending
// regardless of what the client supplied.
type RegistrationStatus string

const (
	StatusPending   RegistrationStatus = "Pending"
	StatusConfirmed RegistrationStatus = "Confirmed"
	StatusCanceled  RegistrationStatus = "Canceled"
	StatusClosed    RegistrationStatus = "Closed"
)

// Valid reports whether s is one of the four enumerated statuses.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCanceled, StatusClosed:
		return true
	}
	return false
}

// Registration links a user to one scheduled excursion date. The excursion
// itself is reachable transitively through the date and is not stored
// redundantly.
type Registration struct {
	ID              int64              `json:"id"`
	UserID          int64              `json:"user_id"`
	ExcursionDateID int64              `json:"excursion_date_id"`
	Status          RegistrationStatus `json:"status"`
	CreatedAt       time.Time          `json:"created_at"`
}

// RegistrationPatch carries the mutable fields of a registration update.
// Exactly one of the two may be set per call: admins change Status, the
// owning user changes ExcursionDateID. The service enforces the split.
type RegistrationPatch struct {
	Status          *RegistrationStatus `json:"status,omitempty"`
	ExcursionDateID *int64              `json:"excursion_date_id,omitempty"`
}

// RegistrationDetail is a registration joined with its excursion name,
// scheduled date/time, and the registering user's username and email.
// Returned by the admin and per-user list views.
type RegistrationDetail struct {
	ID              int64              `json:"id"`
	UserID          int64              `json:"user_id"`
	Username        string             `json:"username"`
	Email           string             `json:"email"`
	ExcursionDateID int64              `json:"excursion_date_id"`
	ExcursionID     int64              `json:"excursion_id"`
	ExcursionName   string             `json:"excursion_name"`
	Date            string             `json:"date"`
	Time            string             `json:"time"`
	Status          RegistrationStatus `json:"status"`
	CreatedAt       time.Time          `json:"created_at"`
}
