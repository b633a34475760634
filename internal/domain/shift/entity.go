package shift

import "time"

// Shift is a named daily working window. StartTime and EndTime are wall
// clock values in "HH:MM" form and are interpreted in the business location.
type Shift struct {
	ID                  string
	Name                string
	StartTime           string
	EndTime             string
	EarlyCheckInMinutes int
	LateCheckoutMinutes int
	Deleted             bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
