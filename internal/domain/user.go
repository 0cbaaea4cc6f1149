package domain

import "time"

type User struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Password    string    `json:"-"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	IsOrganizer bool      `json:"is_organizer"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	IsActive    bool      `json:"is_active"`
	DateJoined  time.Time `json:"date_joined"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserStats is a user annotated with the events they organize.
type UserStats struct {
	User
	EventCount    int64   `json:"event_count"`
	AverageRating float64 `json:"average_rating"`
}

type UserFilter struct {
	Username    string
	Search      string
	IsOrganizer *bool
	IsStaff     *bool
}

// ProfileUpdate holds the only fields a user may change on their own account.
type ProfileUpdate struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
