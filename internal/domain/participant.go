package domain

import "time"

type Participant struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	Username    string    `json:"username,omitempty"`
	EventID     uint      `json:"event_id"`
	EventTitle  string    `json:"event_title,omitempty"`
	IsConfirmed bool      `json:"is_confirmed"`
	CreatedAt   time.Time `json:"created_at"`
}

type ParticipantFilter struct {
	EventID     *uint
	IsConfirmed *bool
	Search      string
}
