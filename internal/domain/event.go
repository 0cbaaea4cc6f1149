package domain

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type Event struct {
	ID                uint       `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Date              *time.Time `json:"date"`
	CreatedAt         time.Time  `json:"created_at"`
	Location          string     `json:"location"`
	MaxParticipants   int        `json:"max_participants"`
	OrganizerID       uint       `json:"organizer_id"`
	OrganizerUsername string     `json:"organizer_username,omitempty"`
	ParticipantCount  int64      `json:"participant_count"`
	AverageRating     float64    `json:"average_rating"`
}

func (e Event) Validate() error {
	return validation.ValidateStruct(
		&e,
		validation.Field(&e.Title, validation.Required, validation.RuneLength(1, 255)),
		validation.Field(&e.Description, validation.Required),
		validation.Field(&e.Location, validation.Required, validation.RuneLength(1, 255)),
		validation.Field(&e.MaxParticipants, validation.Required, validation.Min(1)),
	)
}

// EventDetail is an event seen by a particular user.
type EventDetail struct {
	Event
	Participants     []Participant `json:"participants"`
	IsParticipant    bool          `json:"is_participant"`
	CanEdit          bool          `json:"can_edit"`
	CanDelete        bool          `json:"can_delete"`
	CanJoin          bool          `json:"can_join"`
	CanLeaveFeedback bool          `json:"can_leave_feedback"`
}

type EventFilter struct {
	Title    string
	Search   string
	Location string
}

type Dashboard struct {
	NumEvents     int64 `json:"num_events"`
	NumUsers      int64 `json:"num_users"`
	NumOrganizers int64 `json:"num_organizers"`
	NumMyEvents   int64 `json:"num_my_events"`
}
