package domain

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	MinRating = 1
	MaxRating = 10
)

type Feedback struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	EventID    uint      `json:"event_id"`
	EventTitle string    `json:"event_title,omitempty"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

func (f Feedback) Validate() error {
	return validation.ValidateStruct(
		&f,
		validation.Field(&f.Rating, validation.Required, validation.Min(MinRating), validation.Max(MaxRating)),
		validation.Field(&f.Comment, validation.Required, validation.By(notBlank)),
	)
}

type FeedbackFilter struct {
	EventID *uint
	Rating  *int
	Search  string
}
