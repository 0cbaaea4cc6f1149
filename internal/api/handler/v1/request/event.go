package request

import (
	"math"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/vietanh2810/event-hub/internal/domain"
)

// EventRequest is the body of event create and update calls. Field rules
// live on domain.Event.
type EventRequest struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Date            *time.Time `json:"date" example:"2024-06-01T18:00:00Z"`
	Location        string     `json:"location"`
	MaxParticipants int        `json:"max_participants"`
}

func (req *EventRequest) ToDomain() domain.Event {
	return domain.Event{
		Title:           req.Title,
		Description:     req.Description,
		Date:            req.Date,
		Location:        req.Location,
		MaxParticipants: req.MaxParticipants,
	}
}

// FeedbackRequest accepts any JSON value for rating so that a malformed
// rating is reported by feedback validation, after the feedback window check.
type FeedbackRequest struct {
	Rating  any    `json:"rating" swaggertype:"integer"`
	Comment string `json:"comment"`
}

func (req *FeedbackRequest) ToDomain() domain.Feedback {
	return domain.Feedback{
		Rating:  wholeNumber(req.Rating),
		Comment: req.Comment,
	}
}

// wholeNumber returns 0, which no rating rule accepts, for anything but an
// integral JSON number.
func wholeNumber(v any) int {
	n, ok := v.(float64)
	if !ok || n != math.Trunc(n) || n < math.MinInt32 || n > math.MaxInt32 {
		return 0
	}
	return int(n)
}

type ProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (req *ProfileRequest) ToDomain() domain.ProfileUpdate {
	return domain.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
}

type SetOrganizerRequest struct {
	UserIDs     []uint `json:"user_ids"`
	IsOrganizer *bool  `json:"is_organizer"`
}

func (req *SetOrganizerRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.UserIDs, validation.Required),
		validation.Field(&req.IsOrganizer, validation.NotNil),
	)
}
