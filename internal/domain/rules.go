package domain

import (
	"errors"
	"strings"
	"time"
)

// FeedbackDelay is how long after an event starts feedback becomes possible.
const FeedbackDelay = 24 * time.Hour

func CanCreateEvent(user User) bool {
	return user.IsOrganizer
}

// CanUpdateEvent reports whether user owns event.
func CanUpdateEvent(user User, event Event) bool {
	return user.ID != 0 && user.ID == event.OrganizerID
}

// CanDeleteEvent allows the owner and any staff member.
func CanDeleteEvent(user User, event Event) bool {
	return CanUpdateEvent(user, event) || user.IsStaff
}

// CanJoinEvent expects event.ParticipantCount to be the current number of
// participant records.
func CanJoinEvent(event Event) bool {
	return event.ParticipantCount < int64(event.MaxParticipants)
}

// CanSubmitFeedback is false for events without a date.
func CanSubmitFeedback(event Event, now time.Time) bool {
	if event.Date == nil {
		return false
	}
	return !now.Before(event.Date.Add(FeedbackDelay))
}

// AverageRating returns 0 when there are no ratings.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum int
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings))
}

var errBlank = errors.New("cannot be blank")

func notBlank(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errBlank
	}
	return nil
}
