package response

import "github.com/vietanh2810/event-hub/internal/domain"

type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type JoinResponse struct {
	EventID uint `json:"event_id"`
	Joined  bool `json:"joined"`
	// Created is false when the user already participated.
	Created bool `json:"created"`
}

type SetOrganizerResponse struct {
	Updated     int64 `json:"updated"`
	IsOrganizer bool  `json:"is_organizer"`
}

// Pages as rendered by the listing endpoints. Named so the API docs can
// reference them.
type (
	EventPage       = domain.Page[domain.Event]
	UserStatsPage   = domain.Page[domain.UserStats]
	UserPage        = domain.Page[domain.User]
	ParticipantPage = domain.Page[domain.Participant]
	FeedbackPage    = domain.Page[domain.Feedback]
)
