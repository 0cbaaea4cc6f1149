package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vietanh2810/event-hub/internal/domain"
)

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	Update(ctx context.Context, event domain.Event) (domain.Event, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter domain.EventFilter, page, perPage int) (domain.Page[domain.Event], error)
	Count(ctx context.Context) (int64, error)
	CountByOrganizer(ctx context.Context, organizerID uint) (int64, error)
	CountOrganizers(ctx context.Context) (int64, error)
	Join(ctx context.Context, eventID, userID uint, guard func(domain.Event) error) (bool, error)
	IsParticipant(ctx context.Context, eventID, userID uint) (bool, error)
	ListParticipants(ctx context.Context, eventID uint) ([]domain.Participant, error)
	CreateFeedback(ctx context.Context, feedback domain.Feedback) (domain.Feedback, error)
	ListFeedback(ctx context.Context, eventID uint) ([]domain.Feedback, error)
	Ratings(ctx context.Context, eventID uint) ([]int, error)
}

type UserCounter interface {
	Count(ctx context.Context) (int64, error)
}

type EventService struct {
	repo     EventRepository
	users    UserCounter
	pageSize int
	now      func() time.Time
}

func NewEventService(repo EventRepository, users UserCounter, pageSize int) *EventService {
	return &EventService{
		repo:     repo,
		users:    users,
		pageSize: pageSize,
		now:      time.Now,
	}
}

func (s *EventService) ListEvents(ctx context.Context, filter domain.EventFilter, page int) (domain.Page[domain.Event], error) {
	if err := checkPage(page, s.pageSize); err != nil {
		return domain.Page[domain.Event]{}, err
	}

	events, err := s.repo.List(ctx, filter, page, s.pageSize)
	if err != nil {
		return domain.Page[domain.Event]{}, fmt.Errorf("s.repo.List -> %w", err)
	}

	return events, nil
}

// GetEvent returns the event as seen by actor, with the actions actor may take.
func (s *EventService) GetEvent(ctx context.Context, actor domain.User, id uint) (domain.EventDetail, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.EventDetail{}, fmt.Errorf("s.repo.FindByID -> %w", notFound(err))
	}

	ratings, err := s.repo.Ratings(ctx, id)
	if err != nil {
		return domain.EventDetail{}, fmt.Errorf("s.repo.Ratings -> %w", err)
	}
	event.AverageRating = domain.AverageRating(ratings)

	participants, err := s.repo.ListParticipants(ctx, id)
	if err != nil {
		return domain.EventDetail{}, fmt.Errorf("s.repo.ListParticipants -> %w", err)
	}

	isParticipant, err := s.repo.IsParticipant(ctx, id, actor.ID)
	if err != nil {
		return domain.EventDetail{}, fmt.Errorf("s.repo.IsParticipant -> %w", err)
	}

	return domain.EventDetail{
		Event:            event,
		Participants:     participants,
		IsParticipant:    isParticipant,
		CanEdit:          domain.CanUpdateEvent(actor, event),
		CanDelete:        domain.CanDeleteEvent(actor, event),
		CanJoin:          !isParticipant && domain.CanJoinEvent(event),
		CanLeaveFeedback: domain.CanSubmitFeedback(event, s.now()),
	}, nil
}

// CreateEvent stores event with actor as its organizer.
func (s *EventService) CreateEvent(ctx context.Context, actor domain.User, event domain.Event) (domain.Event, error) {
	if actor.ID == 0 {
		return domain.Event{}, ErrNotAuthenticated
	}
	if !domain.CanCreateEvent(actor) {
		return domain.Event{}, ErrNotAuthorized
	}
	if err := event.Validate(); err != nil {
		return domain.Event{}, domain.ValidationError(err)
	}

	event.ID = 0
	event.OrganizerID = actor.ID

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}
	zap.L().Info("event created", zap.Uint("event_id", created.ID), zap.Uint("organizer_id", actor.ID))

	return created, nil
}

// UpdateEvent replaces the editable fields of an event. The organizer is
// always the stored one, whatever changes carries.
func (s *EventService) UpdateEvent(ctx context.Context, actor domain.User, id uint, changes domain.Event) (domain.Event, error) {
	if actor.ID == 0 {
		return domain.Event{}, ErrNotAuthenticated
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", notFound(err))
	}
	if !domain.CanUpdateEvent(actor, existing) {
		return domain.Event{}, ErrNotAuthorized
	}

	existing.Title = changes.Title
	existing.Description = changes.Description
	existing.Date = changes.Date
	existing.Location = changes.Location
	existing.MaxParticipants = changes.MaxParticipants
	if err := existing.Validate(); err != nil {
		return domain.Event{}, domain.ValidationError(err)
	}

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Update -> %w", notFound(err))
	}

	return updated, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, actor domain.User, id uint) error {
	if actor.ID == 0 {
		return ErrNotAuthenticated
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", notFound(err))
	}
	if !domain.CanDeleteEvent(actor, existing) {
		return ErrNotAuthorized
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", notFound(err))
	}
	zap.L().Info("event deleted", zap.Uint("event_id", id), zap.Uint("actor_id", actor.ID))

	return nil
}

// JoinEvent registers actor for the event. Joining twice is not an error;
// joined reports whether a new participant record was created.
func (s *EventService) JoinEvent(ctx context.Context, actor domain.User, id uint) (joined bool, err error) {
	if actor.ID == 0 {
		return false, ErrNotAuthenticated
	}

	joined, err = s.repo.Join(ctx, id, actor.ID, func(event domain.Event) error {
		if !domain.CanJoinEvent(event) {
			return ErrEventFull
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("s.repo.Join -> %w", notFound(err))
	}

	return joined, nil
}

// SubmitFeedback checks the feedback window before the form fields, so the
// caller can tell the two failures apart.
func (s *EventService) SubmitFeedback(ctx context.Context, actor domain.User, eventID uint, feedback domain.Feedback) (domain.Feedback, error) {
	if actor.ID == 0 {
		return domain.Feedback{}, ErrNotAuthenticated
	}

	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return domain.Feedback{}, fmt.Errorf("s.repo.FindByID -> %w", notFound(err))
	}
	if !domain.CanSubmitFeedback(event, s.now()) {
		return domain.Feedback{}, ErrFeedbackWindowNotOpen
	}
	if err := feedback.Validate(); err != nil {
		return domain.Feedback{}, domain.ValidationError(err)
	}

	feedback.ID = 0
	feedback.UserID = actor.ID
	feedback.Username = actor.Username
	feedback.EventID = event.ID
	feedback.EventTitle = event.Title

	created, err := s.repo.CreateFeedback(ctx, feedback)
	if err != nil {
		return domain.Feedback{}, fmt.Errorf("s.repo.CreateFeedback -> %w", err)
	}

	return created, nil
}

func (s *EventService) ListFeedback(ctx context.Context, eventID uint) ([]domain.Feedback, error) {
	if _, err := s.repo.FindByID(ctx, eventID); err != nil {
		return nil, fmt.Errorf("s.repo.FindByID -> %w", notFound(err))
	}

	feedback, err := s.repo.ListFeedback(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListFeedback -> %w", err)
	}

	return feedback, nil
}

func (s *EventService) Dashboard(ctx context.Context, actor domain.User) (domain.Dashboard, error) {
	var (
		d   domain.Dashboard
		err error
	)

	if d.NumEvents, err = s.repo.Count(ctx); err != nil {
		return domain.Dashboard{}, fmt.Errorf("s.repo.Count -> %w", err)
	}
	if d.NumUsers, err = s.users.Count(ctx); err != nil {
		return domain.Dashboard{}, fmt.Errorf("s.users.Count -> %w", err)
	}
	if d.NumOrganizers, err = s.repo.CountOrganizers(ctx); err != nil {
		return domain.Dashboard{}, fmt.Errorf("s.repo.CountOrganizers -> %w", err)
	}
	if d.NumMyEvents, err = s.repo.CountByOrganizer(ctx, actor.ID); err != nil {
		return domain.Dashboard{}, fmt.Errorf("s.repo.CountByOrganizer -> %w", err)
	}

	return d, nil
}
