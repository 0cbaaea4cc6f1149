package repository

import (
	"context"
	"fmt"

	"github.com/vietanh2810/event-hub/internal/domain"
	"github.com/vietanh2810/event-hub/internal/repository/dao"
)

var (
	ErrEventNotFound = dao.ErrEventNotFound
)

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByID(ctx context.Context, id uint) (dao.EventStats, error)
	Update(ctx context.Context, event dao.Event) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter dao.EventFilter, limit, offset int) ([]dao.EventStats, int64, error)
	ListRecent(ctx context.Context, filter dao.EventFilter, limit, offset int) ([]dao.EventStats, int64, error)
	Count(ctx context.Context) (int64, error)
	CountByOrganizer(ctx context.Context, organizerID uint) (int64, error)
	CountOrganizers(ctx context.Context) (int64, error)
}

type ParticipantDAO interface {
	Join(ctx context.Context, eventID, userID uint, guard dao.JoinGuard) (bool, error)
	IsParticipant(ctx context.Context, eventID, userID uint) (bool, error)
	ListByEvent(ctx context.Context, eventID uint) ([]dao.ParticipantRow, error)
	List(ctx context.Context, filter dao.ParticipantFilter, limit, offset int) ([]dao.ParticipantRow, int64, error)
}

type FeedbackDAO interface {
	Insert(ctx context.Context, feedback dao.Feedback) (dao.Feedback, error)
	ListByEvent(ctx context.Context, eventID uint) ([]dao.FeedbackRow, error)
	List(ctx context.Context, filter dao.FeedbackFilter, limit, offset int) ([]dao.FeedbackRow, int64, error)
	Ratings(ctx context.Context, eventID uint) ([]int, error)
}

type EventRepository struct {
	events       EventDAO
	participants ParticipantDAO
	feedback     FeedbackDAO
}

func NewEventRepository(events EventDAO, participants ParticipantDAO, feedback FeedbackDAO) *EventRepository {
	return &EventRepository{
		events:       events,
		participants: participants,
		feedback:     feedback,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.events.Insert(ctx, r.domainToDAO(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.events.Insert -> %w", err)
	}

	return r.FindByID(ctx, created.ID)
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (domain.Event, error) {
	found, err := r.events.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.events.FindByID -> %w", err)
	}

	return r.statsToDomain(found), nil
}

func (r *EventRepository) Update(ctx context.Context, event domain.Event) (domain.Event, error) {
	if err := r.events.Update(ctx, r.domainToDAO(event)); err != nil {
		return domain.Event{}, fmt.Errorf("r.events.Update -> %w", err)
	}

	return r.FindByID(ctx, event.ID)
}

func (r *EventRepository) Delete(ctx context.Context, id uint) error {
	if err := r.events.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.events.Delete -> %w", err)
	}

	return nil
}

func (r *EventRepository) List(ctx context.Context, filter domain.EventFilter, page, perPage int) (domain.Page[domain.Event], error) {
	rows, total, err := r.events.List(ctx, r.filterToDAO(filter), perPage, domain.Offset(page, perPage))
	if err != nil {
		return domain.Page[domain.Event]{}, fmt.Errorf("r.events.List -> %w", err)
	}

	return domain.NewPage(r.statsListToDomain(rows), page, perPage, total), nil
}

func (r *EventRepository) ListRecent(ctx context.Context, filter domain.EventFilter, page, perPage int) (domain.Page[domain.Event], error) {
	rows, total, err := r.events.ListRecent(ctx, r.filterToDAO(filter), perPage, domain.Offset(page, perPage))
	if err != nil {
		return domain.Page[domain.Event]{}, fmt.Errorf("r.events.ListRecent -> %w", err)
	}

	return domain.NewPage(r.statsListToDomain(rows), page, perPage, total), nil
}

func (r *EventRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.events.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.events.Count -> %w", err)
	}

	return n, nil
}

func (r *EventRepository) CountByOrganizer(ctx context.Context, organizerID uint) (int64, error) {
	n, err := r.events.CountByOrganizer(ctx, organizerID)
	if err != nil {
		return 0, fmt.Errorf("r.events.CountByOrganizer -> %w", err)
	}

	return n, nil
}

func (r *EventRepository) CountOrganizers(ctx context.Context) (int64, error) {
	n, err := r.events.CountOrganizers(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.events.CountOrganizers -> %w", err)
	}

	return n, nil
}

// Join adds userID to eventID. guard sees the locked event with its current
// participant count and may veto the join.
func (r *EventRepository) Join(ctx context.Context, eventID, userID uint, guard func(domain.Event) error) (bool, error) {
	created, err := r.participants.Join(ctx, eventID, userID, func(event dao.EventStats) error {
		return guard(r.statsToDomain(event))
	})
	if err != nil {
		return false, fmt.Errorf("r.participants.Join -> %w", err)
	}

	return created, nil
}

func (r *EventRepository) IsParticipant(ctx context.Context, eventID, userID uint) (bool, error) {
	ok, err := r.participants.IsParticipant(ctx, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("r.participants.IsParticipant -> %w", err)
	}

	return ok, nil
}

func (r *EventRepository) ListParticipants(ctx context.Context, eventID uint) ([]domain.Participant, error) {
	rows, err := r.participants.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.participants.ListByEvent -> %w", err)
	}

	return r.participantsToDomain(rows), nil
}

func (r *EventRepository) ListAllParticipants(ctx context.Context, filter domain.ParticipantFilter, page, perPage int) (domain.Page[domain.Participant], error) {
	rows, total, err := r.participants.List(ctx, dao.ParticipantFilter{
		EventID:     filter.EventID,
		IsConfirmed: filter.IsConfirmed,
		Search:      filter.Search,
	}, perPage, domain.Offset(page, perPage))
	if err != nil {
		return domain.Page[domain.Participant]{}, fmt.Errorf("r.participants.List -> %w", err)
	}

	return domain.NewPage(r.participantsToDomain(rows), page, perPage, total), nil
}

func (r *EventRepository) CreateFeedback(ctx context.Context, feedback domain.Feedback) (domain.Feedback, error) {
	created, err := r.feedback.Insert(ctx, dao.Feedback{
		UserID:  feedback.UserID,
		EventID: feedback.EventID,
		Rating:  feedback.Rating,
		Comment: feedback.Comment,
	})
	if err != nil {
		return domain.Feedback{}, fmt.Errorf("r.feedback.Insert -> %w", err)
	}

	feedback.ID = created.ID
	feedback.CreatedAt = created.CreatedAt

	return feedback, nil
}

func (r *EventRepository) ListFeedback(ctx context.Context, eventID uint) ([]domain.Feedback, error) {
	rows, err := r.feedback.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.feedback.ListByEvent -> %w", err)
	}

	return r.feedbackToDomain(rows), nil
}

func (r *EventRepository) ListAllFeedback(ctx context.Context, filter domain.FeedbackFilter, page, perPage int) (domain.Page[domain.Feedback], error) {
	rows, total, err := r.feedback.List(ctx, dao.FeedbackFilter{
		EventID: filter.EventID,
		Rating:  filter.Rating,
		Search:  filter.Search,
	}, perPage, domain.Offset(page, perPage))
	if err != nil {
		return domain.Page[domain.Feedback]{}, fmt.Errorf("r.feedback.List -> %w", err)
	}

	return domain.NewPage(r.feedbackToDomain(rows), page, perPage, total), nil
}

func (r *EventRepository) Ratings(ctx context.Context, eventID uint) ([]int, error) {
	ratings, err := r.feedback.Ratings(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.feedback.Ratings -> %w", err)
	}

	return ratings, nil
}

func (r *EventRepository) filterToDAO(f domain.EventFilter) dao.EventFilter {
	return dao.EventFilter{
		Title:    f.Title,
		Search:   f.Search,
		Location: f.Location,
	}
}

func (r *EventRepository) domainToDAO(e domain.Event) dao.Event {
	return dao.Event{
		ID:              e.ID,
		Title:           e.Title,
		Description:     e.Description,
		Date:            e.Date,
		Location:        e.Location,
		MaxParticipants: e.MaxParticipants,
		OrganizerID:     e.OrganizerID,
	}
}

func (r *EventRepository) statsToDomain(e dao.EventStats) domain.Event {
	return domain.Event{
		ID:                e.ID,
		Title:             e.Title,
		Description:       e.Description,
		Date:              e.Date,
		CreatedAt:         e.CreatedAt,
		Location:          e.Location,
		MaxParticipants:   e.MaxParticipants,
		OrganizerID:       e.OrganizerID,
		OrganizerUsername: e.OrganizerUsername,
		ParticipantCount:  e.ParticipantCount,
		AverageRating:     e.AverageRating,
	}
}

func (r *EventRepository) statsListToDomain(rows []dao.EventStats) []domain.Event {
	events := make([]domain.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, r.statsToDomain(row))
	}

	return events
}

func (r *EventRepository) participantsToDomain(rows []dao.ParticipantRow) []domain.Participant {
	participants := make([]domain.Participant, 0, len(rows))
	for _, p := range rows {
		participants = append(participants, domain.Participant{
			ID:          p.ID,
			UserID:      p.UserID,
			Username:    p.Username,
			EventID:     p.EventID,
			EventTitle:  p.EventTitle,
			IsConfirmed: p.IsConfirmed,
			CreatedAt:   p.CreatedAt,
		})
	}

	return participants
}

func (r *EventRepository) feedbackToDomain(rows []dao.FeedbackRow) []domain.Feedback {
	feedback := make([]domain.Feedback, 0, len(rows))
	for _, f := range rows {
		feedback = append(feedback, domain.Feedback{
			ID:         f.ID,
			UserID:     f.UserID,
			Username:   f.Username,
			EventID:    f.EventID,
			EventTitle: f.EventTitle,
			Rating:     f.Rating,
			Comment:    f.Comment,
			CreatedAt:  f.CreatedAt,
		})
	}

	return feedback
}
