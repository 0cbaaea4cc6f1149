package service

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"github.com/vietanh2810/event-hub/internal/domain"
)

var errNoUsersSelected = errors.New("select at least one user")

type AdminUserRepository interface {
	SetOrganizer(ctx context.Context, ids []uint, isOrganizer bool) (int64, error)
	List(ctx context.Context, filter domain.UserFilter, page, perPage int) (domain.Page[domain.User], error)
}

type AdminEventRepository interface {
	ListRecent(ctx context.Context, filter domain.EventFilter, page, perPage int) (domain.Page[domain.Event], error)
	ListAllParticipants(ctx context.Context, filter domain.ParticipantFilter, page, perPage int) (domain.Page[domain.Participant], error)
	ListAllFeedback(ctx context.Context, filter domain.FeedbackFilter, page, perPage int) (domain.Page[domain.Feedback], error)
}

// AdminService backs the staff-only back office.
type AdminService struct {
	users    AdminUserRepository
	events   AdminEventRepository
	pageSize int
}

func NewAdminService(users AdminUserRepository, events AdminEventRepository, pageSize int) *AdminService {
	return &AdminService{
		users:    users,
		events:   events,
		pageSize: pageSize,
	}
}

func (s *AdminService) SetOrganizer(ctx context.Context, actor domain.User, ids []uint, isOrganizer bool) (int64, error) {
	if err := s.authorize(actor); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, domain.ValidationError(validation.Errors{"user_ids": errNoUsersSelected})
	}

	n, err := s.users.SetOrganizer(ctx, ids, isOrganizer)
	if err != nil {
		return 0, fmt.Errorf("s.users.SetOrganizer -> %w", err)
	}
	zap.L().Info("organizer flag changed",
		zap.Uint("actor_id", actor.ID),
		zap.Uints("user_ids", ids),
		zap.Bool("is_organizer", isOrganizer),
		zap.Int64("affected", n),
	)

	return n, nil
}

func (s *AdminService) ListUsers(ctx context.Context, actor domain.User, filter domain.UserFilter, page int) (domain.Page[domain.User], error) {
	if err := s.check(actor, page); err != nil {
		return domain.Page[domain.User]{}, err
	}

	users, err := s.users.List(ctx, filter, page, s.pageSize)
	if err != nil {
		return domain.Page[domain.User]{}, fmt.Errorf("s.users.List -> %w", err)
	}

	return users, nil
}

func (s *AdminService) ListEvents(ctx context.Context, actor domain.User, filter domain.EventFilter, page int) (domain.Page[domain.Event], error) {
	if err := s.check(actor, page); err != nil {
		return domain.Page[domain.Event]{}, err
	}

	events, err := s.events.ListRecent(ctx, filter, page, s.pageSize)
	if err != nil {
		return domain.Page[domain.Event]{}, fmt.Errorf("s.events.ListRecent -> %w", err)
	}

	return events, nil
}

func (s *AdminService) ListParticipants(ctx context.Context, actor domain.User, filter domain.ParticipantFilter, page int) (domain.Page[domain.Participant], error) {
	if err := s.check(actor, page); err != nil {
		return domain.Page[domain.Participant]{}, err
	}

	participants, err := s.events.ListAllParticipants(ctx, filter, page, s.pageSize)
	if err != nil {
		return domain.Page[domain.Participant]{}, fmt.Errorf("s.events.ListAllParticipants -> %w", err)
	}

	return participants, nil
}

func (s *AdminService) ListFeedback(ctx context.Context, actor domain.User, filter domain.FeedbackFilter, page int) (domain.Page[domain.Feedback], error) {
	if err := s.check(actor, page); err != nil {
		return domain.Page[domain.Feedback]{}, err
	}

	feedback, err := s.events.ListAllFeedback(ctx, filter, page, s.pageSize)
	if err != nil {
		return domain.Page[domain.Feedback]{}, fmt.Errorf("s.events.ListAllFeedback -> %w", err)
	}

	return feedback, nil
}

func (s *AdminService) authorize(actor domain.User) error {
	if actor.ID == 0 {
		return ErrNotAuthenticated
	}
	if !actor.IsStaff {
		return ErrNotAuthorized
	}
	return nil
}

func (s *AdminService) check(actor domain.User, page int) error {
	if err := s.authorize(actor); err != nil {
		return err
	}
	return checkPage(page, s.pageSize)
}
