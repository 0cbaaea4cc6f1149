package service

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/vietanh2810/event-hub/internal/domain"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindWithStats(ctx context.Context, id uint) (domain.UserStats, error)
	UpdateProfile(ctx context.Context, id uint, update domain.ProfileUpdate) (domain.User, error)
	ListWithStats(ctx context.Context, filter domain.UserFilter, page, perPage int) (domain.Page[domain.UserStats], error)
}

type UserService struct {
	repo     UserRepository
	pageSize int
}

func NewUserService(repo UserRepository, pageSize int) *UserService {
	return &UserService{
		repo:     repo,
		pageSize: pageSize,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", notFound(err))
	}

	return user, nil
}

func (s *UserService) GetUserStats(ctx context.Context, id uint) (domain.UserStats, error) {
	user, err := s.repo.FindWithStats(ctx, id)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("s.repo.FindWithStats -> %w", notFound(err))
	}

	return user, nil
}

// UpdateProfile lets a user change their own name. Nobody, staff included,
// may edit another account through it.
func (s *UserService) UpdateProfile(ctx context.Context, actor domain.User, id uint, update domain.ProfileUpdate) (domain.User, error) {
	if actor.ID == 0 {
		return domain.User{}, ErrNotAuthenticated
	}
	if _, err := s.GetUser(ctx, id); err != nil {
		return domain.User{}, err
	}
	if actor.ID != id {
		return domain.User{}, ErrNotAuthorized
	}

	err := validation.ValidateStruct(
		&update,
		validation.Field(&update.FirstName, validation.RuneLength(0, 150)),
		validation.Field(&update.LastName, validation.RuneLength(0, 150)),
	)
	if err != nil {
		return domain.User{}, domain.ValidationError(err)
	}

	updated, err := s.repo.UpdateProfile(ctx, id, update)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.UpdateProfile -> %w", notFound(err))
	}

	return updated, nil
}

func (s *UserService) ListUsers(ctx context.Context, filter domain.UserFilter, page int) (domain.Page[domain.UserStats], error) {
	if err := checkPage(page, s.pageSize); err != nil {
		return domain.Page[domain.UserStats]{}, err
	}

	users, err := s.repo.ListWithStats(ctx, filter, page, s.pageSize)
	if err != nil {
		return domain.Page[domain.UserStats]{}, fmt.Errorf("s.repo.ListWithStats -> %w", err)
	}

	return users, nil
}
