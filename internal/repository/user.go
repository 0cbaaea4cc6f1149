package repository

import (
	"context"
	"fmt"

	"github.com/vietanh2810/event-hub/internal/domain"
	"github.com/vietanh2810/event-hub/internal/repository/dao"
)

var (
	ErrUserEmailExists = dao.ErrUserEmailExists
	ErrUsernameExists  = dao.ErrUsernameExists
	ErrUserNotFound    = dao.ErrUserNotFound
)

type UserDAO interface {
	Insert(ctx context.Context, user dao.User) (dao.User, error)
	FindByID(ctx context.Context, id uint) (dao.User, error)
	FindByEmail(ctx context.Context, email string) (dao.User, error)
	FindByUsername(ctx context.Context, username string) (dao.User, error)
	UpdateProfile(ctx context.Context, id uint, firstName, lastName string) (dao.User, error)
	SetOrganizer(ctx context.Context, ids []uint, isOrganizer bool) (int64, error)
	PromoteSuperuser(ctx context.Context, id uint) error
	ListWithStats(ctx context.Context, filter dao.UserFilter, limit, offset int) ([]dao.UserStats, int64, error)
	FindWithStats(ctx context.Context, id uint) (dao.UserStats, error)
	List(ctx context.Context, filter dao.UserFilter, limit, offset int) ([]dao.User, int64, error)
	Count(ctx context.Context) (int64, error)
}

type UserRepository struct {
	dao UserDAO
}

func NewUserRepository(dao UserDAO) *UserRepository {
	return &UserRepository{
		dao: dao,
	}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	created, err := r.dao.Insert(ctx, dao.User{
		Username:    user.Username,
		Email:       user.Email,
		Password:    user.Password,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		IsOrganizer: user.IsOrganizer,
		IsStaff:     user.IsStaff,
		IsSuperuser: user.IsSuperuser,
		IsActive:    user.IsActive,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	found, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	found, err := r.dao.FindByUsername(ctx, username)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByUsername -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uint, update domain.ProfileUpdate) (domain.User, error) {
	updated, err := r.dao.UpdateProfile(ctx, id, update.FirstName, update.LastName)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.UpdateProfile -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *UserRepository) SetOrganizer(ctx context.Context, ids []uint, isOrganizer bool) (int64, error) {
	n, err := r.dao.SetOrganizer(ctx, ids, isOrganizer)
	if err != nil {
		return 0, fmt.Errorf("r.dao.SetOrganizer -> %w", err)
	}

	return n, nil
}

func (r *UserRepository) PromoteSuperuser(ctx context.Context, id uint) error {
	if err := r.dao.PromoteSuperuser(ctx, id); err != nil {
		return fmt.Errorf("r.dao.PromoteSuperuser -> %w", err)
	}

	return nil
}

func (r *UserRepository) FindWithStats(ctx context.Context, id uint) (domain.UserStats, error) {
	found, err := r.dao.FindWithStats(ctx, id)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("r.dao.FindWithStats -> %w", err)
	}

	return r.statsToDomain(found), nil
}

func (r *UserRepository) ListWithStats(ctx context.Context, filter domain.UserFilter, page, perPage int) (domain.Page[domain.UserStats], error) {
	rows, total, err := r.dao.ListWithStats(ctx, r.filterToDAO(filter), perPage, domain.Offset(page, perPage))
	if err != nil {
		return domain.Page[domain.UserStats]{}, fmt.Errorf("r.dao.ListWithStats -> %w", err)
	}

	items := make([]domain.UserStats, 0, len(rows))
	for _, row := range rows {
		items = append(items, r.statsToDomain(row))
	}

	return domain.NewPage(items, page, perPage, total), nil
}

func (r *UserRepository) List(ctx context.Context, filter domain.UserFilter, page, perPage int) (domain.Page[domain.User], error) {
	rows, total, err := r.dao.List(ctx, r.filterToDAO(filter), perPage, domain.Offset(page, perPage))
	if err != nil {
		return domain.Page[domain.User]{}, fmt.Errorf("r.dao.List -> %w", err)
	}

	items := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		items = append(items, r.daoToDomain(row))
	}

	return domain.NewPage(items, page, perPage, total), nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.dao.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.dao.Count -> %w", err)
	}

	return n, nil
}

func (r *UserRepository) filterToDAO(f domain.UserFilter) dao.UserFilter {
	return dao.UserFilter{
		Username:    f.Username,
		Search:      f.Search,
		IsOrganizer: f.IsOrganizer,
		IsStaff:     f.IsStaff,
	}
}

func (r *UserRepository) statsToDomain(s dao.UserStats) domain.UserStats {
	return domain.UserStats{
		User:          r.daoToDomain(s.User),
		EventCount:    s.EventCount,
		AverageRating: s.AverageRating,
	}
}

func (r *UserRepository) daoToDomain(u dao.User) domain.User {
	return domain.User{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Password:    u.Password,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsOrganizer: u.IsOrganizer,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
		DateJoined:  u.DateJoined,
		UpdatedAt:   u.UpdatedAt,
	}
}
