package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/vietanh2810/event-hub/internal/domain"
)

var errPasswordTooLong = errors.New("must be at most 72 bytes")

// dummyHash is compared against when the username is unknown, so both login
// failures cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("event-hub-dummy-password"), bcrypt.DefaultCost)
	return hash
})

type AuthUserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	PromoteSuperuser(ctx context.Context, id uint) error
}

type AuthService struct {
	repo AuthUserRepository
}

func NewAuthService(repo AuthUserRepository) *AuthService {
	return &AuthService{
		repo: repo,
	}
}

// Signup registers a regular account. Organizer and staff flags can only be
// granted afterwards by staff.
func (s *AuthService) Signup(ctx context.Context, user domain.User) (domain.User, error) {
	if err := s.checkUserExists(ctx, user.Username, user.Email); err != nil {
		return domain.User{}, err
	}

	hash, err := hashPassword(user.Password)
	if err != nil {
		return domain.User{}, err
	}
	user.Password = hash
	user.IsActive = true
	user.IsOrganizer = false
	user.IsStaff = false
	user.IsSuperuser = false

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			return domain.User{}, ErrWrongCredentials
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByUsername -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.User{}, ErrWrongCredentials
	}
	if !user.IsActive {
		return domain.User{}, ErrWrongCredentials
	}

	return user, nil
}

// EnsureSuperuser creates the configured superuser, or promotes the account
// when the username is already taken.
func (s *AuthService) EnsureSuperuser(ctx context.Context, username, email, password string) (domain.User, error) {
	existing, err := s.repo.FindByUsername(ctx, username)
	if err == nil {
		if existing.IsStaff && existing.IsSuperuser {
			return existing, nil
		}
		if err := s.repo.PromoteSuperuser(ctx, existing.ID); err != nil {
			return domain.User{}, fmt.Errorf("s.repo.PromoteSuperuser -> %w", err)
		}
		existing.IsStaff = true
		existing.IsSuperuser = true
		zap.L().Info("promoted existing user to superuser", zap.String("username", username))

		return existing, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return domain.User{}, fmt.Errorf("s.repo.FindByUsername -> %w", err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	created, err := s.repo.Create(ctx, domain.User{
		Username:    username,
		Email:       email,
		Password:    hash,
		IsStaff:     true,
		IsSuperuser: true,
		IsActive:    true,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}
	zap.L().Info("created superuser", zap.String("username", username))

	return created, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.ValidationError(validation.Errors{"password": errPasswordTooLong})
	}
	if err != nil {
		return "", fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) checkUserExists(ctx context.Context, username, email string) error {
	_, err := s.repo.FindByUsername(ctx, username)
	if err == nil {
		return ErrUsernameExists
	}
	if !errors.Is(err, ErrUserNotFound) {
		return fmt.Errorf("s.repo.FindByUsername -> %w", err)
	}

	_, err = s.repo.FindByEmail(ctx, email)
	if err == nil {
		return ErrUserEmailExists
	}
	if !errors.Is(err, ErrUserNotFound) {
		return fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	return nil
}
