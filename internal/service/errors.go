package service

import (
	"errors"
	"fmt"
	"math"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/vietanh2810/event-hub/internal/domain"
	"github.com/vietanh2810/event-hub/internal/repository"
)

var (
	ErrValidation            = domain.ErrValidation
	ErrNotAuthenticated      = domain.ErrNotAuthenticated
	ErrNotAuthorized         = domain.ErrNotAuthorized
	ErrNotFound              = domain.ErrNotFound
	ErrEventFull             = domain.ErrEventFull
	ErrFeedbackWindowNotOpen = domain.ErrFeedbackWindowNotOpen

	ErrUserNotFound    = repository.ErrUserNotFound
	ErrEventNotFound   = repository.ErrEventNotFound
	ErrUsernameExists  = repository.ErrUsernameExists
	ErrUserEmailExists = repository.ErrUserEmailExists

	ErrWrongCredentials = errors.New("wrong username or password")
	errInvalidPage      = errors.New("must be a positive integer")
	errPageOutOfRange   = errors.New("is out of range")
)

// notFound tags storage not-found errors with ErrNotFound and leaves every
// other error untouched.
func notFound(err error) error {
	if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrEventNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

// checkPage rejects pages whose offset would not fit in an int.
func checkPage(page, perPage int) error {
	if page < 1 {
		return domain.ValidationError(validation.Errors{"page": errInvalidPage})
	}
	if perPage > 0 && page-1 > math.MaxInt/perPage {
		return domain.ValidationError(validation.Errors{"page": errPageOutOfRange})
	}
	return nil
}
