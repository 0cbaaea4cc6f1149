package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotAuthenticated = errors.New("authentication required")
	ErrNotAuthorized    = errors.New("not allowed to perform this action")
	ErrNotFound         = errors.New("not found")

	// ErrBusinessRule is the parent of rule violations that are neither
	// permission nor validation problems.
	ErrBusinessRule          = errors.New("business rule violation")
	ErrEventFull             = fmt.Errorf("%w: the event has reached its maximum number of participants", ErrBusinessRule)
	ErrFeedbackWindowNotOpen = fmt.Errorf("%w: feedback opens 24 hours after the event starts", ErrBusinessRule)
)

// ValidationError marks err as ErrValidation while keeping the field errors
// reachable through errors.As.
func ValidationError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}
