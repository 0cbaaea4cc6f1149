package v1

import (
	"errors"
	"fmt"

	"github.com/vietanh2810/event-hub/internal/api/handler/v1/response"
	"github.com/vietanh2810/event-hub/internal/service"
)

// serviceErr maps service errors onto HTTP responses. resource names
// what a not-found error refers to; op prefixes internal errors for the log.
func serviceErr(err error, resource, op string) *response.Err {
	switch {
	case errors.Is(err, service.ErrValidation):
		return response.ErrValidation(err)
	case errors.Is(err, service.ErrNotAuthenticated):
		return response.ErrUnauthenticated(err)
	case errors.Is(err, service.ErrNotAuthorized):
		return response.ErrPermissionDenied(err)
	case errors.Is(err, service.ErrNotFound):
		return response.ErrNotFound(resource)
	case errors.Is(err, service.ErrEventFull):
		return response.ErrEventFull(service.ErrEventFull)
	case errors.Is(err, service.ErrFeedbackWindowNotOpen):
		return response.ErrFeedbackWindowNotOpen(service.ErrFeedbackWindowNotOpen)
	case errors.Is(err, service.ErrUsernameExists):
		return response.ErrConflict(service.ErrUsernameExists)
	case errors.Is(err, service.ErrUserEmailExists):
		return response.ErrConflict(service.ErrUserEmailExists)
	case errors.Is(err, service.ErrWrongCredentials):
		return response.ErrWrongCredentials(err)
	default:
		return response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err))
	}
}
