package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"
)

type Err struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string            `json:"status"`
	Code       string            `json:"code,omitempty"`
	ErrorText  string            `json:"error,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
}

func (e *Err) Error() string {
	if e.Err == nil {
		return e.StatusText
	}
	return e.Err.Error()
}

func RenderErr(ctx *gin.Context, e *Err) {
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("request_id", requestid.Get(ctx)),
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.Error(e.Err),
		)
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Bad request.",
		Code:           "BAD_REQUEST",
		ErrorText:      err.Error(),
	}
}

// ErrValidation keeps per-field messages when err carries ozzo field errors.
func ErrValidation(err error) *Err {
	e := &Err{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Validation failed.",
		Code:           "VALIDATION_FAILED",
		ErrorText:      err.Error(),
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		e.Fields = make(map[string]string, len(fieldErrs))
		for field, fieldErr := range fieldErrs {
			e.Fields[field] = fieldErr.Error()
		}
	}

	return e
}

func ErrUnauthenticated(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Authentication required.",
		Code:           "UNAUTHORIZED",
	}
}

func ErrWrongCredentials(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Wrong credentials.",
		Code:           "WRONG_CREDENTIALS",
		ErrorText:      "username or password is incorrect",
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusForbidden,
		StatusText:     "Permission denied.",
		Code:           "FORBIDDEN",
		ErrorText:      "you are not allowed to perform this action",
	}
}

// ErrNotFound names only the kind of resource that is missing.
func ErrNotFound(resource string) *Err {
	return &Err{
		Err:            fmt.Errorf("%s not found", resource),
		HTTPStatusCode: http.StatusNotFound,
		StatusText:     "Resource not found.",
		Code:           "NOT_FOUND",
		ErrorText:      fmt.Sprintf("%s not found", resource),
	}
}

func ErrConflict(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusConflict,
		StatusText:     "Conflict.",
		Code:           "CONFLICT",
		ErrorText:      err.Error(),
	}
}

func ErrEventFull(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusConflict,
		StatusText:     "Event is full.",
		Code:           "EVENT_FULL",
		ErrorText:      err.Error(),
	}
}

func ErrFeedbackWindowNotOpen(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnprocessableEntity,
		StatusText:     "Feedback is not open yet.",
		Code:           "FEEDBACK_WINDOW_NOT_OPEN",
		ErrorText:      err.Error(),
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Internal server error.",
		Code:           "INTERNAL_ERROR",
	}
}
