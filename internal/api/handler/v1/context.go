package v1

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/event-hub/internal/api/handler/v1/response"
	"github.com/vietanh2810/event-hub/internal/api/middleware"
	"github.com/vietanh2810/event-hub/internal/domain"
	"github.com/vietanh2810/event-hub/internal/service"
)

var (
	errNoIdentity   = errors.New("no user in request context")
	errInactiveUser = errors.New("user is inactive")
)

type UserGetter interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

// getUserFromContext loads the user the JWT middleware authenticated. A token
// for a deleted or deactivated account counts as no authentication at all.
func getUserFromContext(ctx *gin.Context, uSvc UserGetter) (domain.User, *response.Err) {
	userID, ok := ctx.Get(middleware.ContextKeyUserID)
	if !ok {
		return domain.User{}, response.ErrUnauthenticated(errNoIdentity)
	}
	id, ok := userID.(uint)
	if !ok || id == 0 {
		return domain.User{}, response.ErrUnauthenticated(errNoIdentity)
	}

	user, err := uSvc.GetUser(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return domain.User{}, response.ErrUnauthenticated(err)
		}
		return domain.User{}, response.ErrInternalServerError(fmt.Errorf("getUserFromContext -> uSvc.GetUser -> %w", err))
	}
	if !user.IsActive {
		return domain.User{}, response.ErrUnauthenticated(errInactiveUser)
	}

	return user, nil
}

// pathID parses a numeric path parameter. Malformed ids are reported as
// not found, like ids that do not exist.
func pathID(ctx *gin.Context, name, resource string) (uint, *response.Err) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, response.ErrNotFound(resource)
	}
	return uint(id), nil
}
