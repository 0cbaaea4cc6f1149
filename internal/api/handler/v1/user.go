package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/event-hub/internal/api/handler/v1/request"
	"github.com/vietanh2810/event-hub/internal/api/handler/v1/response"
	"github.com/vietanh2810/event-hub/internal/domain"
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
	GetUserStats(ctx context.Context, id uint) (domain.UserStats, error)
	UpdateProfile(ctx context.Context, actor domain.User, id uint, update domain.ProfileUpdate) (domain.User, error)
	ListUsers(ctx context.Context, filter domain.UserFilter, page int) (domain.Page[domain.UserStats], error)
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

// HandleListUsers godoc
// @Summary      List users
// @Description  Users with the number of events they organize and the mean rating of those events, most active organizers first.
// @Tags         users
// @Produce      json
// @Param        username  query     string  false  "case-insensitive username substring"
// @Param        page      query     int     false  "page number, from 1"
// @Success      200  {object}  response.UserStatsPage
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /users [get]
// @Security     BearerAuth
func (h *UserHandler) HandleListUsers(ctx *gin.Context) {
	if _, respErr := getUserFromContext(ctx, h.svc); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	q := request.NewQuery(ctx)
	filter := domain.UserFilter{Username: q.String("username")}
	page := q.Page()
	if err := q.Err(); err != nil {
		response.RenderErr(ctx, response.ErrValidation(err))
		return
	}

	users, err := h.svc.ListUsers(ctx.Request.Context(), filter, page)
	if err != nil {
		response.RenderErr(ctx, serviceErr(err, "user", "v1.HandleListUsers -> h.svc.ListUsers"))
		return
	}

	ctx.JSON(http.StatusOK, users)
}

// HandleGetUser godoc
// @Summary      Get a user by ID
// @Tags         users
// @Produce      json
// @Param        userID  path      int  true  "user ID"
// @Success      200     {object}  domain.UserStats
// @Failure      401     {object}  response.Err
// @Failure      404     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /users/{userID} [get]
// @Security     BearerAuth
func (h *UserHandler) HandleGetUser(ctx *gin.Context) {
	if _, respErr := getUserFromContext(ctx, h.svc); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := pathID(ctx, "userID", "user")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	user, err := h.svc.GetUserStats(ctx.Request.Context(), id)
	if err != nil {
		response.RenderErr(ctx, serviceErr(err, "user", "v1.HandleGetUser -> h.svc.GetUserStats"))
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// HandleUpdateProfile godoc
// @Summary      Update own profile
// @Description  Changes the first and last name. Only the account owner may do this.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        userID   path      int                     true  "user ID"
// @Param        request  body      request.ProfileRequest  true  "request body"
// @Success      200      {object}  domain.User
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /users/{userID} [patch]
// @Security     BearerAuth
func (h *UserHandler) HandleUpdateProfile(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.svc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := pathID(ctx, "userID", "user")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	updated, err := h.svc.UpdateProfile(ctx.Request.Context(), user, id, req.ToDomain())
	if err != nil {
		response.RenderErr(ctx, serviceErr(err, "user", "v1.HandleUpdateProfile -> h.svc.UpdateProfile"))
		return
	}

	ctx.JSON(http.StatusOK, updated)
}
