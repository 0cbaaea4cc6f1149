package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/event-hub/internal/api/handler/v1/request"
	"github.com/vietanh2810/event-hub/internal/api/handler/v1/response"
	"github.com/vietanh2810/event-hub/internal/domain"
)

type AdminService interface {
	SetOrganizer(ctx context.Context, actor domain.User, ids []uint, isOrganizer bool) (int64, error)
	ListUsers(ctx context.Context, actor domain.User, filter domain.UserFilter, page int) (domain.Page[domain.User], error)
	ListEvents(ctx context.Context, actor domain.User, filter domain.EventFilter, page int) (domain.Page[domain.Event], error)
	ListParticipants(ctx context.Context, actor domain.User, filter domain.ParticipantFilter, page int) (domain.Page[domain.Participant], error)
	ListFeedback(ctx context.Context, actor domain.User, filter domain.FeedbackFilter, page int) (domain.Page[domain.Feedback], error)
}

type AdminHandler struct {
	svc  AdminService
	uSvc UserGetter
}

func NewAdminHandler(svc AdminService, uSvc UserGetter) *AdminHandler {
	return &AdminHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleSetOrganizer godoc
// @Summary      Grant or revoke the organizer flag
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      request.SetOrganizerRequest  true  "request body"
// @Success      200      {object}  response.SetOrganizerResponse
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /admin/users/organizer [post]
// @Security     BearerAuth
func (h *AdminHandler) HandleSetOrganizer(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.SetOrganizerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrValidation(err))
		return
	}

	n, err := h.svc.SetOrganizer(ctx.Request.Context(), user, req.UserIDs, *req.IsOrganizer)
	if err != nil {
		response.RenderErr(ctx, serviceErr(err, "user", "v1.HandleSetOrganizer -> h.svc.SetOrganizer"))
		return
	}

	ctx.JSON(http.StatusOK, response.SetOrganizerResponse{
		Updated:     n,
		IsOrganizer: *req.IsOrganizer,
	})
}

// HandleListUsers godoc
// @Summary      List users (admin)
// @Tags         admin
// @Produce      json
// @Param        search        query     string  false  "username or email substring"
// @Param        is_organizer  query     bool    false  "organizer flag"
// @Param        is_staff      query     bool    false  "staff flag"
// @Param        page          query     int     false  "page number, from 1"
// @Success      200  {object}  response.UserPage
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/users [get]
// @Security     BearerAuth
func (h *AdminHandler) HandleListUsers(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	q := request.NewQuery(ctx)
	filter := domain.UserFilter{
		Search:      q.String("search"),
		IsOrganizer: q.Bool("is_organizer"),
		IsStaff:     q.Bool("is_staff"),
	}
	page := q.Page()
	if err := q.Err(); err != nil {
		response.RenderErr(ctx, response.ErrValidation(err))
		return
	}

	users, err := h.svc.ListUsers(ctx.Request.Context(), user, filter, page)
	if err != nil {
		response.RenderErr(ctx, serviceErr(err, "user", "v1.AdminHandler.HandleListUsers -> h.svc.ListUsers"))
		return
	}

	ctx.JSON(http.StatusOK, users)
}

// HandleListEvents godoc
// @Summary      List events (admin)
// @Description  Newest events first.
// @Tags         admin
// @Produce      json
// @Param        search    query     string  false  "title, description or location substring"
// @Param        location  query     string  false  "exact location, case-insensitive"
// @Param        page      query     int     false  "page number, from 1"
// @Success      200  {object}  response.EventPage
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/events [get]
// @Security     BearerAuth
func (h *AdminHandler) HandleListEvents(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	q := request.NewQuery(ctx)
	filter := domain.EventFilter{
		Search:   q.String("search"),
		Location: q.String("location"),
	}
	page := q.Page()
	if err := q.Err(); err != nil {
		response.RenderErr(ctx, response.ErrValidation(err))
		return
	}

	events, err := h.svc.ListEvents(ctx.Request.Context(), user, filter, page)
	if err != nil {
		response.RenderErr(ctx, serviceErr(err, "event", "v1.AdminHandler.HandleListEvents -> h.svc.ListEvents"))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleListParticipants godoc
// @Summary      List participants (admin)
// @Tags         admin
// @Produce      json
// @Param        event_id      query     int     false  "event ID"
// @Param        is_confirmed  query     bool    false  "confirmation flag"
// @Param        search        query     string  false  "username or event title substring"
// @Param        page          query     int     false  "page number, from 1"
// @Success      200  {object}  response.ParticipantPage
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/participants [get]
// @Security     BearerAuth
func (h *AdminHandler) HandleListParticipants(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	q := request.NewQuery(ctx)
	filter := domain.ParticipantFilter{
		EventID:     q.Uint("event_id"),
		IsConfirmed: q.Bool("is_confirmed"),
		Search:      q.String("search"),
	}
	page := q.Page()
	if err := q.Err(); err != nil {
		response.RenderErr(ctx, response.ErrValidation(err))
		return
	}

	participants, err := h.svc.ListParticipants(ctx.Request.Context(), user, filter, page)
	if err != nil {
		response.RenderErr(ctx, serviceErr(err, "participant", "v1.AdminHandler.HandleListParticipants -> h.svc.ListParticipants"))
		return
	}

	ctx.JSON(http.StatusOK, participants)
}

// HandleListFeedback godoc
// @Summary      List feedback (admin)
// @Tags         admin
// @Produce      json
// @Param        event_id  query     int     false  "event ID"
// @Param        rating    query     int     false  "exact rating"
// @Param        search    query     string  false  "comment, username or event title substring"
// @Param        page      query     int     false  "page number, from 1"
// @Success      200  {object}  response.FeedbackPage
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/feedback [get]
// @Security     BearerAuth
func (h *AdminHandler) HandleListFeedback(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	q := request.NewQuery(ctx)
	filter := domain.FeedbackFilter{
		EventID: q.Uint("event_id"),
		Rating:  q.Int("rating"),
		Search:  q.String("search"),
	}
	page := q.Page()
	if err := q.Err(); err != nil {
		response.RenderErr(ctx, response.ErrValidation(err))
		return
	}

	feedback, err := h.svc.ListFeedback(ctx.Request.Context(), user, filter, page)
	if err != nil {
		response.RenderErr(ctx, serviceErr(err, "feedback", "v1.AdminHandler.HandleListFeedback -> h.svc.ListFeedback"))
		return
	}

	ctx.JSON(http.StatusOK, feedback)
}
