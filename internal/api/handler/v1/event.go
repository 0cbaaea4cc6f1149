package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/event-hub/internal/api/handler/v1/request"
	"github.com/vietanh2810/event-hub/internal/api/handler/v1/response"
	"github.com/vietanh2810/event-hub/internal/domain"
)

type EventService interface {
	ListEvents(ctx context.Context, filter domain.EventFilter, page int) (domain.Page[domain.Event], error)
	GetEvent(ctx context.Context, actor domain.User, id uint) (domain.EventDetail, error)
	CreateEvent(ctx context.Context, actor domain.User, event domain.Event) (domain.Event, error)
	UpdateEvent(ctx context.Context, actor domain.User, id uint, changes domain.Event) (domain.Event, error)
	DeleteEvent(ctx context.Context, actor domain.User, id uint) error
	JoinEvent(ctx context.Context, actor domain.User, id uint) (bool, error)
	SubmitFeedback(ctx context.Context, actor domain.User, eventID uint, feedback domain.Feedback) (domain.Feedback, error)
	ListFeedback(ctx context.Context, eventID uint) ([]domain.Feedback, error)
	Dashboard(ctx context.Context, actor domain.User) (domain.Dashboard, error)
}

type EventHandler struct {
	svc  EventService
	uSvc UserGetter
}

func NewEventHandler(svc EventService, uSvc UserGetter) *EventHandler {
	return &EventHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleDashboard godoc
// @Summary      Dashboard counters
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  domain.Dashboard
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /dashboard [get]
// @Security     BearerAuth
func (h *EventHandler) HandleDashboard(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	dashboard, err := h.svc.Dashboard(ctx.Request.Context(), user)
	if err != nil {
		response.RenderErr(ctx, serviceErr(err, "dashboard", "v1.HandleDashboard -> h.svc.Dashboard"))
		return
	}

	ctx.JSON(http.StatusOK, dashboard)
}

// HandleListEvents godoc
// @Summary      List events
// @Description  Events ordered by date, undated events last.
// @Tags         events
// @Produce      json
// @Param        title  query     string  false  "case-insensitive title substring"
// @Param        page   query     int     false  "page number, from 1"
// @Success      200  {object}  response.EventPage
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events [get]
// @Security     BearerAuth
func (h *EventHandler) HandleListEvents(ctx *gin.Context) {
	if _, respErr := getUserFromContext(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	q := request.NewQuery(ctx)
	filter := domain.EventFilter{Title: q.String("title")}
	page := q.Page()
	if err := q.Err(); err != nil {
		response.RenderErr(ctx, response.ErrValidation(err))
		return
	}

	events, err := h.svc.ListEvents(ctx.Request.Context(), filter, page)
	if err != nil {
		response.RenderErr(ctx, serviceErr(err, "event", "v1.HandleListEvents -> h.svc.ListEvents"))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleGetEvent godoc
// @Summary      Get an event
// @Description  The event with its participants and the actions the caller may take on it.
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "event ID"
// @Success      200      {object}  domain.EventDetail
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [get]
// @Security     BearerAuth
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := pathID(ctx, "eventID", "event")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	event, err := h.svc.GetEvent(ctx.Request.Context(), user, id)
	if err != nil {
		response.RenderErr(ctx, serviceErr(err, "event", "v1.HandleGetEvent -> h.svc.GetEvent"))
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleCreateEvent godoc
// @Summary      Create an event
// @Description  Only organizers may create events. The caller becomes the organizer.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        request  body      request.EventRequest  true  "request body"
// @Success      201      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events [post]
// @Security     BearerAuth
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.EventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.CreateEvent(ctx.Request.Context(), user, req.ToDomain())
	if err != nil {
		response.RenderErr(ctx, serviceErr(err, "event", "v1.HandleCreateEvent -> h.svc.CreateEvent"))
		return
	}

	ctx.JSON(http.StatusCreated, event)
}

// HandleUpdateEvent godoc
// @Summary      Update an event
// @Description  Only the organizer of the event may update it. The organizer itself never changes.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                   true  "event ID"
// @Param        request  body      request.EventRequest  true  "request body"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [put]
// @Security     BearerAuth
func (h *EventHandler) HandleUpdateEvent(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := pathID(ctx, "eventID", "event")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.EventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.UpdateEvent(ctx.Request.Context(), user, id, req.ToDomain())
	if err != nil {
		response.RenderErr(ctx, serviceErr(err, "event", "v1.HandleUpdateEvent -> h.svc.UpdateEvent"))
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleDeleteEvent godoc
// @Summary      Delete an event
// @Description  The organizer of the event or any staff member may delete it, together with its participants and feedback.
// @Tags         events
// @Param        eventID  path  int  true  "event ID"
// @Success      204
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID} [delete]
// @Security     BearerAuth
func (h *EventHandler) HandleDeleteEvent(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := pathID(ctx, "eventID", "event")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteEvent(ctx.Request.Context(), user, id); err != nil {
		response.RenderErr(ctx, serviceErr(err, "event", "v1.HandleDeleteEvent -> h.svc.DeleteEvent"))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleJoinEvent godoc
// @Summary      Join an event
// @Description  Joining an event twice is a no-op. Returns 201 when a participant was added, 200 when the caller already participated.
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "event ID"
// @Success      200      {object}  response.JoinResponse
// @Success      201      {object}  response.JoinResponse
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/participate [post]
// @Security     BearerAuth
func (h *EventHandler) HandleJoinEvent(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := pathID(ctx, "eventID", "event")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	created, err := h.svc.JoinEvent(ctx.Request.Context(), user, id)
	if err != nil {
		response.RenderErr(ctx, serviceErr(err, "event", "v1.HandleJoinEvent -> h.svc.JoinEvent"))
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	ctx.JSON(status, response.JoinResponse{
		EventID: id,
		Joined:  true,
		Created: created,
	})
}

// HandleSubmitFeedback godoc
// @Summary      Leave feedback on an event
// @Description  Feedback opens 24 hours after the event starts. Rating is 1 to 10, comment is required.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                      true  "event ID"
// @Param        request  body      request.FeedbackRequest  true  "request body"
// @Success      201      {object}  domain.Feedback
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/feedback [post]
// @Security     BearerAuth
func (h *EventHandler) HandleSubmitFeedback(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := pathID(ctx, "eventID", "event")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.FeedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	feedback, err := h.svc.SubmitFeedback(ctx.Request.Context(), user, id, req.ToDomain())
	if err != nil {
		response.RenderErr(ctx, serviceErr(err, "event", "v1.HandleSubmitFeedback -> h.svc.SubmitFeedback"))
		return
	}

	ctx.JSON(http.StatusCreated, feedback)
}

// HandleListFeedback godoc
// @Summary      List feedback of an event
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "event ID"
// @Success      200      {array}   domain.Feedback
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/feedback [get]
// @Security     BearerAuth
func (h *EventHandler) HandleListFeedback(ctx *gin.Context) {
	if _, respErr := getUserFromContext(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := pathID(ctx, "eventID", "event")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	feedback, err := h.svc.ListFeedback(ctx.Request.Context(), id)
	if err != nil {
		response.RenderErr(ctx, serviceErr(err, "event", "v1.HandleListFeedback -> h.svc.ListFeedback"))
		return
	}

	ctx.JSON(http.StatusOK, feedback)
}
