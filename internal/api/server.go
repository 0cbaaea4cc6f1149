package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/vietanh2810/event-hub/docs"
	v1 "github.com/vietanh2810/event-hub/internal/api/handler/v1"
	"github.com/vietanh2810/event-hub/internal/api/middleware"
	"github.com/vietanh2810/event-hub/internal/config"
	"github.com/vietanh2810/event-hub/internal/repository"
	"github.com/vietanh2810/event-hub/internal/repository/dao"
	"github.com/vietanh2810/event-hub/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

type handlers struct {
	auth  *v1.AuthHandler
	user  *v1.UserHandler
	event *v1.EventHandler
	admin *v1.AdminHandler
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()
	s.MountHandlers(s.initHandlers(db))

	return s
}

func (s *Server) initHandlers(db *gorm.DB) handlers {
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	eventRepo := repository.NewEventRepository(
		dao.NewEventDAO(db),
		dao.NewParticipantDAO(db),
		dao.NewFeedbackDAO(db),
	)

	listing := s.Config.Listing
	authSvc := service.NewAuthService(userRepo)
	userSvc := service.NewUserService(userRepo, listing.UsersPageSize)
	eventSvc := service.NewEventService(eventRepo, userRepo, listing.EventsPageSize)
	adminSvc := service.NewAdminService(userRepo, eventRepo, listing.AdminPageSize)

	return handlers{
		auth:  v1.NewAuthHandler(s.Config.API, authSvc),
		user:  v1.NewUserHandler(userSvc),
		event: v1.NewEventHandler(eventSvc, userSvc),
		admin: v1.NewAdminHandler(adminSvc, userSvc),
	}
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.RequestLogger())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(h handlers) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", h.auth.HandleSignup)
		auth.POST("/auth/login", h.auth.HandleLogin)
	}

	authenticated := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		authenticated.GET("/dashboard", h.event.HandleDashboard)

		authenticated.GET("/users", h.user.HandleListUsers)
		authenticated.GET("/users/:userID", h.user.HandleGetUser)
		authenticated.PATCH("/users/:userID", h.user.HandleUpdateProfile)

		authenticated.GET("/events", h.event.HandleListEvents)
		authenticated.POST("/events", h.event.HandleCreateEvent)
		authenticated.GET("/events/:eventID", h.event.HandleGetEvent)
		authenticated.PUT("/events/:eventID", h.event.HandleUpdateEvent)
		authenticated.DELETE("/events/:eventID", h.event.HandleDeleteEvent)
		authenticated.POST("/events/:eventID/participate", h.event.HandleJoinEvent)
		authenticated.GET("/events/:eventID/feedback", h.event.HandleListFeedback)
		authenticated.POST("/events/:eventID/feedback", h.event.HandleSubmitFeedback)
	}

	admin := authenticated.Group("/admin")
	{
		admin.GET("/users", h.admin.HandleListUsers)
		admin.POST("/users/organizer", h.admin.HandleSetOrganizer)
		admin.GET("/events", h.admin.HandleListEvents)
		admin.GET("/participants", h.admin.HandleListParticipants)
		admin.GET("/feedback", h.admin.HandleListFeedback)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Event Hub API"
	docs.SwaggerInfo.Description = "Events, participation and feedback."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
