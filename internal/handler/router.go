package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-events-admin/api/swagger"
	"github.com/noah-isme/sma-events-admin/internal/middleware"
	"github.com/noah-isme/sma-events-admin/internal/service"
	"github.com/noah-isme/sma-events-admin/internal/session"
	"github.com/noah-isme/sma-events-admin/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-events-admin/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-events-admin/pkg/middleware/requestid"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Auth     *AuthHandler
	Admin    *AdminHandler
	Events   *EventHandler
	Students *StudentHandler
	Health   *HealthHandler
}

// RouterConfig holds the router level settings.
type RouterConfig struct {
	EnableDocs         bool
	AllowedOrigins     []string
	MaxMultipartMemory int64
}

// NewRouter builds the engine with the shared middleware chain and every
// route of the application.
func NewRouter(cfg RouterConfig, h Handlers, sessions *session.Manager, metrics *service.MetricsService, audit middleware.AuditRecorder, log *zap.Logger) *gin.Engine {
	r := gin.New()
	if cfg.MaxMultipartMemory > 0 {
		r.MaxMultipartMemory = cfg.MaxMultipartMemory
	}
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(sessions.Middleware())
	r.Use(middleware.Audit(audit))

	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)
	r.GET("/metrics", h.Health.Prometheus)
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.GET("/", h.Auth.Home)
	r.GET("/signup", h.Auth.SignupPage)
	r.POST("/signup", h.Auth.Signup)
	r.GET("/login", h.Auth.LoginPage)
	r.POST("/login", h.Auth.Login)
	r.GET("/logout", h.Auth.Logout)

	r.GET("/student_register", h.Students.RegisterPage)
	r.POST("/student_register", h.Students.Register)

	organizer := r.Group("/")
	organizer.Use(middleware.RequireAuth(sessions))
	{
		organizer.GET("/adminpage", h.Admin.Dashboard)
		organizer.POST("/adminpage", h.Admin.Action)
		organizer.GET("/adminpage/export", h.Admin.Export)
		organizer.POST("/adminpage/events/:event_id/bookings", h.Admin.Book)

		organizer.GET("/createEvent", h.Events.CreatePage)
		organizer.POST("/createEvent", h.Events.Create)
		organizer.GET("/editEvent/:event_id", h.Events.EditPage)
		organizer.POST("/editEvent/:event_id", h.Events.Edit)
	}

	return r
}
