package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"eventhub/config"
	"eventhub/middlewares"
	"eventhub/models"
	"eventhub/utils"
)

// Deps is everything the handlers need; main builds it once.
type Deps struct {
	Users         models.UserRepository
	Events        models.EventRepository
	Participants  models.ParticipantRepository
	Registrations models.RegistrationRepository
	Dashboard     models.DashboardRepository

	Tokens       *utils.Tokens
	Redis        *redis.Client // optional; quotas are skipped without it
	Log          logrus.FieldLogger
	Limits       config.LimitsConfig
	ExposeErrors bool                        // attach raw error text to 500s
	Ping         func(context.Context) error // store health check
}

type deps struct {
	users  models.UserRepository
	events models.EventRepository
	parts  models.ParticipantRepository
	regs   models.RegistrationRepository
	dash   models.DashboardRepository
	tokens *utils.Tokens
	ping   func(context.Context) error
}

// RegisterRoutes mounts the API on server. ctx bounds the limiter sweepers.
func RegisterRoutes(ctx context.Context, server *gin.Engine, in Deps) {
	useJSONFieldNames()

	log := in.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	d := &deps{
		users:  in.Users,
		events: in.Events,
		parts:  in.Participants,
		regs:   in.Registrations,
		dash:   in.Dashboard,
		tokens: in.Tokens,
		ping:   in.Ping,
	}
	lim := in.Limits

	server.Use(middlewares.ErrorHandler(log, in.ExposeErrors))

	globalLimiter := middlewares.NewRateLimiter(ctx, middlewares.LimiterConfig{
		RPS:     lim.GlobalRPS,
		Burst:   lim.GlobalBurst,
		IdleTTL: 3 * time.Minute,
	})
	server.Use(globalLimiter.Middleware(func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}))

	server.GET("/health", d.health)
	server.GET("/health/db", d.healthDB)

	api := server.Group("/api")

	loginLimiter := middlewares.NewRateLimiter(ctx, middlewares.LimiterConfig{
		RPS:     lim.LoginRPS,
		Burst:   lim.LoginBurst,
		IdleTTL: 10 * time.Minute,
	})
	api.POST("/auth/login",
		loginLimiter.Middleware(func(c *gin.Context) string { return "login:" + c.ClientIP() }),
		middlewares.Quota(in.Redis, middlewares.QuotaRule{
			Name:   "login",
			Limit:  lim.LoginAttempts,
			Window: lim.LoginWindow,
			KeyFn:  func(c *gin.Context) string { return "quota:login:ip:" + c.ClientIP() },
		}, log),
		d.login,
	)

	userLimiter := middlewares.NewRateLimiter(ctx, middlewares.LimiterConfig{
		RPS:     lim.UserRPS,
		Burst:   lim.UserBurst,
		IdleTTL: 10 * time.Minute,
	})
	auth := api.Group("")
	auth.Use(middlewares.Authenticate(in.Tokens))
	auth.Use(userLimiter.Middleware(func(c *gin.Context) string {
		return "u:" + middlewares.CurrentUserID(c).String()
	}))
	auth.Use(middlewares.Quota(in.Redis, middlewares.QuotaRule{
		Name:   "daily",
		Limit:  lim.DailyQuota,
		Window: 24 * time.Hour,
		KeyFn: func(c *gin.Context) string {
			return "quota:user:" + middlewares.CurrentUserID(c).String() + ":day"
		},
	}, log))

	auth.GET("/auth/me", d.me)
	auth.GET("/events", d.listEvents)
	auth.GET("/events/:id", d.getEvent)

	staff := auth.Group("", middlewares.Authorize(models.RoleAdmin, models.RoleStaff))
	staff.POST("/events", d.createEvent)
	staff.PUT("/events/:id", d.updateEvent)
	staff.PATCH("/events/:id/status", d.setEventStatus)

	staff.POST("/participants", d.createParticipant)
	staff.GET("/participants", d.listParticipants)
	staff.GET("/participants/:id", d.getParticipant)
	staff.PUT("/participants/:id", d.updateParticipant)

	staff.POST("/registrations", d.createRegistration)
	staff.GET("/registrations", d.listRegistrations)
	staff.PATCH("/registrations/:id/status", d.setRegistrationStatus)

	staff.GET("/dashboard", d.dashboard)

	admin := auth.Group("/users", middlewares.Authorize(models.RoleAdmin))
	admin.GET("", d.listUsers)
	admin.GET("/:id", d.getUser)
	admin.POST("", d.createUser)
	admin.PUT("/:id", d.updateUser)
	admin.DELETE("/:id", d.deleteUser)
}
