package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/worklane/worklane/internal/server/service"
	"github.com/worklane/worklane/pkg/http"
	"github.com/worklane/worklane/pkg/http/middleware"
	"github.com/worklane/worklane/pkg/ws"
)

// Router wires the HTTP surface. Handlers stay thin: parse, call one
// service method, translate the result into the response envelope.
type Router struct {
	Http *http.Http

	redis *redis.Client
	hub   ws.Hub

	authService         *service.AuthService
	userService         *service.UserService
	requestService      *service.AdminRequestService
	approvalService     *service.ApprovalService
	notificationService *service.NotificationService
	leaveService        *service.LeaveService
	orgService          *service.OrgService
}

func NewRouter(
	httpConf *http.Http,
	redisClient *redis.Client,
	hub ws.Hub,
	authService *service.AuthService,
	userService *service.UserService,
	requestService *service.AdminRequestService,
	approvalService *service.ApprovalService,
	notificationService *service.NotificationService,
	leaveService *service.LeaveService,
	orgService *service.OrgService,
) *Router {
	return &Router{
		Http:                httpConf,
		redis:               redisClient,
		hub:                 hub,
		authService:         authService,
		userService:         userService,
		requestService:      requestService,
		approvalService:     approvalService,
		notificationService: notificationService,
		leaveService:        leaveService,
		orgService:          orgService,
	}
}

func (rt *Router) App() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(middleware.CorsMiddleware())
	app.Use(middleware.ExceptionMiddleware)
	app.Use(middleware.AccessLogMiddleware(rt.Http))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	if rt.Http.ExposeMetrics {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	auth := middleware.AuthorizationMiddleware(rt.Http.Auth.SecretKey, rt.redis)

	api := app.Group(rt.Http.ContextPath)
	{
		rt.authRouter(api, auth)
		rt.userRouter(api, auth)
		rt.adminRequestRouter(api, auth)
		rt.notificationRouter(api, auth)
		rt.leaveRouter(api, auth)
		rt.orgRouter(api, auth)
		rt.wsRouter(api)
	}

	return app
}

// repErr maps a service error onto the response vocabulary. Anything not in
// the map is an internal error; the detail stays in the logs.
func repErr(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAlreadyAdmin):
		return http.WithRepErr(c, http.AlreadyAdmin, c.Path())
	case errors.Is(err, service.ErrPendingExists):
		return http.WithRepErr(c, http.PendingRequestExists, c.Path())
	case errors.Is(err, service.ErrRateLimited):
		return http.WithRepErr(c, http.RequestRateLimited, c.Path())
	case errors.Is(err, service.ErrInvalidTarget):
		return http.WithRepErr(c, http.InvalidTargetAdmin, c.Path())
	case errors.Is(err, service.ErrInvalidAction):
		return http.WithRepErrMsg(c, http.BadRequest.Status, http.BadRequest.Code, err.Error(), c.Path())
	case errors.Is(err, service.ErrOrgNotFound):
		return http.WithRepErr(c, http.OrganizationNotFound, c.Path())
	case errors.Is(err, service.ErrRequestNotFound), errors.Is(err, service.ErrNotificationNotFound):
		return http.WithRepErr(c, http.RequestNotFound, c.Path())
	case errors.Is(err, service.ErrAlreadyProcessed):
		return http.WithRepErr(c, http.RequestAlreadyProcessed, c.Path())
	case errors.Is(err, service.ErrRequestExpired):
		return http.WithRepErr(c, http.RequestExpired, c.Path())
	case errors.Is(err, service.ErrRoleUpdateFailed):
		return http.WithRepErr(c, http.RoleUpdateFailed, c.Path())
	case errors.Is(err, service.ErrUserNotFound):
		return http.WithRepErr(c, http.UserNotExist, c.Path())
	case errors.Is(err, service.ErrIncorrectPassword):
		return http.WithRepErr(c, http.UserIncorrectPassword, c.Path())
	default:
		return http.WithRepErr(c, http.InternalError, c.Path())
	}
}
