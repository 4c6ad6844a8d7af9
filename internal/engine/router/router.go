package router

import (
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/reviewhub/internal/engine/errs"
	"github.com/go-arcade/reviewhub/internal/engine/service"
	"github.com/go-arcade/reviewhub/pkg/http"
	"github.com/go-arcade/reviewhub/pkg/http/middleware"
	"github.com/go-arcade/reviewhub/pkg/version"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
)

/**
 * @author: gagral.x@gmail.com
 * @file: router.go
 * @description: setup router
 *               webhook ingestion, daily report and dashboard api
 */

const serviceName = "reviewhub"

type Router struct {
	Http     *http.Http
	Auth     *http.Auth
	Services *service.Services
}

func NewRouter(httpConf *http.Http, authConf *http.Auth, services *service.Services) *Router {
	return &Router{
		Http:     httpConf,
		Auth:     authConf,
		Services: services,
	}
}

func (rt *Router) Router() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           time.Duration(rt.Http.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(rt.Http.WriteTimeout) * time.Second,
		IdleTimeout:           time.Duration(rt.Http.IdleTimeout) * time.Second,
		BodyLimit:             rt.Http.BodyLimit * 1024 * 1024,
		UnescapePath:          true,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
	})

	app.Use(
		fiberrecover.New(),
		cors.New(),
		middleware.RequestMiddleware(),
	)
	if rt.Http.AccessLog {
		app.Use(http.AccessLogFormat())
	}
	app.Use(middleware.UnifiedResponseMiddleware())

	// webhook 与日报，供 GitLab/GitHub 和定时任务调用，不鉴权
	review := app.Group("/review")
	{
		review.Post("/webhook", rt.webhook)
		review.Get("/daily_report", rt.dailyReport)
	}

	api := app.Group("/api")
	{
		api.Get("/health", rt.health)
		api.Post("/auth/login", rt.login)

		auth := rt.authHandler()
		api.Get("/auth/verify", rt.verify)

		rt.teamRouter(api, auth)
		rt.projectRouter(api, auth)
		rt.reviewRouter(api, auth)
	}

	// 找不到路径时的处理，必须在所有路由注册之后
	app.Use(func(c *fiber.Ctx) error {
		return http.WithRepErrStatus(c, fiber.StatusNotFound, http.NotFound.Code, "request path not found")
	})

	return app
}

// authHandler 关闭鉴权时放行全部请求
func (rt *Router) authHandler() fiber.Handler {
	if rt.Auth == nil || !rt.Auth.Enabled {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return middleware.AuthorizationMiddleware(rt.Auth.SecretKey)
}

func (rt *Router) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service":   serviceName,
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   version.GetVersion().Version,
	})
}

// kindCodes 错误类型到业务码
var kindCodes = map[errs.Kind]*http.Response{
	errs.MalformedPayload:     http.MalformedPayload,
	errs.MissingCredential:    http.MissingCredential,
	errs.MissingOriginURL:     http.MissingOriginURL,
	errs.UnsupportedEventKind: http.UnsupportedEventKind,
	errs.TeamNotFound:         http.TeamNotFound,
	errs.UpstreamUnavailable:  http.UpstreamUnavailable,
	errs.EmptyUpstreamRoster:  http.EmptyUpstreamRoster,
	errs.InvalidArgument:      http.InvalidArgument,
	errs.Validation:           http.ValidationFailed,
	errs.NotFound:             http.NotFound,
	errs.Unauthorized:         http.Unauthorized,
}

// failed 按错误类型写出状态码与错误信息
func failed(c *fiber.Ctx, err error) error {
	kind := errs.KindOf(err)
	rep, ok := kindCodes[kind]
	if !ok {
		rep = http.InternalError
	}
	return http.WithRepErrStatus(c, errs.HTTPStatus(kind), rep.Code, errs.Message(err))
}

func badRequest(c *fiber.Ctx) error {
	return http.WithRepErrStatus(c, fiber.StatusBadRequest, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg)
}

func queryInt(c *fiber.Ctx, key string) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return value
}
