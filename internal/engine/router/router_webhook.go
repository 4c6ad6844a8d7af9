package router

import (
	"github.com/go-arcade/reviewhub/pkg/http"
	"github.com/go-arcade/reviewhub/pkg/http/middleware"
	"github.com/go-arcade/reviewhub/pkg/log"
	"github.com/gofiber/fiber/v2"
)

// webhook 接收 GitLab/GitHub 事件，校验后立即应答，审查异步执行
func (rt *Router) webhook(c *fiber.Ctx) error {
	result, err := rt.Services.Webhook.Accept(c.UserContext(), func(key string) string {
		return c.Get(key)
	}, c.Body())
	if err != nil {
		return failed(c, err)
	}
	return http.WithRepMsg(c, http.Success.Code, result.Message)
}

// dailyReport 生成当日日报并推送
func (rt *Router) dailyReport(c *fiber.Ctx) error {
	result, err := rt.Services.Report.DailyReport(c.UserContext())
	if err != nil {
		log.Errorw("daily report failed", "error", err)
		return failed(c, err)
	}

	c.Locals(middleware.DETAIL, result)
	return nil
}
