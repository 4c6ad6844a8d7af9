package middleware

import (
	"github.com/gofiber/fiber/v2"
	httpx "github.com/go-arcade/reviewhub/pkg/http"
)

const (
	// DETAIL 用于设置响应数据，例如查询，分页等，需要返回数据
	// e.g: c.Locals(DETAIL, value)
	DETAIL = "detail"

	// OPERATION 用于设置响应数据，例如新增，修改，删除等，不需要返回数据，只返回操作结果
	// e.g: c.Locals(OPERATION, "")
	OPERATION = "operation"
)

// UnifiedResponseMiddleware 统一响应拦截器
// handlers set c.Locals(DETAIL, value) or c.Locals(OPERATION, "") and return nil;
// handlers that already wrote a body are left untouched.
func UnifiedResponseMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		status := c.Response().StatusCode()
		if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
			return nil
		}

		if detail := c.Locals(DETAIL); detail != nil {
			return httpx.WithRepJSON(c, detail)
		}
		if c.Locals(OPERATION) != nil {
			return httpx.WithRepNotDetail(c)
		}
		return nil
	}
}
