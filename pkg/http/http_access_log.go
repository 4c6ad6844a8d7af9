package http

import (
	"time"

	"github.com/go-arcade/reviewhub/pkg/log"
	"github.com/gofiber/fiber/v2"
)

// AccessLogFormat logs one line per request through pkg/log.
func AccessLogFormat() fiber.Handler {
	// 不需要记录访问日志的路径
	excludedPaths := map[string]bool{
		"/api/health": true,
	}

	return func(c *fiber.Ctx) error {
		if excludedPaths[c.Path()] {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		query := c.Context().QueryArgs().String()
		if query != "" {
			query = "?" + query
		}

		log.Infow("HTTP request",
			"method", c.Method(),
			"path", c.Path(),
			"query", query,
			"status", c.Response().StatusCode(),
			"ip", c.IP(),
			"user_agent", c.Get(fiber.HeaderUserAgent),
			"latency", latency.String(),
			"request_id", c.Locals("request_id"),
		)
		return err
	}
}
