package router

import (
	"github.com/go-arcade/reviewhub/internal/engine/service"
	"github.com/go-arcade/reviewhub/pkg/http/middleware"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) login(c *fiber.Ctx) error {
	var req service.LoginReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	resp, err := rt.Services.Auth.Login(&req)
	if err != nil {
		return failed(c, err)
	}

	c.Locals(middleware.DETAIL, resp)
	return nil
}

func (rt *Router) verify(c *fiber.Ctx) error {
	resp, err := rt.Services.Auth.Verify(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return failed(c, err)
	}

	c.Locals(middleware.DETAIL, resp)
	return nil
}
