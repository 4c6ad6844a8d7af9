package middleware

import (
	"errors"
	"strings"

	httpx "github.com/go-arcade/reviewhub/pkg/http"
	"github.com/go-arcade/reviewhub/pkg/http/jwt"
	"github.com/go-arcade/reviewhub/pkg/log"
	"github.com/gofiber/fiber/v2"
	goJwt "github.com/golang-jwt/jwt/v5"
)

const ClaimsKey = "claims"

// AuthorizationMiddleware 认证中间件，校验 Bearer access token
func AuthorizationMiddleware(secretKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return httpx.WithRepErrStatus(c, fiber.StatusUnauthorized, httpx.TokenBeEmpty.Code, httpx.TokenBeEmpty.Msg)
		}

		parts := strings.SplitN(header, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return httpx.WithRepErrStatus(c, fiber.StatusUnauthorized, httpx.AuthorizationIncorrect.Code, httpx.AuthorizationIncorrect.Msg)
		}

		claims, err := jwt.ParseToken(parts[1], secretKey)
		if err != nil {
			if errors.Is(err, goJwt.ErrTokenExpired) {
				return httpx.WithRepErrStatus(c, fiber.StatusUnauthorized, httpx.TokenExpired.Code, httpx.TokenExpired.Msg)
			}
			log.Debugw("parse token failed", "error", err)
			return httpx.WithRepErrStatus(c, fiber.StatusUnauthorized, httpx.InvalidToken.Code, httpx.InvalidToken.Msg)
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}
