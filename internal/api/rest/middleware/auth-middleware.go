package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rescuenet/callout_service/internal/helper"
	"github.com/rescuenet/callout_service/internal/repository"
)

// AuthMiddleware resolves the bearer session token to a local user. Verified
// sessions are cached with a fixed TTL; entries are flushed on credential
// change and on account disable.
func AuthMiddleware(auth helper.Auth, users repository.UserRepository) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := strings.TrimSpace(ctx.Get("Authorization"))
		if tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization token not found",
			})
		}

		if user, ok := auth.CachedSession(tokenStr); ok {
			ctx.Locals("user", user)
			return ctx.Next()
		}

		claims, err := auth.VerifyToken(tokenStr)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		user, err := users.FindUserById(uint(claims.UserID))
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		if user.Disabled {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Account is disabled",
			})
		}

		auth.CacheSession(tokenStr, user)
		ctx.Locals("user", user)
		return ctx.Next()
	}
}
