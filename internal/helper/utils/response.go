package utils

import "github.com/gofiber/fiber/v2"

func ResponseError(ctx *fiber.Ctx, status int, msg string) error {
	return ctx.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

// ResponseValidation reports per-field validation failures under "errors".
func ResponseValidation(ctx *fiber.Ctx, fields map[string]string) error {
	return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"errors": fields,
	})
}

func ResponseJSON(ctx *fiber.Ctx, status int, data interface{}) error {
	return ctx.Status(status).JSON(data)
}
