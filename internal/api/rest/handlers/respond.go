package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rescuenet/callout_service/internal/helper/utils"
	"github.com/rescuenet/callout_service/internal/services"
)

// serviceError maps the service error taxonomy onto the HTTP surface.
func serviceError(ctx *fiber.Ctx, err error) error {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		return utils.ResponseValidation(ctx, ve.Fields)
	case errors.Is(err, services.ErrForbidden):
		return utils.ResponseError(ctx, fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return utils.ResponseError(ctx, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrEventClosed):
		return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrWrongPassword):
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"errors": fiber.Map{"current_password": "Aktuálne heslo je nesprávne"},
		})
	case errors.Is(err, services.ErrUpstream):
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	default:
		return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
	}
}
