package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rescuenet/callout_service/internal/dto"
	"github.com/rescuenet/callout_service/internal/helper"
	"github.com/rescuenet/callout_service/internal/helper/utils"
	"github.com/rescuenet/callout_service/internal/services"
)

type UserHandler struct {
	svc  services.UserService
	auth helper.Auth
}

func NewUserHandler(svc services.UserService, auth helper.Auth) *UserHandler {
	return &UserHandler{svc: svc, auth: auth}
}

func (h *UserHandler) SetupRoutes(app *fiber.App) {
	app.Get("/users", h.Users)
	app.Put("/user", h.UpdateProfile)
	app.Delete("/user", h.DeleteAccount)
	app.Put("/user/password", h.ChangePassword)
	app.Post("/store-fcm-token", h.StoreFcmToken)
}

func (h *UserHandler) Users(ctx *fiber.Ctx) error {
	user, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, err.Error())
	}

	users, err := h.svc.Users(user.ID)
	if err != nil {
		return serviceError(ctx, err)
	}
	return utils.ResponseJSON(ctx, fiber.StatusOK, users)
}

func (h *UserHandler) UpdateProfile(ctx *fiber.Ctx) error {
	user, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, err.Error())
	}

	var requestBody dto.UpdateProfileRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	updated, err := h.svc.UpdateProfile(ctx.UserContext(), user, requestBody)
	if err != nil {
		return serviceError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "User profile updated successfully",
		"user":    updated,
	})
}

func (h *UserHandler) ChangePassword(ctx *fiber.Ctx) error {
	user, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, err.Error())
	}

	var requestBody dto.ChangePasswordRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	if err := h.svc.ChangePassword(ctx.UserContext(), user, requestBody.CurrentPassword, requestBody.NewPassword); err != nil {
		return serviceError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Password changed successfully",
	})
}

func (h *UserHandler) DeleteAccount(ctx *fiber.Ctx) error {
	user, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, err.Error())
	}

	if err := h.svc.DeleteAccount(ctx.UserContext(), user); err != nil {
		return serviceError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "User has been deleted and disabled locally",
	})
}

func (h *UserHandler) StoreFcmToken(ctx *fiber.Ctx) error {
	user, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, err.Error())
	}

	var requestBody dto.StoreFcmTokenRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	if err := h.svc.StoreFcmToken(user.ID, requestBody.Token); err != nil {
		return serviceError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "FCM Token saved successfully",
	})
}
