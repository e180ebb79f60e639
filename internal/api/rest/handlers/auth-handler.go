package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rescuenet/callout_service/internal/dto"
	"github.com/rescuenet/callout_service/internal/services"
)

type AuthHandler struct {
	svc services.AuthService
}

func NewAuthHandler(svc services.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// SetupRoutes registers the public routes. Everything else sits behind the
// session middleware.
func (h *AuthHandler) SetupRoutes(app *fiber.App) {
	app.Post("/register", h.Register)
	app.Post("/auth", h.Authenticate)
}

func (h *AuthHandler) Register(ctx *fiber.Ctx) error {
	var requestBody dto.RegisterRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Please provide valid inputs",
		})
	}

	user, token, err := h.svc.Register(ctx.UserContext(), requestBody)
	if err != nil {
		if errors.Is(err, services.ErrUpstream) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "Failed to register user",
				"message": err.Error(),
			})
		}
		return serviceError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":    user,
		"message": "User registered successfully",
		"token":   token,
	})
}

func (h *AuthHandler) Authenticate(ctx *fiber.Ctx) error {
	var requestBody dto.AuthenticateRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Please provide valid inputs",
		})
	}

	user, token, err := h.svc.Authenticate(ctx.UserContext(), requestBody.FirebaseToken)
	if err != nil {
		if errors.Is(err, services.ErrUpstream) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "Invalid Firebase token",
				"message": err.Error(),
			})
		}
		if errors.Is(err, services.ErrForbidden) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "Invalid Login",
				"message": "Invalid Login",
			})
		}
		return serviceError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"user":    user,
		"token":   token,
		"message": "Authenticated successfully",
	})
}
