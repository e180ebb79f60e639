package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rescuenet/callout_service/internal/domain"
	"github.com/rescuenet/callout_service/internal/dto"
	"github.com/rescuenet/callout_service/internal/helper"
	"github.com/rescuenet/callout_service/internal/helper/utils"
	"github.com/rescuenet/callout_service/internal/services"
)

type EventHandler struct {
	svc  services.EventService
	auth helper.Auth
}

func NewEventHandler(svc services.EventService, auth helper.Auth) *EventHandler {
	return &EventHandler{svc: svc, auth: auth}
}

func (h *EventHandler) SetupRoutes(app *fiber.App) {
	app.Get("/events", h.Index)
	app.Post("/event", h.Store)
	app.Get("/event/:id", h.Show)
	app.Put("/event/:id", h.Update)
	app.Delete("/event/:id", h.Destroy)
	app.Post("/event/:id/activate", h.Activate)
	app.Post("/event/:id/finish", h.Finish)
	app.Post("/event/:id/accept", h.Accept)
	app.Post("/event/:id/decline", h.Decline)
}

func (h *EventHandler) Index(ctx *fiber.Ctx) error {
	events, err := h.svc.ListEvents()
	if err != nil {
		return serviceError(ctx, err)
	}
	return utils.ResponseJSON(ctx, fiber.StatusOK, events)
}

func (h *EventHandler) Store(ctx *fiber.Ctx) error {
	user, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, err.Error())
	}

	var requestBody dto.CreateEventRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	event, err := h.svc.CreateEvent(user, requestBody)
	if err != nil {
		return serviceError(ctx, err)
	}
	return utils.ResponseJSON(ctx, fiber.StatusCreated, event)
}

func (h *EventHandler) Show(ctx *fiber.Ctx) error {
	eventID, err := eventIDParam(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusNotFound, "event not found")
	}

	event, err := h.svc.GetEvent(eventID)
	if err != nil {
		return serviceError(ctx, err)
	}
	return utils.ResponseJSON(ctx, fiber.StatusOK, event)
}

func (h *EventHandler) Update(ctx *fiber.Ctx) error {
	user, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, err.Error())
	}

	eventID, err := eventIDParam(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusNotFound, "event not found")
	}

	var requestBody dto.UpdateEventRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	event, err := h.svc.UpdateEvent(user, eventID, requestBody)
	if err != nil {
		return serviceError(ctx, err)
	}
	return utils.ResponseJSON(ctx, fiber.StatusOK, event)
}

func (h *EventHandler) Destroy(ctx *fiber.Ctx) error {
	user, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, err.Error())
	}

	eventID, err := eventIDParam(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusNotFound, "event not found")
	}

	events, err := h.svc.DeleteEvent(user, eventID)
	if err != nil {
		return serviceError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"events": events})
}

func (h *EventHandler) Activate(ctx *fiber.Ctx) error {
	user, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, err.Error())
	}

	eventID, err := eventIDParam(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusNotFound, "event not found")
	}

	event, err := h.svc.ActivateEvent(user, eventID)
	if err != nil {
		return serviceError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"event": event})
}

func (h *EventHandler) Finish(ctx *fiber.Ctx) error {
	user, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, err.Error())
	}

	eventID, err := eventIDParam(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusNotFound, "event not found")
	}

	event, events, err := h.svc.FinishEvent(user, eventID)
	if err != nil {
		return serviceError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"event":  event,
		"events": events,
	})
}

func (h *EventHandler) Accept(ctx *fiber.Ctx) error {
	return h.respond(ctx, domain.ParticipationAccepted)
}

func (h *EventHandler) Decline(ctx *fiber.Ctx) error {
	return h.respond(ctx, domain.ParticipationDeclined)
}

func (h *EventHandler) respond(ctx *fiber.Ctx, status domain.ParticipationStatus) error {
	user, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, err.Error())
	}

	eventID, err := eventIDParam(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusNotFound, "event not found")
	}

	event, err := h.svc.Respond(user, eventID, status)
	if err != nil {
		return serviceError(ctx, err)
	}
	return utils.ResponseJSON(ctx, fiber.StatusOK, event)
}

func eventIDParam(ctx *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(ctx.Params("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
