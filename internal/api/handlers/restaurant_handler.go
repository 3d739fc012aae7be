package handlers

import (
	"zerohunger-backend/domain"
	"zerohunger-backend/internal/api/presenters"
	"zerohunger-backend/pkg/restaurant"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	RestaurantHandler interface {
		GetProfile(c *fiber.Ctx) error
		UpdateProfile(c *fiber.Ctx) error
	}

	restaurantHandler struct {
		restaurantService restaurant.RestaurantService
		validator         *validator.Validate
	}
)

func NewRestaurantHandler(restaurantService restaurant.RestaurantService, validator *validator.Validate) RestaurantHandler {
	return &restaurantHandler{
		restaurantService: restaurantService,
		validator:         validator,
	}
}

func (h *restaurantHandler) GetProfile(c *fiber.Ctx) error {
	restaurantID := c.Locals("user_id").(string)

	profile, err := h.restaurantService.GetProfile(c.Context(), restaurantID)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedGetRestaurantProfile, err)
	}

	return presenters.SuccessResponse(c, profile, fiber.StatusOK, domain.MessageSuccessGetRestaurantProfile)
}

func (h *restaurantHandler) UpdateProfile(c *fiber.Ctx) error {
	restaurantID := c.Locals("user_id").(string)

	req := new(domain.UpdateRestaurantProfileRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateRestaurantProfile, err)
	}

	profile, err := h.restaurantService.UpdateProfile(c.Context(), restaurantID, *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedUpdateRestaurantProfile, err)
	}

	return presenters.SuccessResponse(c, profile, fiber.StatusOK, domain.MessageSuccessUpdateRestaurantProfile)
}
