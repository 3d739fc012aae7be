package handlers

import (
	"zerohunger-backend/domain"
	"zerohunger-backend/internal/api/presenters"
	"zerohunger-backend/pkg/ngo"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	NGOHandler interface {
		GetProfile(c *fiber.Ctx) error
		UpdateProfile(c *fiber.Ctx) error
		UpdateOperatingRadius(c *fiber.Ctx) error
	}

	ngoHandler struct {
		ngoService ngo.NGOService
		validator  *validator.Validate
	}
)

func NewNGOHandler(ngoService ngo.NGOService, validator *validator.Validate) NGOHandler {
	return &ngoHandler{
		ngoService: ngoService,
		validator:  validator,
	}
}

func (h *ngoHandler) GetProfile(c *fiber.Ctx) error {
	ngoID := c.Locals("user_id").(string)

	profile, err := h.ngoService.GetProfile(c.Context(), ngoID)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedGetNGOProfile, err)
	}

	return presenters.SuccessResponse(c, profile, fiber.StatusOK, domain.MessageSuccessGetNGOProfile)
}

func (h *ngoHandler) UpdateProfile(c *fiber.Ctx) error {
	ngoID := c.Locals("user_id").(string)

	req := new(domain.UpdateNGOProfileRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateNGOProfile, err)
	}

	profile, err := h.ngoService.UpdateProfile(c.Context(), ngoID, *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedUpdateNGOProfile, err)
	}

	return presenters.SuccessResponse(c, profile, fiber.StatusOK, domain.MessageSuccessUpdateNGOProfile)
}

func (h *ngoHandler) UpdateOperatingRadius(c *fiber.Ctx) error {
	ngoID := c.Locals("user_id").(string)

	req := new(domain.UpdateOperatingRadiusRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateRadius, err)
	}

	profile, err := h.ngoService.UpdateOperatingRadius(c.Context(), ngoID, req.OperatingRadius)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedUpdateRadius, err)
	}

	return presenters.SuccessResponse(c, profile, fiber.StatusOK, domain.MessageSuccessUpdateRadius)
}
