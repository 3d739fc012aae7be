package handlers

import (
	"zerohunger-backend/domain"
	"zerohunger-backend/internal/api/presenters"
	"zerohunger-backend/pkg/admin"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	AdminHandler interface {
		GetPendingVerifications(c *fiber.Ctx) error
		VerifyEntity(c *fiber.Ctx) error
		GetSystemStats(c *fiber.Ctx) error
		GetAllNGOs(c *fiber.Ctx) error
		GetAllRestaurants(c *fiber.Ctx) error
	}

	adminHandler struct {
		adminService admin.AdminService
		validator    *validator.Validate
	}
)

func NewAdminHandler(adminService admin.AdminService, validator *validator.Validate) AdminHandler {
	return &adminHandler{
		adminService: adminService,
		validator:    validator,
	}
}

func (h *adminHandler) GetPendingVerifications(c *fiber.Ctx) error {
	pending, err := h.adminService.GetPendingVerifications(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedGetPendingVerifications, err)
	}

	return presenters.SuccessResponse(c, pending, fiber.StatusOK, domain.MessageSuccessGetPendingVerifications)
}

func (h *adminHandler) VerifyEntity(c *fiber.Ctx) error {
	entityID := c.Params("id")

	req := new(domain.VerifyEntityRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedVerifyEntity, err)
	}

	verified, err := h.adminService.VerifyEntity(c.Context(), entityID, *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedVerifyEntity, err)
	}

	return presenters.SuccessResponse(c, verified, fiber.StatusOK, domain.MessageSuccessVerifyEntity)
}

func (h *adminHandler) GetSystemStats(c *fiber.Ctx) error {
	stats, err := h.adminService.GetSystemStats(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedGetSystemStats, err)
	}

	return presenters.SuccessResponse(c, stats, fiber.StatusOK, domain.MessageSuccessGetSystemStats)
}

func (h *adminHandler) GetAllNGOs(c *fiber.Ctx) error {
	ngos, err := h.adminService.ListNGOs(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedGetEntities, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"count": len(ngos),
		"ngos":  ngos,
	}, fiber.StatusOK, domain.MessageSuccessGetEntities)
}

func (h *adminHandler) GetAllRestaurants(c *fiber.Ctx) error {
	restaurants, err := h.adminService.ListRestaurants(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedGetEntities, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"count":       len(restaurants),
		"restaurants": restaurants,
	}, fiber.StatusOK, domain.MessageSuccessGetEntities)
}
