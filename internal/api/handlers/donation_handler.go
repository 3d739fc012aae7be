package handlers

import (
	"zerohunger-backend/domain"
	"zerohunger-backend/internal/api/presenters"
	"zerohunger-backend/internal/middleware"
	"zerohunger-backend/pkg/donation"

	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	DonationHandler interface {
		CreateDonation(c *fiber.Ctx) error
		GetDonations(c *fiber.Ctx) error
		GetDonationByID(c *fiber.Ctx) error
		GetDonationHistory(c *fiber.Ctx) error
		GetNearbyDonations(c *fiber.Ctx) error
		GetPublicDonations(c *fiber.Ctx) error
		ClaimDonation(c *fiber.Ctx) error
		CompleteDonation(c *fiber.Ctx) error
		CancelDonation(c *fiber.Ctx) error
		UpdateDonation(c *fiber.Ctx) error
		DeleteDonation(c *fiber.Ctx) error
	}

	donationHandler struct {
		donationService donation.DonationService
		validator       *validator.Validate
	}
)

func NewDonationHandler(donationService donation.DonationService, validator *validator.Validate) DonationHandler {
	return &donationHandler{
		donationService: donationService,
		validator:       validator,
	}
}

// statusForError maps service errors onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrDonationNotFound),
		errors.Is(err, domain.ErrNGONotFound),
		errors.Is(err, domain.ErrRestaurantNotFound),
		errors.Is(err, domain.ErrEntityNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorizedDonationAccess):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrAccountNotVerified),
		errors.Is(err, domain.ErrUserNotAllowed):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrDonationAlreadyClaimed):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrGeocodingUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusBadRequest
	}
}

func (h *donationHandler) CreateDonation(c *fiber.Ctx) error {
	restaurantID := c.Locals("user_id").(string)

	req := new(domain.CreateDonationRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	req.FoodImage, _ = c.FormFile("food_image")

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateDonation, err)
	}

	created, err := h.donationService.CreateDonation(c.Context(), *req, restaurantID)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedCreateDonation, err)
	}

	return presenters.SuccessResponse(c, created, fiber.StatusCreated, domain.MessageSuccessCreateDonation)
}

func (h *donationHandler) GetDonations(c *fiber.Ctx) error {
	actor := middleware.ActorFromLocals(c)

	donations, err := h.donationService.GetDonations(c.Context(), actor)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedGetDonations, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"count":     len(donations),
		"donations": donations,
	}, fiber.StatusOK, domain.MessageSuccessGetDonations)
}

func (h *donationHandler) GetDonationByID(c *fiber.Ctx) error {
	actor := middleware.ActorFromLocals(c)
	donationID := c.Params("id")

	if donationID == "" {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetDonations, domain.ErrDonationNotFound)
	}

	result, err := h.donationService.GetDonationByID(c.Context(), donationID, actor)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedGetDonations, err)
	}

	return presenters.SuccessResponse(c, result, fiber.StatusOK, domain.MessageSuccessGetDonations)
}

// GetDonationHistory lists the calling restaurant's own donations.
func (h *donationHandler) GetDonationHistory(c *fiber.Ctx) error {
	actor := middleware.ActorFromLocals(c)
	actor.Role = domain.RoleRestaurant

	donations, err := h.donationService.GetDonations(c.Context(), actor)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedGetDonations, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"count":     len(donations),
		"donations": donations,
	}, fiber.StatusOK, domain.MessageSuccessGetDonations)
}

func (h *donationHandler) GetNearbyDonations(c *fiber.Ctx) error {
	ngoID := c.Locals("user_id").(string)

	donations, err := h.donationService.GetNearbyDonations(c.Context(), ngoID)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedGetNearbyDonations, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"count":     len(donations),
		"donations": donations,
	}, fiber.StatusOK, domain.MessageSuccessGetNearbyDonations)
}

func (h *donationHandler) GetPublicDonations(c *fiber.Ctx) error {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, domain.ErrInvalidCoordinates)
	}

	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, domain.ErrInvalidCoordinates)
	}

	radius, err := strconv.ParseFloat(c.Query("radius", "5"), 64)
	if err != nil || radius <= 0 {
		radius = 5
	}

	req := domain.PublicNearbyRequest{
		Latitude:  lat,
		Longitude: lng,
		Radius:    radius,
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetNearbyDonations, err)
	}

	donations, err := h.donationService.GetPublicDonations(c.Context(), req)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedGetNearbyDonations, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"count":     len(donations),
		"donations": donations,
	}, fiber.StatusOK, domain.MessageSuccessGetNearbyDonations)
}

func (h *donationHandler) ClaimDonation(c *fiber.Ctx) error {
	ngoID := c.Locals("user_id").(string)
	donationID := c.Params("id")

	claimed, err := h.donationService.ClaimDonation(c.Context(), donationID, ngoID)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedClaimDonation, err)
	}

	return presenters.SuccessResponse(c, claimed, fiber.StatusOK, domain.MessageSuccessClaimDonation)
}

func (h *donationHandler) CompleteDonation(c *fiber.Ctx) error {
	ngoID := c.Locals("user_id").(string)
	donationID := c.Params("id")

	completed, err := h.donationService.CompleteDonation(c.Context(), donationID, ngoID)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedCompleteDonation, err)
	}

	return presenters.SuccessResponse(c, completed, fiber.StatusOK, domain.MessageSuccessCompleteDonation)
}

func (h *donationHandler) CancelDonation(c *fiber.Ctx) error {
	adminID := c.Locals("user_id").(string)
	donationID := c.Params("id")

	// body is optional; a missing reason gets a default in the service
	req := new(domain.CancelDonationRequest)
	_ = c.BodyParser(req)

	cancelled, err := h.donationService.CancelDonation(c.Context(), donationID, adminID, req.Reason)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedCancelDonation, err)
	}

	return presenters.SuccessResponse(c, cancelled, fiber.StatusOK, domain.MessageSuccessCancelDonation)
}

func (h *donationHandler) UpdateDonation(c *fiber.Ctx) error {
	actor := middleware.ActorFromLocals(c)
	donationID := c.Params("id")

	req := new(domain.UpdateDonationRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateDonation, err)
	}

	updated, err := h.donationService.UpdateDonation(c.Context(), donationID, actor, *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedUpdateDonation, err)
	}

	return presenters.SuccessResponse(c, updated, fiber.StatusOK, domain.MessageSuccessUpdateDonation)
}

func (h *donationHandler) DeleteDonation(c *fiber.Ctx) error {
	actor := middleware.ActorFromLocals(c)
	donationID := c.Params("id")

	if err := h.donationService.DeleteDonation(c.Context(), donationID, actor); err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedDeleteDonation, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteDonation)
}
