package domain

import (
	"errors"
)

var (
	MessageSuccessGetPendingVerifications = "pending verifications retrieved successfully"
	MessageSuccessVerifyEntity            = "verification status updated successfully"
	MessageSuccessGetSystemStats          = "system statistics retrieved successfully"
	MessageSuccessGetEntities             = "entities retrieved successfully"

	MessageFailedGetPendingVerifications = "failed to retrieve pending verifications"
	MessageFailedVerifyEntity            = "failed to update verification status"
	MessageFailedGetSystemStats          = "failed to retrieve system statistics"
	MessageFailedGetEntities             = "failed to retrieve entities"

	ErrEntityNotFound           = errors.New("entity not found")
	ErrInvalidVerificationState = errors.New("verification status must be approved or rejected")
)

type (
	VerifyEntityRequest struct {
		Status string `json:"status" validate:"required,oneof=approved rejected"`
		Reason string `json:"reason" validate:"omitempty"`
	}

	VerifiedEntity struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		Role     string `json:"role"`
		Verified bool   `json:"verified"`
	}

	PendingVerifications struct {
		NGOs        []*NGOProfile        `json:"ngos"`
		Restaurants []*RestaurantProfile `json:"restaurants"`
		Count       int                  `json:"count"`
	}

	DonationStats struct {
		Total           int64 `json:"total"`
		Available       int64 `json:"available"`
		Claimed         int64 `json:"claimed"`
		Delivered       int64 `json:"delivered"`
		Cancelled       int64 `json:"cancelled"`
		FulfillmentRate int   `json:"fulfillment_rate"` // percent
	}

	UserStats struct {
		NGOs        int64 `json:"ngos"`
		Restaurants int64 `json:"restaurants"`
	}

	SystemStats struct {
		Donations DonationStats `json:"donations"`
		Users     UserStats     `json:"users"`
	}
)
