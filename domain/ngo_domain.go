package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessGetNGOProfile    = "ngo profile retrieved successfully"
	MessageSuccessUpdateNGOProfile = "ngo profile updated successfully"
	MessageSuccessUpdateRadius     = "operating radius updated successfully"

	MessageFailedGetNGOProfile    = "failed to retrieve ngo profile"
	MessageFailedUpdateNGOProfile = "failed to update ngo profile"
	MessageFailedUpdateRadius     = "failed to update operating radius"

	ErrNGONotFound        = errors.New("ngo not found")
	ErrAccountNotVerified = errors.New("account is not verified yet")
	ErrLocationNotSet     = errors.New("location not set, update your profile with a valid address")
	ErrInvalidRadius      = errors.New("operating radius must be between 1 and 100 kilometers")
)

type (
	UpdateNGOProfileRequest struct {
		Name    string `json:"name" validate:"omitempty"`
		Phone   string `json:"phone" validate:"omitempty"`
		Address string `json:"address" validate:"omitempty"`
	}

	UpdateOperatingRadiusRequest struct {
		OperatingRadius float64 `json:"operating_radius" validate:"required,min=1,max=100"`
	}

	NGOProfile struct {
		ID              string           `json:"id"`
		RegistrationID  string           `json:"registration_id"`
		Name            string           `json:"name"`
		Email           string           `json:"email"`
		Phone           string           `json:"phone"`
		Address         string           `json:"address"`
		Location        DonationLocation `json:"location"`
		OperatingRadius float64          `json:"operating_radius"`
		Verified        bool             `json:"verified"`
		CreatedAt       time.Time        `json:"created_at"`
	}
)
