package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessGetRestaurantProfile    = "restaurant profile retrieved successfully"
	MessageSuccessUpdateRestaurantProfile = "restaurant profile updated successfully"

	MessageFailedGetRestaurantProfile    = "failed to retrieve restaurant profile"
	MessageFailedUpdateRestaurantProfile = "failed to update restaurant profile"

	ErrRestaurantNotFound = errors.New("restaurant not found")
)

type (
	UpdateRestaurantProfileRequest struct {
		Name    string `json:"name" validate:"omitempty"`
		Phone   string `json:"phone" validate:"omitempty"`
		Address string `json:"address" validate:"omitempty"`
	}

	RestaurantProfile struct {
		ID        string           `json:"id"`
		Name      string           `json:"name"`
		Email     string           `json:"email"`
		Phone     string           `json:"phone"`
		Address   string           `json:"address"`
		Location  DonationLocation `json:"location"`
		GSTNumber string           `json:"gst_number"`
		Verified  bool             `json:"verified"`
		CreatedAt time.Time        `json:"created_at"`
	}
)
