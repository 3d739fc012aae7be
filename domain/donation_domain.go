package domain

import (
	"errors"
	"mime/multipart"
	"time"
)

var (
	MessageSuccessCreateDonation     = "donation created successfully"
	MessageSuccessGetDonations       = "donations retrieved successfully"
	MessageSuccessGetNearbyDonations = "nearby donations retrieved successfully"
	MessageSuccessClaimDonation      = "donation claimed successfully"
	MessageSuccessCompleteDonation   = "donation marked as delivered"
	MessageSuccessCancelDonation     = "donation cancelled successfully"
	MessageSuccessUpdateDonation     = "donation updated successfully"
	MessageSuccessDeleteDonation     = "donation deleted successfully"

	MessageFailedCreateDonation     = "failed to create donation"
	MessageFailedGetDonations       = "failed to retrieve donations"
	MessageFailedGetNearbyDonations = "failed to retrieve nearby donations"
	MessageFailedClaimDonation      = "failed to claim donation"
	MessageFailedCompleteDonation   = "failed to complete donation"
	MessageFailedCancelDonation     = "failed to cancel donation"
	MessageFailedUpdateDonation     = "failed to update donation"
	MessageFailedDeleteDonation     = "failed to delete donation"

	ErrDonationNotFound           = errors.New("donation not found")
	ErrDonationAlreadyClaimed     = errors.New("donation already claimed")
	ErrInvalidDonationState       = errors.New("operation not valid for current donation status")
	ErrUnauthorizedDonationAccess = errors.New("unauthorized access to donation")
	ErrExpiryNotInFuture          = errors.New("expiry time must be in the future")
	ErrInvalidCoordinates         = errors.New("invalid coordinates")
)

type (
	CreateDonationRequest struct {
		FoodType    string                `json:"food_type" form:"food_type" validate:"required"`
		Quantity    string                `json:"quantity" form:"quantity" validate:"required"`
		Description string                `json:"description" form:"description" validate:"required"`
		Address     string                `json:"address" form:"address" validate:"required"`
		ExpiryTime  string                `json:"expiry_time" form:"expiry_time" validate:"required"` // RFC 3339
		FoodImage   *multipart.FileHeader `json:"-" form:"food_image"`
	}

	UpdateDonationRequest struct {
		FoodType    string `json:"food_type" validate:"omitempty"`
		Quantity    string `json:"quantity" validate:"omitempty"`
		Description string `json:"description" validate:"omitempty"`
		Address     string `json:"address" validate:"omitempty"`
		ExpiryTime  string `json:"expiry_time" validate:"omitempty"`
	}

	CancelDonationRequest struct {
		Reason string `json:"reason" validate:"omitempty"`
	}

	// Latitude and longitude deliberately carry no required tag: zero is a
	// valid coordinate (equator, prime meridian) and validator treats the
	// float zero value as missing.
	PublicNearbyRequest struct {
		Latitude  float64 `json:"lat" validate:"min=-90,max=90"`
		Longitude float64 `json:"lng" validate:"min=-180,max=180"`
		Radius    float64 `json:"radius" validate:"required,min=0.1,max=100"`
	}

	DonationLocation struct {
		Latitude         float64 `json:"latitude"`
		Longitude        float64 `json:"longitude"`
		FormattedAddress string  `json:"formatted_address,omitempty"`
		Street           string  `json:"street,omitempty"`
		City             string  `json:"city,omitempty"`
		State            string  `json:"state,omitempty"`
		Zipcode          string  `json:"zipcode,omitempty"`
		CountryCode      string  `json:"country_code,omitempty"`
	}

	Donation struct {
		ID           string           `json:"id"`
		RestaurantID string           `json:"restaurant_id"`
		NGOID        string           `json:"ngo_id,omitempty"`
		FoodType     string           `json:"food_type"`
		Quantity     string           `json:"quantity"`
		Description  string           `json:"description"`
		Address      string           `json:"address"`
		Location     DonationLocation `json:"location"`
		ExpiryTime   time.Time        `json:"expiry_time"`
		Status       string           `json:"status"`
		ImageURL     string           `json:"image_url,omitempty"`

		// Distance from the query origin in kilometers, only set on
		// nearby query results.
		Distance *float64 `json:"distance,omitempty"`

		ClaimedAt          *time.Time `json:"claimed_at,omitempty"`
		DeliveredAt        *time.Time `json:"delivered_at,omitempty"`
		CancelledBy        string     `json:"cancelled_by,omitempty"`
		CancellationReason string     `json:"cancellation_reason,omitempty"`

		RestaurantName string `json:"restaurant_name,omitempty"`
		NGOName        string `json:"ngo_name,omitempty"`

		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	// PublicDonation is the restricted projection served to unauthenticated
	// callers: no contact details, no descriptions, just enough to browse.
	PublicDonation struct {
		ID                 string           `json:"id"`
		FoodType           string           `json:"food_type"`
		Quantity           string           `json:"quantity"`
		Location           DonationLocation `json:"location"`
		ExpiryTime         time.Time        `json:"expiry_time"`
		Distance           float64          `json:"distance"`
		RestaurantName     string           `json:"restaurant_name"`
		RestaurantLocation DonationLocation `json:"restaurant_location"`
	}
)
