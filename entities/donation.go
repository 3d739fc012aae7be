package entities

import (
	"github.com/google/uuid"
	"time"
)

const (
	DonationStatusAvailable = "available"
	DonationStatusClaimed   = "claimed"
	DonationStatusDelivered = "delivered"
	DonationStatusCancelled = "cancelled"
)

type Donation struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	RestaurantID uuid.UUID  `gorm:"index" json:"restaurant_id"`
	NGOID        *uuid.UUID `gorm:"index" json:"ngo_id,omitempty"`
	FoodType     string     `json:"food_type"`
	Quantity     string     `json:"quantity"`
	Description  string     `json:"description"`
	Address      string     `json:"address"`
	Location     Location   `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	ExpiryTime   time.Time  `json:"expiry_time"`
	Status       string     `gorm:"index;default:available" json:"status"` // available, claimed, delivered, cancelled
	ImageURL     string     `json:"image_url,omitempty"`

	ClaimedAt          *time.Time `json:"claimed_at,omitempty"`
	DeliveredAt        *time.Time `json:"delivered_at,omitempty"`
	CancelledBy        *uuid.UUID `json:"cancelled_by,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`

	Restaurant *Restaurant `gorm:"foreignKey:RestaurantID"`
	NGO        *NGO        `gorm:"foreignKey:NGOID"`
	Timestamp
}
