package entities

import (
	"github.com/google/uuid"
)

type Restaurant struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name      string    `json:"name"`
	Email     string    `gorm:"uniqueIndex" json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Location  Location  `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	GSTNumber string    `gorm:"uniqueIndex" json:"gst_number"`
	Verified  bool      `gorm:"default:false" json:"verified"`

	Donations []*Donation `gorm:"foreignKey:RestaurantID"`
	Timestamp
}
