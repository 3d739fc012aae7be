package entities

import (
	"github.com/google/uuid"
)

type NGO struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	RegistrationID  string    `gorm:"uniqueIndex" json:"registration_id"`
	Name            string    `json:"name"`
	Email           string    `gorm:"uniqueIndex" json:"email"`
	Phone           string    `json:"phone"`
	Address         string    `json:"address"`
	Location        Location  `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	OperatingRadius float64   `gorm:"default:5" json:"operating_radius"` // kilometers, 1-100
	Verified        bool      `gorm:"default:false" json:"verified"`

	Donations []*Donation `gorm:"foreignKey:NGOID"`
	Timestamp
}
