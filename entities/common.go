package entities

import (
	"time"
)

type Timestamp struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Location is the geocoded form of a free-text address. Coordinates follow
// (latitude, longitude) in degrees. Geocoded is set by every write path that
// resolves an address, so (0,0) remains a usable coordinate pair.
type Location struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	Street           string  `json:"street,omitempty"`
	City             string  `json:"city,omitempty"`
	State            string  `json:"state,omitempty"`
	Zipcode          string  `json:"zipcode,omitempty"`
	CountryCode      string  `json:"country_code,omitempty"`
	Geocoded         bool    `json:"-"`
}

func (l Location) HasCoordinates() bool {
	return l.Geocoded
}
