package domain

import (
	"errors"
)

var (
	// ErrGeocodingFailed means the service answered but found nothing for
	// the address; the triggering operation must be rejected.
	ErrGeocodingFailed = errors.New("no location found for the specified address")
	// ErrGeocodingUnavailable is a transient transport failure or timeout;
	// callers may retry the whole operation.
	ErrGeocodingUnavailable = errors.New("geocoding service unavailable")
)

// GeocodeResult is one candidate match for a free-text address. Consumers use
// only the first candidate of the returned list.
type GeocodeResult struct {
	Latitude         float64
	Longitude        float64
	FormattedAddress string
	Street           string
	City             string
	State            string
	Zipcode          string
	CountryCode      string
}
