package domain

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestPublicNearbyRequestValidation(t *testing.T) {
	v := validator.New()

	cases := []struct {
		name    string
		req     PublicNearbyRequest
		wantErr bool
	}{
		{"typical", PublicNearbyRequest{Latitude: 12.97, Longitude: 77.59, Radius: 5}, false},
		{"equator", PublicNearbyRequest{Latitude: 0, Longitude: 77.59, Radius: 5}, false},
		{"prime meridian", PublicNearbyRequest{Latitude: 51.48, Longitude: 0, Radius: 5}, false},
		{"null island", PublicNearbyRequest{Latitude: 0, Longitude: 0, Radius: 5}, false},
		{"latitude out of range", PublicNearbyRequest{Latitude: 95, Longitude: 0, Radius: 5}, true},
		{"longitude out of range", PublicNearbyRequest{Latitude: 0, Longitude: -181, Radius: 5}, true},
		{"radius missing", PublicNearbyRequest{Latitude: 12.97, Longitude: 77.59}, true},
		{"radius too large", PublicNearbyRequest{Latitude: 12.97, Longitude: 77.59, Radius: 250}, true},
	}

	for _, tc := range cases {
		err := v.Struct(tc.req)
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: validation error = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}
