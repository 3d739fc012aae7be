package geo

import (
	"math"
	"testing"
)

func TestDistanceOneDegreeLongitudeAtEquator(t *testing.T) {
	got := Distance(0, 0, 0, 1)
	want := 111.19

	if math.Abs(got-want)/want > 0.005 {
		t.Errorf("Distance((0,0),(0,1)) = %f, want %f within 0.5%%", got, want)
	}
}

func TestDistanceSamePoint(t *testing.T) {
	if got := Distance(12.97, 77.59, 12.97, 77.59); got != 0 {
		t.Errorf("Distance(P,P) = %f, want 0", got)
	}
}

func TestDistanceSymmetry(t *testing.T) {
	a := Distance(12.97, 77.59, 13.08, 80.27)
	b := Distance(13.08, 80.27, 12.97, 77.59)

	if math.Abs(a-b) > 1e-9 {
		t.Errorf("Distance not symmetric: %f vs %f", a, b)
	}
}

func TestDistanceKnownCityPair(t *testing.T) {
	// Bangalore to Chennai, roughly 290 km great-circle.
	got := Distance(12.9716, 77.5946, 13.0827, 80.2707)
	if got < 280 || got > 300 {
		t.Errorf("Bangalore-Chennai distance = %f, want ~290", got)
	}
}

func TestValidCoordinates(t *testing.T) {
	cases := []struct {
		lat, lng float64
		want     bool
	}{
		{0, 0, true},
		{90, 180, true},
		{-90, -180, true},
		{90.1, 0, false},
		{0, 180.5, false},
		{math.NaN(), 0, false},
		{0, math.NaN(), false},
	}

	for _, tc := range cases {
		if got := ValidCoordinates(tc.lat, tc.lng); got != tc.want {
			t.Errorf("ValidCoordinates(%f, %f) = %v, want %v", tc.lat, tc.lng, got, tc.want)
		}
	}
}
