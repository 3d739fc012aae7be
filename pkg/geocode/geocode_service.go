package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"zerohunger-backend/domain"
	"zerohunger-backend/internal/utils"
)

const defaultBaseURL = "https://api.opencagedata.com/geocode/v1/json"

type (
	// GeocodeService resolves free-text addresses against an external
	// geocoding provider. Results are ordered by provider confidence;
	// callers use the first candidate.
	GeocodeService interface {
		Geocode(ctx context.Context, address string) ([]*domain.GeocodeResult, error)
		ReverseGeocode(ctx context.Context, lat, lng float64) (*domain.GeocodeResult, error)
	}

	geocodeService struct {
		apiKey  string
		baseURL string
		client  *http.Client
	}
)

func NewGeocodeService() GeocodeService {
	timeout := 5 * time.Second
	if raw := utils.GetConfig("GEOCODER_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			timeout = d
		}
	}
	return &geocodeService{
		apiKey:  utils.GetConfig("OPENCAGE_API_KEY"),
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// NewGeocodeServiceWith points the adapter at a custom endpoint and client.
func NewGeocodeServiceWith(apiKey, baseURL string, client *http.Client) GeocodeService {
	return &geocodeService{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  client,
	}
}

// openCageResponse mirrors the subset of the OpenCage payload we consume.
type openCageResponse struct {
	Results []struct {
		Formatted string `json:"formatted"`
		Geometry  struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"geometry"`
		Components struct {
			Road        string `json:"road"`
			City        string `json:"city"`
			Town        string `json:"town"`
			Village     string `json:"village"`
			StateCode   string `json:"state_code"`
			Postcode    string `json:"postcode"`
			CountryCode string `json:"country_code"`
		} `json:"components"`
	} `json:"results"`
}

func (s *geocodeService) Geocode(ctx context.Context, address string) ([]*domain.GeocodeResult, error) {
	return s.query(ctx, address, 5)
}

func (s *geocodeService) ReverseGeocode(ctx context.Context, lat, lng float64) (*domain.GeocodeResult, error) {
	results, err := s.query(ctx, fmt.Sprintf("%f,%f", lat, lng), 1)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

func (s *geocodeService) query(ctx context.Context, q string, limit int) ([]*domain.GeocodeResult, error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("key", s.apiKey)
	params.Set("no_annotations", "1")
	params.Set("limit", fmt.Sprintf("%d", limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, domain.ErrGeocodingUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, domain.ErrGeocodingUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		return nil, domain.ErrGeocodingFailed
	}

	var payload openCageResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, domain.ErrGeocodingUnavailable
	}
	if len(payload.Results) == 0 {
		return nil, domain.ErrGeocodingFailed
	}

	results := make([]*domain.GeocodeResult, 0, len(payload.Results))
	for _, r := range payload.Results {
		city := r.Components.City
		if city == "" {
			city = r.Components.Town
		}
		if city == "" {
			city = r.Components.Village
		}
		results = append(results, &domain.GeocodeResult{
			Latitude:         r.Geometry.Lat,
			Longitude:        r.Geometry.Lng,
			FormattedAddress: r.Formatted,
			Street:           r.Components.Road,
			City:             city,
			State:            r.Components.StateCode,
			Zipcode:          r.Components.Postcode,
			CountryCode:      r.Components.CountryCode,
		})
	}

	return results, nil
}
