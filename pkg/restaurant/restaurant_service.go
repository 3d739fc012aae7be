package restaurant

import (
	"zerohunger-backend/domain"
	"zerohunger-backend/entities"
	"zerohunger-backend/pkg/geocode"

	"context"
	"errors"

	"gorm.io/gorm"
)

type (
	RestaurantService interface {
		GetProfile(ctx context.Context, restaurantID string) (*domain.RestaurantProfile, error)
		UpdateProfile(ctx context.Context, restaurantID string, req domain.UpdateRestaurantProfileRequest) (*domain.RestaurantProfile, error)
	}

	restaurantService struct {
		restaurantRepository RestaurantRepository
		geocodeService       geocode.GeocodeService
	}
)

func NewRestaurantService(restaurantRepository RestaurantRepository, geocodeService geocode.GeocodeService) RestaurantService {
	return &restaurantService{
		restaurantRepository: restaurantRepository,
		geocodeService:       geocodeService,
	}
}

func (s *restaurantService) GetProfile(ctx context.Context, restaurantID string) (*domain.RestaurantProfile, error) {
	caller, err := s.restaurantRepository.GetRestaurantByID(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRestaurantNotFound
		}
		return nil, err
	}
	return ToRestaurantProfile(caller), nil
}

func (s *restaurantService) UpdateProfile(ctx context.Context, restaurantID string, req domain.UpdateRestaurantProfileRequest) (*domain.RestaurantProfile, error) {
	caller, err := s.restaurantRepository.GetRestaurantByID(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRestaurantNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}

	if req.Address != "" && req.Address != caller.Address {
		candidates, err := s.geocodeService.Geocode(ctx, req.Address)
		if err != nil {
			return nil, err
		}
		loc := candidates[0]
		updates["address"] = req.Address
		updates["location_latitude"] = loc.Latitude
		updates["location_longitude"] = loc.Longitude
		updates["location_formatted_address"] = loc.FormattedAddress
		updates["location_street"] = loc.Street
		updates["location_city"] = loc.City
		updates["location_state"] = loc.State
		updates["location_zipcode"] = loc.Zipcode
		updates["location_country_code"] = loc.CountryCode
		updates["location_geocoded"] = true
	}

	if len(updates) > 0 {
		if err := s.restaurantRepository.UpdateRestaurant(ctx, restaurantID, updates); err != nil {
			return nil, err
		}
	}

	updated, err := s.restaurantRepository.GetRestaurantByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	return ToRestaurantProfile(updated), nil
}

func ToRestaurantProfile(r *entities.Restaurant) *domain.RestaurantProfile {
	return &domain.RestaurantProfile{
		ID:      r.ID.String(),
		Name:    r.Name,
		Email:   r.Email,
		Phone:   r.Phone,
		Address: r.Address,
		Location: domain.DonationLocation{
			Latitude:         r.Location.Latitude,
			Longitude:        r.Location.Longitude,
			FormattedAddress: r.Location.FormattedAddress,
			Street:           r.Location.Street,
			City:             r.Location.City,
			State:            r.Location.State,
			Zipcode:          r.Location.Zipcode,
			CountryCode:      r.Location.CountryCode,
		},
		GSTNumber: r.GSTNumber,
		Verified:  r.Verified,
		CreatedAt: r.CreatedAt,
	}
}
