package ngo

import (
	"zerohunger-backend/domain"
	"zerohunger-backend/entities"
	"zerohunger-backend/pkg/geocode"

	"context"
	"errors"

	"gorm.io/gorm"
)

type (
	NGOService interface {
		GetProfile(ctx context.Context, ngoID string) (*domain.NGOProfile, error)
		UpdateProfile(ctx context.Context, ngoID string, req domain.UpdateNGOProfileRequest) (*domain.NGOProfile, error)
		UpdateOperatingRadius(ctx context.Context, ngoID string, radius float64) (*domain.NGOProfile, error)
	}

	ngoService struct {
		ngoRepository  NGORepository
		geocodeService geocode.GeocodeService
	}
)

func NewNGOService(ngoRepository NGORepository, geocodeService geocode.GeocodeService) NGOService {
	return &ngoService{
		ngoRepository:  ngoRepository,
		geocodeService: geocodeService,
	}
}

func (s *ngoService) GetProfile(ctx context.Context, ngoID string) (*domain.NGOProfile, error) {
	caller, err := s.ngoRepository.GetNGOByID(ctx, ngoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNGONotFound
		}
		return nil, err
	}
	return ToNGOProfile(caller), nil
}

func (s *ngoService) UpdateProfile(ctx context.Context, ngoID string, req domain.UpdateNGOProfileRequest) (*domain.NGOProfile, error) {
	caller, err := s.ngoRepository.GetNGOByID(ctx, ngoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNGONotFound
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

	// Address changes re-resolve coordinates; anything else leaves the
	// stored location untouched.
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
		if err := s.ngoRepository.UpdateNGO(ctx, ngoID, updates); err != nil {
			return nil, err
		}
	}

	updated, err := s.ngoRepository.GetNGOByID(ctx, ngoID)
	if err != nil {
		return nil, err
	}
	return ToNGOProfile(updated), nil
}

func (s *ngoService) UpdateOperatingRadius(ctx context.Context, ngoID string, radius float64) (*domain.NGOProfile, error) {
	if radius < 1 || radius > 100 {
		return nil, domain.ErrInvalidRadius
	}

	if err := s.ngoRepository.UpdateNGO(ctx, ngoID, map[string]interface{}{
		"operating_radius": radius,
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNGONotFound
		}
		return nil, err
	}

	updated, err := s.ngoRepository.GetNGOByID(ctx, ngoID)
	if err != nil {
		return nil, err
	}
	return ToNGOProfile(updated), nil
}

func ToNGOProfile(n *entities.NGO) *domain.NGOProfile {
	return &domain.NGOProfile{
		ID:             n.ID.String(),
		RegistrationID: n.RegistrationID,
		Name:           n.Name,
		Email:          n.Email,
		Phone:          n.Phone,
		Address:        n.Address,
		Location: domain.DonationLocation{
			Latitude:         n.Location.Latitude,
			Longitude:        n.Location.Longitude,
			FormattedAddress: n.Location.FormattedAddress,
			Street:           n.Location.Street,
			City:             n.Location.City,
			State:            n.Location.State,
			Zipcode:          n.Location.Zipcode,
			CountryCode:      n.Location.CountryCode,
		},
		OperatingRadius: n.OperatingRadius,
		Verified:        n.Verified,
		CreatedAt:       n.CreatedAt,
	}
}
