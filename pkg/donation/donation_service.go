package donation

import (
	"zerohunger-backend/domain"
	"zerohunger-backend/entities"
	"zerohunger-backend/internal/utils/storage"
	"zerohunger-backend/pkg/geo"
	"zerohunger-backend/pkg/geocode"
	"zerohunger-backend/pkg/ngo"
	"zerohunger-backend/pkg/notification"
	"zerohunger-backend/pkg/restaurant"

	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// DefaultNotifyRadiusKm bounds the "new donation nearby" fan-out to NGOs.
	DefaultNotifyRadiusKm = 10

	publicCacheTTL = 30 * time.Second
)

type (
	DonationService interface {
		CreateDonation(ctx context.Context, req domain.CreateDonationRequest, restaurantID string) (*domain.Donation, error)
		GetDonationByID(ctx context.Context, id string, actor domain.Actor) (*domain.Donation, error)
		GetDonations(ctx context.Context, actor domain.Actor) ([]*domain.Donation, error)
		GetNearbyDonations(ctx context.Context, ngoID string) ([]*domain.Donation, error)
		GetPublicDonations(ctx context.Context, req domain.PublicNearbyRequest) ([]*domain.PublicDonation, error)
		ClaimDonation(ctx context.Context, id, ngoID string) (*domain.Donation, error)
		CompleteDonation(ctx context.Context, id, ngoID string) (*domain.Donation, error)
		CancelDonation(ctx context.Context, id, adminID, reason string) (*domain.Donation, error)
		UpdateDonation(ctx context.Context, id string, actor domain.Actor, req domain.UpdateDonationRequest) (*domain.Donation, error)
		DeleteDonation(ctx context.Context, id string, actor domain.Actor) error
	}

	donationService struct {
		donationRepository   DonationRepository
		ngoRepository        ngo.NGORepository
		restaurantRepository restaurant.RestaurantRepository
		geocodeService       geocode.GeocodeService
		dispatcher           notification.Dispatcher
		s3                   storage.AwsS3
		cache                *redis.Client
	}
)

func NewDonationService(
	donationRepository DonationRepository,
	ngoRepository ngo.NGORepository,
	restaurantRepository restaurant.RestaurantRepository,
	geocodeService geocode.GeocodeService,
	dispatcher notification.Dispatcher,
	s3 storage.AwsS3,
	cache *redis.Client,
) DonationService {
	return &donationService{
		donationRepository:   donationRepository,
		ngoRepository:        ngoRepository,
		restaurantRepository: restaurantRepository,
		geocodeService:       geocodeService,
		dispatcher:           dispatcher,
		s3:                   s3,
		cache:                cache,
	}
}

func (s *donationService) CreateDonation(ctx context.Context, req domain.CreateDonationRequest, restaurantID string) (*domain.Donation, error) {
	restaurantUUID, err := uuid.Parse(restaurantID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	expiryTime, err := time.Parse(time.RFC3339, req.ExpiryTime)
	if err != nil {
		return nil, domain.ErrExpiryNotInFuture
	}
	if !expiryTime.After(time.Now()) {
		return nil, domain.ErrExpiryNotInFuture
	}

	// Geocoding failure aborts the whole create; a donation is never
	// persisted without coordinates.
	candidates, err := s.geocodeService.Geocode(ctx, req.Address)
	if err != nil {
		return nil, err
	}
	loc := candidates[0]

	donationID := uuid.New()

	var imageURL string
	if req.FoodImage != nil && s.s3 != nil {
		objectKey, err := s.s3.UploadFile(
			fmt.Sprintf("donation-%s", donationID.String()),
			req.FoodImage,
			"donations",
			storage.AllowImage...,
		)
		if err != nil {
			return nil, err
		}
		imageURL = s.s3.GetPublicLinkKey(objectKey)
	}

	donation := &entities.Donation{
		ID:           donationID,
		RestaurantID: restaurantUUID,
		FoodType:     req.FoodType,
		Quantity:     req.Quantity,
		Description:  req.Description,
		Address:      req.Address,
		Location:     locationFromGeocode(loc),
		ExpiryTime:   expiryTime,
		Status:       entities.DonationStatusAvailable,
		ImageURL:     imageURL,
	}

	if err := s.donationRepository.CreateDonation(ctx, donation); err != nil {
		return nil, err
	}

	s.notifyNearbyNGOs(donation)

	return toDonationResponse(donation, nil), nil
}

// notifyNearbyNGOs fans out the "new donation nearby" notice. Runs after the
// donation is committed; lookup and delivery failures are logged and dropped.
func (s *donationService) notifyNearbyNGOs(donation *entities.Donation) {
	lat := donation.Location.Latitude
	lng := donation.Location.Longitude
	subject := "New Donation Available Nearby"
	message := fmt.Sprintf("New donation: %s (%s)", donation.FoodType, donation.Quantity)

	notification.Dispatch(func() error {
		emails, err := s.ngoRepository.GetVerifiedNGOEmailsNear(context.Background(), lat, lng, DefaultNotifyRadiusKm)
		if err != nil {
			return err
		}
		if len(emails) == 0 {
			return nil
		}
		return s.dispatcher.NotifyBulk(emails, subject, message)
	})
}

func (s *donationService) GetDonationByID(ctx context.Context, id string, actor domain.Actor) (*domain.Donation, error) {
	donation, err := s.donationRepository.GetDonationByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDonationNotFound
		}
		return nil, err
	}

	if !canViewDonation(donation, actor) {
		return nil, domain.ErrUnauthorizedDonationAccess
	}

	return toDonationResponse(donation, nil), nil
}

func canViewDonation(donation *entities.Donation, actor domain.Actor) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleRestaurant:
		return donation.RestaurantID.String() == actor.ID
	case domain.RoleNGO:
		if donation.Status == entities.DonationStatusAvailable {
			return true
		}
		return donation.NGOID != nil && donation.NGOID.String() == actor.ID
	}
	return false
}

func (s *donationService) GetDonations(ctx context.Context, actor domain.Actor) ([]*domain.Donation, error) {
	var (
		donations []*entities.Donation
		err       error
	)

	switch actor.Role {
	case domain.RoleRestaurant:
		donations, err = s.donationRepository.GetRestaurantDonations(ctx, actor.ID)
	case domain.RoleNGO:
		donations, err = s.donationRepository.GetNGODonations(ctx, actor.ID)
	case domain.RoleAdmin:
		donations, err = s.donationRepository.GetAllDonations(ctx)
	default:
		return nil, domain.ErrUserNotAllowed
	}
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Donation, 0, len(donations))
	for _, d := range donations {
		result = append(result, toDonationResponse(d, nil))
	}
	return result, nil
}

func (s *donationService) GetNearbyDonations(ctx context.Context, ngoID string) ([]*domain.Donation, error) {
	caller, err := s.ngoRepository.GetNGOByID(ctx, ngoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNGONotFound
		}
		return nil, err
	}
	if !caller.Verified {
		return nil, domain.ErrAccountNotVerified
	}
	if !caller.Location.HasCoordinates() {
		return nil, domain.ErrLocationNotSet
	}

	return s.findNearby(ctx, caller.Location.Latitude, caller.Location.Longitude, caller.OperatingRadius)
}

// findNearby delegates containment to the store's spatial index and then
// recomputes each result's distance with the haversine calculator so the
// reported number never depends on the index's internal approximation.
func (s *donationService) findNearby(ctx context.Context, lat, lng, radiusKm float64) ([]*domain.Donation, error) {
	donations, err := s.donationRepository.GetNearbyDonations(ctx, lat, lng, radiusKm, entities.DonationStatusAvailable)
	if err != nil {
		return nil, err
	}

	restaurantsByID, err := s.loadRestaurants(ctx, donations)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Donation, 0, len(donations))
	for _, d := range donations {
		distance := geo.Distance(lat, lng, d.Location.Latitude, d.Location.Longitude)
		if distance > radiusKm {
			continue
		}
		resp := toDonationResponse(d, restaurantsByID[d.RestaurantID.String()])
		resp.Distance = &distance
		result = append(result, resp)
	}

	sort.Slice(result, func(i, j int) bool {
		return *result[i].Distance < *result[j].Distance
	})

	return result, nil
}

func (s *donationService) loadRestaurants(ctx context.Context, donations []*entities.Donation) (map[string]*entities.Restaurant, error) {
	ids := make([]string, 0, len(donations))
	seen := make(map[string]bool, len(donations))
	for _, d := range donations {
		id := d.RestaurantID.String()
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	restaurants, err := s.restaurantRepository.GetRestaurantsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*entities.Restaurant, len(restaurants))
	for _, r := range restaurants {
		byID[r.ID.String()] = r
	}
	return byID, nil
}

func (s *donationService) GetPublicDonations(ctx context.Context, req domain.PublicNearbyRequest) ([]*domain.PublicDonation, error) {
	if !geo.ValidCoordinates(req.Latitude, req.Longitude) {
		return nil, domain.ErrInvalidCoordinates
	}

	cacheKey := fmt.Sprintf("public_donations:%.4f:%.4f:%.1f", req.Latitude, req.Longitude, req.Radius)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var cached []*domain.PublicDonation
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}

	nearby, err := s.findNearby(ctx, req.Latitude, req.Longitude, req.Radius)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.PublicDonation, 0, len(nearby))
	for _, d := range nearby {
		pub := &domain.PublicDonation{
			ID:             d.ID,
			FoodType:       d.FoodType,
			Quantity:       d.Quantity,
			Location:       d.Location,
			ExpiryTime:     d.ExpiryTime,
			Distance:       *d.Distance,
			RestaurantName: d.RestaurantName,
		}
		pub.Location.Street = ""
		result = append(result, pub)
	}

	s.fillRestaurantLocations(ctx, nearby, result)

	if s.cache != nil {
		if raw, err := json.Marshal(result); err == nil {
			s.cache.Set(ctx, cacheKey, raw, publicCacheTTL)
		}
	}

	return result, nil
}

func (s *donationService) fillRestaurantLocations(ctx context.Context, nearby []*domain.Donation, result []*domain.PublicDonation) {
	ids := make([]string, 0, len(nearby))
	for _, d := range nearby {
		ids = append(ids, d.RestaurantID)
	}
	restaurants, err := s.restaurantRepository.GetRestaurantsByIDs(ctx, ids)
	if err != nil {
		return
	}
	byID := make(map[string]*entities.Restaurant, len(restaurants))
	for _, r := range restaurants {
		byID[r.ID.String()] = r
	}
	for i, d := range nearby {
		if r, ok := byID[d.RestaurantID]; ok {
			result[i].RestaurantLocation = domain.DonationLocation{
				Latitude:  r.Location.Latitude,
				Longitude: r.Location.Longitude,
				City:      r.Location.City,
			}
		}
	}
}

func (s *donationService) ClaimDonation(ctx context.Context, id, ngoID string) (*domain.Donation, error) {
	caller, err := s.ngoRepository.GetNGOByID(ctx, ngoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNGONotFound
		}
		return nil, err
	}
	if !caller.Verified {
		return nil, domain.ErrAccountNotVerified
	}

	// Single conditional update; concurrent claims serialize in the store
	// and all but one see zero rows matched.
	rows, err := s.donationRepository.ClaimDonation(ctx, id, ngoID, time.Now())
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		if _, err := s.donationRepository.GetDonationByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrDonationNotFound
			}
			return nil, err
		}
		return nil, domain.ErrDonationAlreadyClaimed
	}

	donation, err := s.donationRepository.GetDonationByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if donation.Restaurant != nil {
		email := donation.Restaurant.Email
		message := fmt.Sprintf(
			"Your donation (%s) has been claimed by %s. Contact: %s",
			donation.FoodType, caller.Name, caller.Phone,
		)
		notification.Dispatch(func() error {
			return s.dispatcher.Notify(email, "Donation Claimed", message)
		})
	}

	return toDonationResponse(donation, donation.Restaurant), nil
}

func (s *donationService) CompleteDonation(ctx context.Context, id, ngoID string) (*domain.Donation, error) {
	rows, err := s.donationRepository.CompleteDonation(ctx, id, ngoID, time.Now())
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// The guard failed; read once only to report which precondition did.
		donation, err := s.donationRepository.GetDonationByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrDonationNotFound
			}
			return nil, err
		}
		if donation.Status != entities.DonationStatusClaimed {
			return nil, domain.ErrInvalidDonationState
		}
		return nil, domain.ErrUnauthorizedDonationAccess
	}

	donation, err := s.donationRepository.GetDonationByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if donation.Restaurant != nil {
		email := donation.Restaurant.Email
		ngoName := ""
		if donation.NGO != nil {
			ngoName = donation.NGO.Name
		}
		message := fmt.Sprintf(
			"Your donation (%s) has been successfully delivered to %s.",
			donation.FoodType, ngoName,
		)
		notification.Dispatch(func() error {
			return s.dispatcher.Notify(email, "Donation Delivered", message)
		})
	}

	return toDonationResponse(donation, donation.Restaurant), nil
}

func (s *donationService) CancelDonation(ctx context.Context, id, adminID, reason string) (*domain.Donation, error) {
	if reason == "" {
		reason = "Admin cancelled"
	}

	rows, err := s.donationRepository.CancelDonation(ctx, id, adminID, reason)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		if _, err := s.donationRepository.GetDonationByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrDonationNotFound
			}
			return nil, err
		}
		return nil, domain.ErrInvalidDonationState
	}

	donation, err := s.donationRepository.GetDonationByID(ctx, id)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Donation %s has been cancelled by admin. Reason: %s", donation.ID, reason)
	if donation.Restaurant != nil {
		email := donation.Restaurant.Email
		notification.Dispatch(func() error {
			return s.dispatcher.Notify(email, "Donation Cancellation", message)
		})
	}
	if donation.NGO != nil {
		email := donation.NGO.Email
		notification.Dispatch(func() error {
			return s.dispatcher.Notify(email, "Donation Cancellation", message)
		})
	}

	return toDonationResponse(donation, donation.Restaurant), nil
}

func (s *donationService) UpdateDonation(ctx context.Context, id string, actor domain.Actor, req domain.UpdateDonationRequest) (*domain.Donation, error) {
	donation, err := s.donationRepository.GetDonationByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDonationNotFound
		}
		return nil, err
	}

	if !actor.IsAdmin() && donation.RestaurantID.String() != actor.ID {
		return nil, domain.ErrUnauthorizedDonationAccess
	}
	if !actor.IsAdmin() && donation.Status != entities.DonationStatusAvailable {
		return nil, domain.ErrInvalidDonationState
	}

	updates := map[string]interface{}{}
	if req.FoodType != "" {
		updates["food_type"] = req.FoodType
	}
	if req.Quantity != "" {
		updates["quantity"] = req.Quantity
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.ExpiryTime != "" {
		expiryTime, err := time.Parse(time.RFC3339, req.ExpiryTime)
		if err != nil || !expiryTime.After(time.Now()) {
			return nil, domain.ErrExpiryNotInFuture
		}
		updates["expiry_time"] = expiryTime
	}

	// Re-geocode only when the address actually changes; an unrelated edit
	// leaves the stored location untouched.
	if req.Address != "" && req.Address != donation.Address {
		candidates, err := s.geocodeService.Geocode(ctx, req.Address)
		if err != nil {
			return nil, err
		}
		loc := locationFromGeocode(candidates[0])
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
		if err := s.donationRepository.UpdateDonation(ctx, id, updates); err != nil {
			return nil, err
		}
	}

	updated, err := s.donationRepository.GetDonationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDonationResponse(updated, updated.Restaurant), nil
}

func (s *donationService) DeleteDonation(ctx context.Context, id string, actor domain.Actor) error {
	donation, err := s.donationRepository.GetDonationByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrDonationNotFound
		}
		return err
	}

	if !actor.IsAdmin() && donation.RestaurantID.String() != actor.ID {
		return domain.ErrUnauthorizedDonationAccess
	}
	if donation.Status != entities.DonationStatusAvailable {
		return domain.ErrInvalidDonationState
	}

	rows, err := s.donationRepository.DeleteAvailableDonation(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		// Claimed between the read and the delete; the guard held.
		return domain.ErrInvalidDonationState
	}
	return nil
}

func locationFromGeocode(loc *domain.GeocodeResult) entities.Location {
	return entities.Location{
		Latitude:         loc.Latitude,
		Longitude:        loc.Longitude,
		FormattedAddress: loc.FormattedAddress,
		Street:           loc.Street,
		City:             loc.City,
		State:            loc.State,
		Zipcode:          loc.Zipcode,
		CountryCode:      loc.CountryCode,
		Geocoded:         true,
	}
}

func toDonationResponse(d *entities.Donation, r *entities.Restaurant) *domain.Donation {
	resp := &domain.Donation{
		ID:           d.ID.String(),
		RestaurantID: d.RestaurantID.String(),
		FoodType:     d.FoodType,
		Quantity:     d.Quantity,
		Description:  d.Description,
		Address:      d.Address,
		Location: domain.DonationLocation{
			Latitude:         d.Location.Latitude,
			Longitude:        d.Location.Longitude,
			FormattedAddress: d.Location.FormattedAddress,
			Street:           d.Location.Street,
			City:             d.Location.City,
			State:            d.Location.State,
			Zipcode:          d.Location.Zipcode,
			CountryCode:      d.Location.CountryCode,
		},
		ExpiryTime:         d.ExpiryTime,
		Status:             d.Status,
		ImageURL:           d.ImageURL,
		ClaimedAt:          d.ClaimedAt,
		DeliveredAt:        d.DeliveredAt,
		CancellationReason: d.CancellationReason,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
	if d.NGOID != nil {
		resp.NGOID = d.NGOID.String()
	}
	if d.CancelledBy != nil {
		resp.CancelledBy = d.CancelledBy.String()
	}
	if d.NGO != nil {
		resp.NGOName = d.NGO.Name
	}
	if r != nil {
		resp.RestaurantName = r.Name
	} else if d.Restaurant != nil {
		resp.RestaurantName = d.Restaurant.Name
	}
	return resp
}
