package admin

import (
	"zerohunger-backend/domain"
	"zerohunger-backend/entities"
	"zerohunger-backend/pkg/donation"
	"zerohunger-backend/pkg/ngo"
	"zerohunger-backend/pkg/notification"
	"zerohunger-backend/pkg/restaurant"

	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type (
	AdminService interface {
		GetPendingVerifications(ctx context.Context) (*domain.PendingVerifications, error)
		VerifyEntity(ctx context.Context, entityID string, req domain.VerifyEntityRequest) (*domain.VerifiedEntity, error)
		GetSystemStats(ctx context.Context) (*domain.SystemStats, error)
		ListNGOs(ctx context.Context) ([]*domain.NGOProfile, error)
		ListRestaurants(ctx context.Context) ([]*domain.RestaurantProfile, error)
	}

	adminService struct {
		ngoRepository        ngo.NGORepository
		restaurantRepository restaurant.RestaurantRepository
		donationRepository   donation.DonationRepository
		dispatcher           notification.Dispatcher
	}
)

func NewAdminService(
	ngoRepository ngo.NGORepository,
	restaurantRepository restaurant.RestaurantRepository,
	donationRepository donation.DonationRepository,
	dispatcher notification.Dispatcher,
) AdminService {
	return &adminService{
		ngoRepository:        ngoRepository,
		restaurantRepository: restaurantRepository,
		donationRepository:   donationRepository,
		dispatcher:           dispatcher,
	}
}

func (s *adminService) GetPendingVerifications(ctx context.Context) (*domain.PendingVerifications, error) {
	ngos, err := s.ngoRepository.ListUnverifiedNGOs(ctx)
	if err != nil {
		return nil, err
	}
	restaurants, err := s.restaurantRepository.ListUnverifiedRestaurants(ctx)
	if err != nil {
		return nil, err
	}

	result := &domain.PendingVerifications{
		NGOs:        make([]*domain.NGOProfile, 0, len(ngos)),
		Restaurants: make([]*domain.RestaurantProfile, 0, len(restaurants)),
		Count:       len(ngos) + len(restaurants),
	}
	for _, n := range ngos {
		result.NGOs = append(result.NGOs, ngo.ToNGOProfile(n))
	}
	for _, r := range restaurants {
		result.Restaurants = append(result.Restaurants, restaurant.ToRestaurantProfile(r))
	}
	return result, nil
}

// VerifyEntity resolves the id against both registries once, flips the
// verification flag, and mails the outcome. The entity id space is shared
// (uuids), so the first registry that knows the id wins.
func (s *adminService) VerifyEntity(ctx context.Context, entityID string, req domain.VerifyEntityRequest) (*domain.VerifiedEntity, error) {
	approved := req.Status == "approved"

	var verified *domain.VerifiedEntity

	if n, err := s.ngoRepository.GetNGOByID(ctx, entityID); err == nil {
		if err := s.ngoRepository.UpdateNGO(ctx, entityID, map[string]interface{}{"verified": approved}); err != nil {
			return nil, err
		}
		verified = &domain.VerifiedEntity{
			ID:       n.ID.String(),
			Name:     n.Name,
			Email:    n.Email,
			Role:     domain.RoleNGO,
			Verified: approved,
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if verified == nil {
		r, err := s.restaurantRepository.GetRestaurantByID(ctx, entityID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrEntityNotFound
			}
			return nil, err
		}
		if err := s.restaurantRepository.UpdateRestaurant(ctx, entityID, map[string]interface{}{"verified": approved}); err != nil {
			return nil, err
		}
		verified = &domain.VerifiedEntity{
			ID:       r.ID.String(),
			Name:     r.Name,
			Email:    r.Email,
			Role:     domain.RoleRestaurant,
			Verified: approved,
		}
	}

	subject := "Account Verification Rejected"
	message := fmt.Sprintf("Your verification was rejected. Reason: %s\n\nPlease contact support for more information.", reasonOrDefault(req.Reason))
	if approved {
		subject = "Your ZeroHunger Account Has Been Verified"
		message = fmt.Sprintf("Congratulations! Your %s account has been verified. You can now access all features.", verified.Role)
	}
	email := verified.Email
	notification.Dispatch(func() error {
		return s.dispatcher.Notify(email, subject, message)
	})

	return verified, nil
}

func reasonOrDefault(reason string) string {
	if reason == "" {
		return "Not specified"
	}
	return reason
}

func (s *adminService) GetSystemStats(ctx context.Context) (*domain.SystemStats, error) {
	total, err := s.donationRepository.CountDonations(ctx, "")
	if err != nil {
		return nil, err
	}
	available, err := s.donationRepository.CountDonations(ctx, entities.DonationStatusAvailable)
	if err != nil {
		return nil, err
	}
	claimed, err := s.donationRepository.CountDonations(ctx, entities.DonationStatusClaimed)
	if err != nil {
		return nil, err
	}
	delivered, err := s.donationRepository.CountDonations(ctx, entities.DonationStatusDelivered)
	if err != nil {
		return nil, err
	}
	cancelled, err := s.donationRepository.CountDonations(ctx, entities.DonationStatusCancelled)
	if err != nil {
		return nil, err
	}
	ngos, err := s.ngoRepository.CountVerifiedNGOs(ctx)
	if err != nil {
		return nil, err
	}
	restaurants, err := s.restaurantRepository.CountVerifiedRestaurants(ctx)
	if err != nil {
		return nil, err
	}

	fulfillmentRate := 0
	if total > 0 {
		fulfillmentRate = int(float64(claimed+delivered) / float64(total) * 100)
	}

	return &domain.SystemStats{
		Donations: domain.DonationStats{
			Total:           total,
			Available:       available,
			Claimed:         claimed,
			Delivered:       delivered,
			Cancelled:       cancelled,
			FulfillmentRate: fulfillmentRate,
		},
		Users: domain.UserStats{
			NGOs:        ngos,
			Restaurants: restaurants,
		},
	}, nil
}

func (s *adminService) ListNGOs(ctx context.Context) ([]*domain.NGOProfile, error) {
	ngos, err := s.ngoRepository.ListNGOs(ctx, false)
	if err != nil {
		return nil, err
	}
	result := make([]*domain.NGOProfile, 0, len(ngos))
	for _, n := range ngos {
		result = append(result, ngo.ToNGOProfile(n))
	}
	return result, nil
}

func (s *adminService) ListRestaurants(ctx context.Context) ([]*domain.RestaurantProfile, error) {
	restaurants, err := s.restaurantRepository.ListRestaurants(ctx, false)
	if err != nil {
		return nil, err
	}
	result := make([]*domain.RestaurantProfile, 0, len(restaurants))
	for _, r := range restaurants {
		result = append(result, restaurant.ToRestaurantProfile(r))
	}
	return result, nil
}
