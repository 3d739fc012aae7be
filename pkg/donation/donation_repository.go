package donation

import (
	"zerohunger-backend/entities"

	"context"
	"time"

	"gorm.io/gorm"
)

type (
	DonationRepository interface {
		CreateDonation(ctx context.Context, donation *entities.Donation) error
		GetDonationByID(ctx context.Context, id string) (*entities.Donation, error)
		GetRestaurantDonations(ctx context.Context, restaurantID string) ([]*entities.Donation, error)
		GetNGODonations(ctx context.Context, ngoID string, statuses ...string) ([]*entities.Donation, error)
		GetAllDonations(ctx context.Context) ([]*entities.Donation, error)
		GetNearbyDonations(ctx context.Context, lat, lng, radiusKm float64, status string) ([]*entities.Donation, error)

		// Conditional transitions. Each issues a single UPDATE whose WHERE
		// clause carries the lifecycle precondition; the returned count is
		// the number of rows that matched it (0 or 1). The claim race is
		// resolved here, inside the database, not in application code.
		ClaimDonation(ctx context.Context, id, ngoID string, claimedAt time.Time) (int64, error)
		CompleteDonation(ctx context.Context, id, ngoID string, deliveredAt time.Time) (int64, error)
		CancelDonation(ctx context.Context, id, adminID, reason string) (int64, error)
		DeleteAvailableDonation(ctx context.Context, id string) (int64, error)

		UpdateDonation(ctx context.Context, id string, updates map[string]interface{}) error
		CountDonations(ctx context.Context, status string) (int64, error)
	}

	donationRepository struct {
		db *gorm.DB
	}
)

func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepository{db: db}
}

func (r *donationRepository) CreateDonation(ctx context.Context, donation *entities.Donation) error {
	return r.db.WithContext(ctx).Create(donation).Error
}

func (r *donationRepository) GetDonationByID(ctx context.Context, id string) (*entities.Donation, error) {
	var donation entities.Donation
	if err := r.db.WithContext(ctx).
		Preload("Restaurant").
		Preload("NGO").
		Where("id = ?", id).
		First(&donation).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *donationRepository) GetRestaurantDonations(ctx context.Context, restaurantID string) ([]*entities.Donation, error) {
	var donations []*entities.Donation
	if err := r.db.WithContext(ctx).
		Preload("NGO").
		Where("restaurant_id = ?", restaurantID).
		Order("created_at DESC").
		Find(&donations).Error; err != nil {
		return nil, err
	}
	return donations, nil
}

func (r *donationRepository) GetNGODonations(ctx context.Context, ngoID string, statuses ...string) ([]*entities.Donation, error) {
	var donations []*entities.Donation
	query := r.db.WithContext(ctx).
		Preload("Restaurant").
		Where("ngo_id = ?", ngoID)

	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	if err := query.Order("created_at DESC").Find(&donations).Error; err != nil {
		return nil, err
	}
	return donations, nil
}

func (r *donationRepository) GetAllDonations(ctx context.Context) ([]*entities.Donation, error) {
	var donations []*entities.Donation
	if err := r.db.WithContext(ctx).
		Preload("Restaurant").
		Preload("NGO").
		Order("created_at DESC").
		Find(&donations).Error; err != nil {
		return nil, err
	}
	return donations, nil
}

func (r *donationRepository) GetNearbyDonations(ctx context.Context, lat, lng, radiusKm float64, status string) ([]*entities.Donation, error) {
	var donations []*entities.Donation

	// Containment test runs against the earthdistance index. Requires:
	// CREATE EXTENSION IF NOT EXISTS "cube";
	// CREATE EXTENSION IF NOT EXISTS "earthdistance" CASCADE;
	query := `
		SELECT *
		FROM donations
		WHERE status = ?
		  AND earth_box(ll_to_earth(?, ?), ?) @> ll_to_earth(location_latitude, location_longitude)
		  AND earth_distance(ll_to_earth(?, ?), ll_to_earth(location_latitude, location_longitude)) <= ?
		ORDER BY earth_distance(ll_to_earth(?, ?), ll_to_earth(location_latitude, location_longitude)) ASC
	`

	radiusMeters := radiusKm * 1000

	if err := r.db.WithContext(ctx).
		Raw(query, status, lat, lng, radiusMeters, lat, lng, radiusMeters, lat, lng).
		Scan(&donations).Error; err != nil {
		return nil, err
	}

	return donations, nil
}

func (r *donationRepository) ClaimDonation(ctx context.Context, id, ngoID string, claimedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Donation{}).
		Where("id = ? AND status = ?", id, entities.DonationStatusAvailable).
		Updates(map[string]interface{}{
			"status":     entities.DonationStatusClaimed,
			"ngo_id":     ngoID,
			"claimed_at": claimedAt,
		})
	return result.RowsAffected, result.Error
}

func (r *donationRepository) CompleteDonation(ctx context.Context, id, ngoID string, deliveredAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Donation{}).
		Where("id = ? AND status = ? AND ngo_id = ?", id, entities.DonationStatusClaimed, ngoID).
		Updates(map[string]interface{}{
			"status":       entities.DonationStatusDelivered,
			"delivered_at": deliveredAt,
		})
	return result.RowsAffected, result.Error
}

func (r *donationRepository) CancelDonation(ctx context.Context, id, adminID, reason string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Donation{}).
		Where("id = ? AND status IN ?", id, []string{
			entities.DonationStatusAvailable,
			entities.DonationStatusClaimed,
		}).
		Updates(map[string]interface{}{
			"status":              entities.DonationStatusCancelled,
			"cancelled_by":        adminID,
			"cancellation_reason": reason,
		})
	return result.RowsAffected, result.Error
}

func (r *donationRepository) DeleteAvailableDonation(ctx context.Context, id string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, entities.DonationStatusAvailable).
		Delete(&entities.Donation{})
	return result.RowsAffected, result.Error
}

func (r *donationRepository) UpdateDonation(ctx context.Context, id string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Donation{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *donationRepository) CountDonations(ctx context.Context, status string) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entities.Donation{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
