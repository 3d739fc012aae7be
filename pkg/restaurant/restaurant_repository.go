package restaurant

import (
	"zerohunger-backend/entities"

	"context"

	"gorm.io/gorm"
)

type (
	RestaurantRepository interface {
		GetRestaurantByID(ctx context.Context, id string) (*entities.Restaurant, error)
		GetRestaurantsByIDs(ctx context.Context, ids []string) ([]*entities.Restaurant, error)
		UpdateRestaurant(ctx context.Context, id string, updates map[string]interface{}) error
		ListRestaurants(ctx context.Context, verifiedOnly bool) ([]*entities.Restaurant, error)
		ListUnverifiedRestaurants(ctx context.Context) ([]*entities.Restaurant, error)
		CountVerifiedRestaurants(ctx context.Context) (int64, error)
	}

	restaurantRepository struct {
		db *gorm.DB
	}
)

func NewRestaurantRepository(db *gorm.DB) RestaurantRepository {
	return &restaurantRepository{db: db}
}

func (r *restaurantRepository) GetRestaurantByID(ctx context.Context, id string) (*entities.Restaurant, error) {
	var restaurant entities.Restaurant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&restaurant).Error; err != nil {
		return nil, err
	}
	return &restaurant, nil
}

func (r *restaurantRepository) GetRestaurantsByIDs(ctx context.Context, ids []string) ([]*entities.Restaurant, error) {
	var restaurants []*entities.Restaurant
	if len(ids) == 0 {
		return restaurants, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&restaurants).Error; err != nil {
		return nil, err
	}
	return restaurants, nil
}

func (r *restaurantRepository) UpdateRestaurant(ctx context.Context, id string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Restaurant{}).
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

func (r *restaurantRepository) ListRestaurants(ctx context.Context, verifiedOnly bool) ([]*entities.Restaurant, error) {
	var restaurants []*entities.Restaurant
	query := r.db.WithContext(ctx)
	if verifiedOnly {
		query = query.Where("verified = ?", true)
	}
	if err := query.Order("created_at DESC").Find(&restaurants).Error; err != nil {
		return nil, err
	}
	return restaurants, nil
}

func (r *restaurantRepository) ListUnverifiedRestaurants(ctx context.Context) ([]*entities.Restaurant, error) {
	var restaurants []*entities.Restaurant
	if err := r.db.WithContext(ctx).
		Where("verified = ?", false).
		Order("created_at DESC").
		Find(&restaurants).Error; err != nil {
		return nil, err
	}
	return restaurants, nil
}

func (r *restaurantRepository) CountVerifiedRestaurants(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Restaurant{}).
		Where("verified = ?", true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
