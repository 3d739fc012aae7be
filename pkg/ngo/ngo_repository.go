package ngo

import (
	"zerohunger-backend/entities"

	"context"

	"gorm.io/gorm"
)

type (
	NGORepository interface {
		GetNGOByID(ctx context.Context, id string) (*entities.NGO, error)
		GetVerifiedNGOEmailsNear(ctx context.Context, lat, lng, radiusKm float64) ([]string, error)
		UpdateNGO(ctx context.Context, id string, updates map[string]interface{}) error
		ListNGOs(ctx context.Context, verifiedOnly bool) ([]*entities.NGO, error)
		ListUnverifiedNGOs(ctx context.Context) ([]*entities.NGO, error)
		CountVerifiedNGOs(ctx context.Context) (int64, error)
	}

	ngoRepository struct {
		db *gorm.DB
	}
)

func NewNGORepository(db *gorm.DB) NGORepository {
	return &ngoRepository{db: db}
}

func (r *ngoRepository) GetNGOByID(ctx context.Context, id string) (*entities.NGO, error) {
	var ngo entities.NGO
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ngo).Error; err != nil {
		return nil, err
	}
	return &ngo, nil
}

func (r *ngoRepository) GetVerifiedNGOEmailsNear(ctx context.Context, lat, lng, radiusKm float64) ([]string, error) {
	var emails []string

	query := `
		SELECT email
		FROM ngos
		WHERE verified = true
		  AND location_geocoded = true
		  AND earth_box(ll_to_earth(?, ?), ?) @> ll_to_earth(location_latitude, location_longitude)
		  AND earth_distance(ll_to_earth(?, ?), ll_to_earth(location_latitude, location_longitude)) <= ?
	`

	radiusMeters := radiusKm * 1000

	if err := r.db.WithContext(ctx).
		Raw(query, lat, lng, radiusMeters, lat, lng, radiusMeters).
		Scan(&emails).Error; err != nil {
		return nil, err
	}

	return emails, nil
}

func (r *ngoRepository) UpdateNGO(ctx context.Context, id string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&entities.NGO{}).
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

func (r *ngoRepository) ListNGOs(ctx context.Context, verifiedOnly bool) ([]*entities.NGO, error) {
	var ngos []*entities.NGO
	query := r.db.WithContext(ctx)
	if verifiedOnly {
		query = query.Where("verified = ?", true)
	}
	if err := query.Order("created_at DESC").Find(&ngos).Error; err != nil {
		return nil, err
	}
	return ngos, nil
}

func (r *ngoRepository) ListUnverifiedNGOs(ctx context.Context) ([]*entities.NGO, error) {
	var ngos []*entities.NGO
	if err := r.db.WithContext(ctx).
		Where("verified = ?", false).
		Order("created_at DESC").
		Find(&ngos).Error; err != nil {
		return nil, err
	}
	return ngos, nil
}

func (r *ngoRepository) CountVerifiedNGOs(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.NGO{}).
		Where("verified = ?", true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
