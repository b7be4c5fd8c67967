package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"winenow.app/WineNowNote/pkg/model"
)

var ErrWineNotFound = errors.New("wine not found")

func (r *Repository) AddWine(ctx context.Context, wine model.Wine) (*model.Wine, error) {
	if result := r.DB.WithContext(ctx).Create(&wine); result.Error != nil {
		return nil, result.Error
	}

	return &wine, nil
}

func (r *Repository) GetWineByID(ctx context.Context, wineID uint) (*model.Wine, error) {
	var wine model.Wine

	result := r.DB.WithContext(ctx).First(&wine, wineID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrWineNotFound
		}

		return nil, result.Error
	}

	return &wine, nil
}

func (r *Repository) FindWineByExternalID(ctx context.Context, externalID string) (*model.Wine, error) {
	wine := &model.Wine{}
	result := r.DB.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&wine)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrWineNotFound
		}

		return nil, result.Error
	}

	return wine, nil
}

// SearchWines matches q against name, winery, region and country, with
// optional exact type and region substring filters. Results are ordered
// by name and paginated.
func (r *Repository) SearchWines(ctx context.Context, q string, wineType string, region string, offset int, limit int) ([]*model.Wine, int64, error) {
	var (
		wines []*model.Wine
		total int64
	)

	query := r.DB.WithContext(ctx).Model(&model.Wine{})

	if q != "" {
		pattern := "%" + q + "%"
		query = query.Where("name ILIKE ? OR winery ILIKE ? OR region ILIKE ? OR country ILIKE ?",
			pattern, pattern, pattern, pattern)
	}

	if wineType != "" {
		query = query.Where("type = ?", wineType)
	}

	if region != "" {
		query = query.Where("region ILIKE ?", "%"+region+"%")
	}

	if result := query.Count(&total); result.Error != nil {
		return nil, 0, result.Error
	}

	result := query.Order("name asc").Offset(offset).Limit(limit).Find(&wines)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return wines, total, nil
}

// GetWineAggregates computes the tasting note count and average rating
// for a single catalog wine, over all users' notes.
func (r *Repository) GetWineAggregates(ctx context.Context, wineID uint) (*model.WineAggregates, error) {
	var aggregates model.WineAggregates

	result := r.DB.WithContext(ctx).Table("tasting_notes").
		Select("count(id) as note_count, avg(rating) as average_rating").
		Where("wine_id = ?", wineID).
		Where("deleted_at is null").
		Scan(&aggregates)

	if result.Error != nil {
		return nil, result.Error
	}

	return &aggregates, nil
}
