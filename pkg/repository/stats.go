package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"winenow.app/WineNowNote/pkg/model"
)

// StatsRepository is the read-only aggregation surface consumed by the
// dashboard handlers.
type StatsRepository interface {
	GetNoteTotals(ctx context.Context, userID uint, start *time.Time, end *time.Time) (*model.NoteTotals, error)
	GetTypeCounts(ctx context.Context, userID uint, start *time.Time, end *time.Time) ([]*model.TypeCount, error)
	GetRegionCounts(ctx context.Context, userID uint, start *time.Time, end *time.Time) ([]*model.RegionCount, error)
	GetRatingCounts(ctx context.Context, userID uint, start *time.Time, end *time.Time) ([]*model.RatingCount, error)
	GetMonthlyTrend(ctx context.Context, userID uint, since time.Time, start *time.Time, end *time.Time) ([]*model.MonthCount, error)
	GetTopWines(ctx context.Context, userID uint, sortBy string, limit int) ([]*model.TopWine, error)
	GetCalendarNotes(ctx context.Context, userID uint, from time.Time, to time.Time) ([]*model.TastingNote, error)
}

func applyDateRange(query *gorm.DB, start *time.Time, end *time.Time) *gorm.DB {
	if start != nil {
		query = query.Where("tn.tasted_date >= ?", *start)
	}

	if end != nil {
		query = query.Where("tn.tasted_date <= ?", *end)
	}

	return query
}

func (r *Repository) GetNoteTotals(ctx context.Context, userID uint, start *time.Time, end *time.Time) (*model.NoteTotals, error) {
	var totals model.NoteTotals

	query := r.DB.WithContext(ctx).Table("tasting_notes as tn").
		Select("count(tn.id) as total_tastings, "+
			"count(distinct tn.wine_id) as total_wines, "+
			"avg(tn.rating) as average_rating").
		Where("tn.user_id = ?", userID).
		Where("tn.deleted_at is null")

	query = applyDateRange(query, start, end)

	if result := query.Scan(&totals); result.Error != nil {
		return nil, result.Error
	}

	return &totals, nil
}

// GetTypeCounts groups the user's notes by wine type, descending by count
// with the type name as a deterministic tie-break.
func (r *Repository) GetTypeCounts(ctx context.Context, userID uint, start *time.Time, end *time.Time) ([]*model.TypeCount, error) {
	var counts []*model.TypeCount

	query := r.DB.WithContext(ctx).Table("tasting_notes as tn").
		Select("w.type as type, count(tn.id) as count").
		Joins("INNER JOIN wines w on w.id = tn.wine_id").
		Where("tn.user_id = ?", userID).
		Where("tn.deleted_at is null")

	query = applyDateRange(query, start, end)

	result := query.Group("w.type").Order("count desc, w.type asc").Find(&counts)
	if result.Error != nil {
		return nil, result.Error
	}

	return counts, nil
}

// GetRegionCounts mirrors GetTypeCounts for wine regions; wines without
// a region are excluded.
func (r *Repository) GetRegionCounts(ctx context.Context, userID uint, start *time.Time, end *time.Time) ([]*model.RegionCount, error) {
	var counts []*model.RegionCount

	query := r.DB.WithContext(ctx).Table("tasting_notes as tn").
		Select("w.region as region, count(tn.id) as count").
		Joins("INNER JOIN wines w on w.id = tn.wine_id").
		Where("tn.user_id = ?", userID).
		Where("w.region <> ''").
		Where("tn.deleted_at is null")

	query = applyDateRange(query, start, end)

	result := query.Group("w.region").Order("count desc, w.region asc").Find(&counts)
	if result.Error != nil {
		return nil, result.Error
	}

	return counts, nil
}

func (r *Repository) GetRatingCounts(ctx context.Context, userID uint, start *time.Time, end *time.Time) ([]*model.RatingCount, error) {
	var counts []*model.RatingCount

	query := r.DB.WithContext(ctx).Table("tasting_notes as tn").
		Select("tn.rating as rating, count(tn.id) as count").
		Where("tn.user_id = ?", userID).
		Where("tn.deleted_at is null")

	query = applyDateRange(query, start, end)

	result := query.Group("tn.rating").Order("tn.rating asc").Find(&counts)
	if result.Error != nil {
		return nil, result.Error
	}

	return counts, nil
}

// GetMonthlyTrend buckets notes by calendar month since the given anchor
// date, on top of any requested range filters. Months without notes do
// not produce rows.
func (r *Repository) GetMonthlyTrend(ctx context.Context, userID uint, since time.Time, start *time.Time, end *time.Time) ([]*model.MonthCount, error) {
	var counts []*model.MonthCount

	query := r.DB.WithContext(ctx).Table("tasting_notes as tn").
		Select("to_char(tn.tasted_date, 'YYYY-MM') as month, count(tn.id) as count").
		Where("tn.user_id = ?", userID).
		Where("tn.tasted_date >= ?", since).
		Where("tn.deleted_at is null")

	query = applyDateRange(query, start, end)

	result := query.Group("month").Order("month asc").Find(&counts)
	if result.Error != nil {
		return nil, result.Error
	}

	return counts, nil
}

// GetTopWines ranks the user's distinct wines. sortBy "rating" orders by
// average rating with count as tie-break; anything else orders by count
// with average rating as tie-break. The inner join drops notes whose
// wine row has been deleted.
func (r *Repository) GetTopWines(ctx context.Context, userID uint, sortBy string, limit int) ([]*model.TopWine, error) {
	var wines []*model.TopWine

	ordering := "count desc, avg_rating desc"
	if sortBy == "rating" {
		ordering = "avg_rating desc, count desc"
	}

	result := r.DB.WithContext(ctx).Table("tasting_notes as tn").
		Select("w.id as wine_id, w.name as name, w.type as type, "+
			"w.region as region, w.country as country, w.vintage as vintage, w.winery as winery, "+
			"count(tn.id) as count, avg(tn.rating) as avg_rating").
		Joins("INNER JOIN wines w on w.id = tn.wine_id").
		Where("tn.user_id = ?", userID).
		Where("tn.deleted_at is null").
		Where("w.deleted_at is null").
		Group("w.id, w.name, w.type, w.region, w.country, w.vintage, w.winery").
		Order(ordering).
		Limit(limit).
		Find(&wines)

	if result.Error != nil {
		return nil, result.Error
	}

	return wines, nil
}

// GetCalendarNotes returns the user's notes with tasted_date in [from, to),
// wine preloaded, in day order and creation order within a day.
func (r *Repository) GetCalendarNotes(ctx context.Context, userID uint, from time.Time, to time.Time) ([]*model.TastingNote, error) {
	var notes []*model.TastingNote

	result := r.DB.WithContext(ctx).
		Joins("Wine").
		Where("tasting_notes.user_id = ?", userID).
		Where("tasting_notes.tasted_date >= ? AND tasting_notes.tasted_date < ?", from, to).
		Order("tasting_notes.tasted_date asc, tasting_notes.id asc").
		Find(&notes)
	if result.Error != nil {
		return nil, result.Error
	}

	return notes, nil
}
