package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"winenow.app/WineNowNote/pkg/model"
)

var ErrNoteNotFound = errors.New("tasting note not found")

// NoteFilter narrows a tasting note listing. The zero value lists
// nothing useful; callers always set UserID or PublicFeed.
type NoteFilter struct {
	UserID     uint
	PublicFeed bool // every user's public notes instead of the owner scope
	WineID     *uint
	Rating     *int
	StartDate  *time.Time
	EndDate    *time.Time
	Location   *string
	IsPublic   *bool
	Search     string
	Ordering   string
}

var noteOrderings = map[string]string{
	"tasted_date": "tasting_notes.tasted_date asc, tasting_notes.id asc",
	"rating":      "tasting_notes.rating asc, tasting_notes.id asc",
	"created_at":  "tasting_notes.created_at asc, tasting_notes.id asc",

	"-tasted_date": "tasting_notes.tasted_date desc, tasting_notes.id desc",
	"-rating":      "tasting_notes.rating desc, tasting_notes.id desc",
	"-created_at":  "tasting_notes.created_at desc, tasting_notes.id desc",
}

func (r *Repository) CreateNote(ctx context.Context, note model.TastingNote) (*model.TastingNote, error) {
	if result := r.DB.WithContext(ctx).Create(&note); result.Error != nil {
		return nil, result.Error
	}

	return &note, nil
}

func (r *Repository) GetNoteByID(ctx context.Context, noteID uint) (*model.TastingNote, error) {
	var note model.TastingNote

	result := r.DB.WithContext(ctx).
		Joins("Wine").
		Preload("Template").
		First(&note, noteID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}

		return nil, result.Error
	}

	return &note, nil
}

func (r *Repository) ListNotes(ctx context.Context, filter NoteFilter) ([]*model.TastingNote, error) {
	var notes []*model.TastingNote

	query := r.DB.WithContext(ctx).
		Joins("Wine").
		Preload("Template")

	updateQueryWithCriteria(filter, &query)

	ordering, found := noteOrderings[filter.Ordering]
	if !found {
		ordering = noteOrderings["-tasted_date"]
	}

	if result := query.Order(ordering).Find(&notes); result.Error != nil {
		return nil, result.Error
	}

	return notes, nil
}

func updateQueryWithCriteria(filter NoteFilter, query **gorm.DB) {
	q := *query

	if filter.PublicFeed {
		q = q.Where("tasting_notes.is_public = ?", true)
	} else {
		q = q.Where("tasting_notes.user_id = ?", filter.UserID)

		if filter.IsPublic != nil {
			q = q.Where("tasting_notes.is_public = ?", *filter.IsPublic)
		}
	}

	if filter.WineID != nil {
		q = q.Where("tasting_notes.wine_id = ?", *filter.WineID)
	}

	if filter.Rating != nil {
		q = q.Where("tasting_notes.rating = ?", *filter.Rating)
	}

	if filter.StartDate != nil {
		q = q.Where("tasting_notes.tasted_date >= ?", *filter.StartDate)
	}

	if filter.EndDate != nil {
		q = q.Where("tasting_notes.tasted_date <= ?", *filter.EndDate)
	}

	if filter.Location != nil {
		q = q.Where("tasting_notes.location = ?", *filter.Location)
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(`tasting_notes.notes ILIKE ? OR tasting_notes.aroma_notes ILIKE ? OR tasting_notes.pairing ILIKE ? OR "Wine".name ILIKE ?`,
			pattern, pattern, pattern, pattern)
	}

	*query = q
}

func (r *Repository) SaveNote(ctx context.Context, note *model.TastingNote) (*model.TastingNote, error) {
	if result := r.DB.WithContext(ctx).Save(note); result.Error != nil {
		return nil, result.Error
	}

	return note, nil
}

func (r *Repository) DeleteNote(ctx context.Context, noteID uint) error {
	result := r.DB.WithContext(ctx).Delete(&model.TastingNote{}, noteID)

	return result.Error
}

// UpdateNotePhotos persists only the photos column.
func (r *Repository) UpdateNotePhotos(ctx context.Context, noteID uint, photos []string) error {
	result := r.DB.WithContext(ctx).Model(&model.TastingNote{}).
		Where("id = ?", noteID).
		Update("photos", datatypes.NewJSONSlice(photos))
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoteNotFound
	}

	return nil
}
