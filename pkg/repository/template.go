package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"winenow.app/WineNowNote/pkg/model"
)

var ErrTemplateNotFound = errors.New("template not found")

// CreateTemplate inserts the template; when it is marked as the default
// the user's other defaults are cleared in the same transaction.
func (r *Repository) CreateTemplate(ctx context.Context, template model.Template) (*model.Template, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(&template); result.Error != nil {
			return result.Error
		}

		if template.IsDefault {
			return clearOtherDefaults(tx, template.UserID, template.ID)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &template, nil
}

func (r *Repository) GetTemplateByID(ctx context.Context, templateID uint) (*model.Template, error) {
	var template model.Template

	result := r.DB.WithContext(ctx).First(&template, templateID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}

		return nil, result.Error
	}

	return &template, nil
}

func (r *Repository) GetTemplatesForUser(ctx context.Context, userID uint) ([]*model.Template, error) {
	var templates []*model.Template

	result := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at desc").
		Find(&templates)
	if result.Error != nil {
		return nil, result.Error
	}

	return templates, nil
}

// SaveTemplate persists the template; the at-most-one-default invariant
// is maintained the same way CreateTemplate does.
func (r *Repository) SaveTemplate(ctx context.Context, template *model.Template) (*model.Template, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if result := tx.Save(template); result.Error != nil {
			return result.Error
		}

		if template.IsDefault {
			return clearOtherDefaults(tx, template.UserID, template.ID)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return template, nil
}

// DeleteTemplate clears the reference on notes that used the template,
// then soft-deletes it. Notes themselves are untouched.
func (r *Repository) DeleteTemplate(ctx context.Context, templateID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.TastingNote{}).
			Where("template_id = ?", templateID).
			Update("template_id", nil)
		if result.Error != nil {
			return result.Error
		}

		return tx.Delete(&model.Template{}, templateID).Error
	})
}

// SetDefaultTemplate marks one template as the user's default and clears
// the flag on every other template of the same user, atomically.
func (r *Repository) SetDefaultTemplate(ctx context.Context, userID uint, templateID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearOtherDefaults(tx, userID, templateID); err != nil {
			return err
		}

		result := tx.Model(&model.Template{}).
			Where("user_id = ? AND id = ?", userID, templateID).
			Update("is_default", true)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrTemplateNotFound
		}

		return nil
	})
}

// clearOtherDefaults drops the default flag on every template of the
// user except keepID, inside the caller's transaction.
func clearOtherDefaults(tx *gorm.DB, userID uint, keepID uint) error {
	result := tx.Model(&model.Template{}).
		Where("user_id = ? AND id <> ?", userID, keepID).
		Update("is_default", false)

	return result.Error
}
