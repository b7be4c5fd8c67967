package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TemplateField describes one custom field collected on a tasting note.
// Only the presence of the three keys is validated; type is free-form.
type TemplateField struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

type Template struct {
	gorm.Model
	UserID    uint `gorm:"index"`
	Name      string
	Fields    datatypes.JSONSlice[TemplateField]
	IsDefault bool

	User User `gorm:"constraint:OnDelete:CASCADE;"`
}
