package model

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	UUID               uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	Email              string    `gorm:"uniqueIndex"`
	Username           string    `gorm:"uniqueIndex"`
	PasswordHash       string
	ProfileImage       string
	PreferredWineTypes datatypes.JSONSlice[string]
	Bio                string

	Templates    []Template    `gorm:"constraint:OnDelete:CASCADE;"`
	TastingNotes []TastingNote `gorm:"constraint:OnDelete:CASCADE;"`
}
