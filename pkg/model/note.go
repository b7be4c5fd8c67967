package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	LocationHome       = "home"
	LocationRestaurant = "restaurant"
	LocationBar        = "bar"
	LocationEvent      = "event"
	LocationOther      = "other"
)

const (
	ClarityClear  = "clear"
	ClarityHazy   = "hazy"
	ClarityCloudy = "cloudy"
)

const (
	MinRating = 1
	MaxRating = 5
)

// MaxPhotos caps the photo URL list on a tasting note.
const MaxPhotos = 5

var locations = map[string]bool{
	LocationHome:       true,
	LocationRestaurant: true,
	LocationBar:        true,
	LocationEvent:      true,
	LocationOther:      true,
}

var clarities = map[string]bool{
	ClarityClear:  true,
	ClarityHazy:   true,
	ClarityCloudy: true,
}

func ValidLocation(location string) bool {
	return locations[location]
}

func ValidClarity(clarity string) bool {
	return clarities[clarity]
}

func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// TastingNote is a user's record of evaluating a wine on a date.
// Sensory scales are all 1-5; photos holds at most MaxPhotos URLs.
type TastingNote struct {
	gorm.Model
	UserID     uint `gorm:"index:idx_note_user_date"`
	WineID     uint `gorm:"index"`
	TemplateID *uint

	Rating         int       `gorm:"not null"`
	TastedDate     time.Time `gorm:"type:date;index:idx_note_user_date"`
	Location       string    `gorm:"default:other"`
	LocationDetail string

	AppearanceClarity   string
	AppearanceIntensity *int
	Color               string

	AromaIntensity *int
	AromaNotes     string

	Body      *int
	Acidity   *int
	Tannin    *int
	Sweetness *int

	Pairing      string
	Notes        string
	CustomFields datatypes.JSONMap
	Photos       datatypes.JSONSlice[string]
	IsPublic     bool `gorm:"index"`

	User     User      `gorm:"constraint:OnDelete:CASCADE;"`
	Wine     Wine      `gorm:"constraint:OnDelete:CASCADE;"`
	Template *Template `gorm:"constraint:OnDelete:SET NULL;"`
}
