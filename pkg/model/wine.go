package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Wine types as stored in the catalog.
const (
	WineTypeRed       = "red"
	WineTypeWhite     = "white"
	WineTypeRose      = "rose"
	WineTypeSparkling = "sparkling"
	WineTypeChampagne = "champagne"
	WineTypeDessert   = "dessert"
	WineTypeFortified = "fortified"
	WineTypeOrange    = "orange"
	WineTypeNatural   = "natural"
	WineTypeOther     = "other"
)

const MinVintage = 1900

var wineTypes = map[string]bool{
	WineTypeRed:       true,
	WineTypeWhite:     true,
	WineTypeRose:      true,
	WineTypeSparkling: true,
	WineTypeChampagne: true,
	WineTypeDessert:   true,
	WineTypeFortified: true,
	WineTypeOrange:    true,
	WineTypeNatural:   true,
	WineTypeOther:     true,
}

func ValidWineType(wineType string) bool {
	return wineTypes[wineType]
}

func ValidVintage(vintage int) bool {
	return vintage >= MinVintage && vintage <= time.Now().Year()+1
}

// Wine is shared reference data, never owned by a single user.
type Wine struct {
	gorm.Model
	Name           string `gorm:"index"`
	Type           string `gorm:"index;default:other"`
	Region         string `gorm:"index"`
	Country        string `gorm:"index"`
	Vintage        *int
	GrapeVarieties datatypes.JSONSlice[string]
	AlcoholContent *float64
	AveragePrice   *float64
	Winery         string `gorm:"index"`
	ExternalID     *string `gorm:"uniqueIndex"`
}

// WineAggregates carries per-wine tasting counts for the catalog detail view.
type WineAggregates struct {
	NoteCount     int64
	AverageRating *float64
}
