package model

// NoteTotals holds the headline numbers for a user's statistics.
type NoteTotals struct {
	TotalTastings int64
	TotalWines    int64
	AverageRating *float64
}

type TypeCount struct {
	Type  string
	Count int64
}

type RegionCount struct {
	Region string
	Count  int64
}

type RatingCount struct {
	Rating int
	Count  int64
}

type MonthCount struct {
	Month string
	Count int64
}

// TopWine is one row of the per-wine ranking, catalog attributes plus
// the computed note count and average rating.
type TopWine struct {
	WineID    uint
	Name      string
	Type      string
	Region    string
	Country   string
	Vintage   *int
	Winery    string
	Count     int64
	AvgRating float64
}
