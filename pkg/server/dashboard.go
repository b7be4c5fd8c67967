package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"winenow.app/WineNowNote/pkg/auth"
	"winenow.app/WineNowNote/pkg/model"
	"winenow.app/WineNowNote/pkg/repository"
)

const (
	trendWindowDays = 365
	topWinesLimit   = 10
)

type DashboardServer struct {
	stats  repository.StatsRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewDashboardServer(stats repository.StatsRepository, logger *zap.Logger) *DashboardServer {
	return &DashboardServer{stats: stats, logger: logger, now: time.Now}
}

type MonthEntry struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

type StatisticsResponse struct {
	TotalTastings      int64            `json:"total_tastings"`
	TotalWines         int64            `json:"total_wines"`
	AverageRating      *float64         `json:"average_rating"`
	MostTastedType     *string          `json:"most_tasted_type"`
	MostTastedRegion   *string          `json:"most_tasted_region"`
	MonthlyTrend       []MonthEntry     `json:"monthly_trend"`
	TypeDistribution   map[string]int64 `json:"type_distribution"`
	RatingDistribution map[string]int64 `json:"rating_distribution"`
}

// Statistics aggregates the caller's notes, optionally bounded by an
// inclusive tasted_date range. The monthly trend always uses a fixed
// trailing 365-day window anchored to now, on top of the range filters.
func (d *DashboardServer) Statistics(c *gin.Context) {
	user, found := auth.CurrentUser(c)
	if !found {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no user in context"})

		return
	}

	start, end, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	ctx := c.Request.Context()

	totals, err := d.stats.GetNoteTotals(ctx, user.ID, start, end)
	if err != nil {
		d.logger.Error("error aggregating totals", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute statistics"})

		return
	}

	typeCounts, err := d.stats.GetTypeCounts(ctx, user.ID, start, end)
	if err != nil {
		d.logger.Error("error aggregating wine types", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute statistics"})

		return
	}

	regionCounts, err := d.stats.GetRegionCounts(ctx, user.ID, start, end)
	if err != nil {
		d.logger.Error("error aggregating regions", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute statistics"})

		return
	}

	ratingCounts, err := d.stats.GetRatingCounts(ctx, user.ID, start, end)
	if err != nil {
		d.logger.Error("error aggregating ratings", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute statistics"})

		return
	}

	since := d.now().AddDate(0, 0, -trendWindowDays)

	monthCounts, err := d.stats.GetMonthlyTrend(ctx, user.ID, since, start, end)
	if err != nil {
		d.logger.Error("error aggregating monthly trend", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute statistics"})

		return
	}

	c.JSON(http.StatusOK, buildStatistics(totals, typeCounts, regionCounts, ratingCounts, monthCounts))
}

// buildStatistics assembles the response: zero-filled rating buckets,
// rounded average, most-frequent picks from rows already ordered by
// (count desc, name asc).
func buildStatistics(totals *model.NoteTotals, typeCounts []*model.TypeCount, regionCounts []*model.RegionCount,
	ratingCounts []*model.RatingCount, monthCounts []*model.MonthCount,
) *StatisticsResponse {
	response := &StatisticsResponse{
		TotalTastings:      totals.TotalTastings,
		TotalWines:         totals.TotalWines,
		MonthlyTrend:       make([]MonthEntry, 0, len(monthCounts)),
		TypeDistribution:   make(map[string]int64, len(typeCounts)),
		RatingDistribution: make(map[string]int64, model.MaxRating),
	}

	if totals.AverageRating != nil {
		rounded := round2(*totals.AverageRating)
		response.AverageRating = &rounded
	}

	for _, row := range typeCounts {
		response.TypeDistribution[row.Type] = row.Count
	}

	if len(typeCounts) > 0 {
		response.MostTastedType = &typeCounts[0].Type
	}

	if len(regionCounts) > 0 {
		response.MostTastedRegion = &regionCounts[0].Region
	}

	for rating := model.MinRating; rating <= model.MaxRating; rating++ {
		response.RatingDistribution[strconv.Itoa(rating)] = 0
	}

	for _, row := range ratingCounts {
		response.RatingDistribution[strconv.Itoa(row.Rating)] = row.Count
	}

	for _, row := range monthCounts {
		response.MonthlyTrend = append(response.MonthlyTrend, MonthEntry{Month: row.Month, Count: row.Count})
	}

	return response
}

type CalendarNoteSummary struct {
	ID       uint    `json:"id"`
	WineName string  `json:"wine_name"`
	Rating   int     `json:"rating"`
	Photo    *string `json:"photo"`
}

type CalendarDay struct {
	Date  string                 `json:"date"`
	Count int                    `json:"count"`
	Notes []*CalendarNoteSummary `json:"notes"`
}

type CalendarResponse struct {
	Year  int            `json:"year"`
	Month int            `json:"month"`
	Days  []*CalendarDay `json:"days"`
}

// Calendar groups the caller's notes by day within one month. Days
// without notes are omitted.
func (d *DashboardServer) Calendar(c *gin.Context) {
	user, found := auth.CurrentUser(c)
	if !found {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no user in context"})

		return
	}

	now := d.now()

	year, err := intQueryDefault(c, "year", now.Year())
	if err != nil || year < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})

		return
	}

	month, err := intQueryDefault(c, "month", int(now.Month()))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})

		return
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	notes, err := d.stats.GetCalendarNotes(c.Request.Context(), user.ID, from, to)
	if err != nil {
		d.logger.Error("error loading calendar notes", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load calendar"})

		return
	}

	response := CalendarResponse{Year: year, Month: month, Days: buildCalendarDays(notes)}

	c.JSON(http.StatusOK, response)
}

// buildCalendarDays relies on the notes arriving in ascending
// (tasted_date, id) order; each new date starts a new day entry.
func buildCalendarDays(notes []*model.TastingNote) []*CalendarDay {
	days := make([]*CalendarDay, 0)

	var current *CalendarDay

	for _, note := range notes {
		date := note.TastedDate.Format(dateLayout)

		if current == nil || current.Date != date {
			current = &CalendarDay{Date: date, Notes: make([]*CalendarNoteSummary, 0, 1)}
			days = append(days, current)
		}

		summary := &CalendarNoteSummary{
			ID:       note.ID,
			WineName: note.Wine.Name,
			Rating:   note.Rating,
		}

		if len(note.Photos) > 0 {
			summary.Photo = &note.Photos[0]
		}

		current.Notes = append(current.Notes, summary)
		current.Count++
	}

	return days
}

// TopWines ranks the caller's distinct wines; sort=rating orders by
// average rating, anything else by tasting count.
func (d *DashboardServer) TopWines(c *gin.Context) {
	user, found := auth.CurrentUser(c)
	if !found {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no user in context"})

		return
	}

	sortBy := c.DefaultQuery("sort", "count")

	rows, err := d.stats.GetTopWines(c.Request.Context(), user.ID, sortBy, topWinesLimit)
	if err != nil {
		d.logger.Error("error ranking wines", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rank wines"})

		return
	}

	results := make([]*TopWineResponse, 0, len(rows))
	for _, row := range rows {
		results = append(results, TopWineFromModel(row))
	}

	c.JSON(http.StatusOK, results)
}

func parseDateRange(c *gin.Context) (*time.Time, *time.Time, error) {
	var start, end *time.Time

	if raw := c.Query("start_date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, nil, errInvalidDate("start_date")
		}

		start = &parsed
	}

	if raw := c.Query("end_date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, nil, errInvalidDate("end_date")
		}

		end = &parsed
	}

	return start, end, nil
}

type invalidDateError struct {
	field string
}

func (e invalidDateError) Error() string {
	return "invalid " + e.field + ", expected YYYY-MM-DD"
}

func errInvalidDate(field string) error {
	return invalidDateError{field: field}
}

func intQueryDefault(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}

	return strconv.Atoi(raw)
}
