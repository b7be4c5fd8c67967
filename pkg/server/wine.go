package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"winenow.app/WineNowNote/pkg/integrations"
	"winenow.app/WineNowNote/pkg/model"
	"winenow.app/WineNowNote/pkg/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type wineRepository interface {
	AddWine(ctx context.Context, wine model.Wine) (*model.Wine, error)
	GetWineByID(ctx context.Context, wineID uint) (*model.Wine, error)
	SearchWines(ctx context.Context, q string, wineType string, region string, offset int, limit int) ([]*model.Wine, int64, error)
	GetWineAggregates(ctx context.Context, wineID uint) (*model.WineAggregates, error)
}

type WineServer struct {
	repository  wineRepository
	integration integrations.Integration
	logger      *zap.Logger
}

func NewWineServer(repository wineRepository, integration integrations.Integration, logger *zap.Logger) *WineServer {
	return &WineServer{repository: repository, integration: integration, logger: logger}
}

type WineListResponse struct {
	Count    int64           `json:"count"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	Results  []*WineResponse `json:"results"`
}

func (w *WineServer) ListWines(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	wineType := strings.ToLower(strings.TrimSpace(c.Query("type")))
	region := strings.TrimSpace(c.Query("region"))

	if wineType != "" && !model.ValidWineType(wineType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown wine type: " + wineType})

		return
	}

	page, err := positiveIntQuery(c, "page", 1)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	pageSize, err := positiveIntQuery(c, "page_size", defaultPageSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	wines, total, err := w.repository.SearchWines(c.Request.Context(), q, wineType, region, (page-1)*pageSize, pageSize)
	if err != nil {
		w.logger.Error("error searching wines", zap.String("q", q), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search wines"})

		return
	}

	c.JSON(http.StatusOK, WineListResponse{
		Count:    total,
		Page:     page,
		PageSize: pageSize,
		Results:  WinesFromModel(wines),
	})
}

func (w *WineServer) GetWine(c *gin.Context) {
	wineID, err := uintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wine id"})

		return
	}

	wine, err := w.repository.GetWineByID(c.Request.Context(), wineID)
	if err != nil {
		if errors.Is(err, repository.ErrWineNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "wine not found"})

			return
		}

		w.logger.Error("error loading wine", zap.Uint("wine_id", wineID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load wine"})

		return
	}

	aggregates, err := w.repository.GetWineAggregates(c.Request.Context(), wineID)
	if err != nil {
		w.logger.Error("error aggregating wine notes", zap.Uint("wine_id", wineID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load wine"})

		return
	}

	detail := WineDetailResponse{
		WineResponse:      *WineFromModel(wine),
		TastingNotesCount: aggregates.NoteCount,
	}

	if aggregates.AverageRating != nil {
		rounded := round2(*aggregates.AverageRating)
		detail.AverageRating = &rounded
	}

	c.JSON(http.StatusOK, detail)
}

type WineInput struct {
	Name           string   `json:"name" binding:"required,max=200"`
	Type           string   `json:"type"`
	Region         string   `json:"region" binding:"omitempty,max=100"`
	Country        string   `json:"country" binding:"omitempty,max=100"`
	Vintage        *int     `json:"vintage"`
	GrapeVarieties []string `json:"grape_varieties"`
	AlcoholContent *float64 `json:"alcohol_content"`
	AveragePrice   *float64 `json:"average_price"`
	Winery         string   `json:"winery" binding:"omitempty,max=200"`
	ExternalID     *string  `json:"external_id"`
}

func (w *WineServer) AddWine(c *gin.Context) {
	var input WineInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if input.Type == "" {
		input.Type = model.WineTypeOther
	}

	if !model.ValidWineType(input.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown wine type: " + input.Type})

		return
	}

	if input.Vintage != nil && !model.ValidVintage(*input.Vintage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vintage out of range"})

		return
	}

	wine, err := w.repository.AddWine(c.Request.Context(), model.Wine{
		Name:           input.Name,
		Type:           input.Type,
		Region:         input.Region,
		Country:        input.Country,
		Vintage:        input.Vintage,
		GrapeVarieties: input.GrapeVarieties,
		AlcoholContent: input.AlcoholContent,
		AveragePrice:   input.AveragePrice,
		Winery:         input.Winery,
		ExternalID:     input.ExternalID,
	})
	if err != nil {
		w.logger.Error("error creating wine", zap.String("name", input.Name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create wine"})

		return
	}

	c.JSON(http.StatusCreated, WineFromModel(wine))
}

// ExternalSearch queries the configured external wine source. Results
// are candidates only, nothing is persisted.
func (w *WineServer) ExternalSearch(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})

		return
	}

	if w.integration == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no wine integration configured"})

		return
	}

	wines, err := w.integration.FindWine(q)
	if err != nil {
		w.logger.Error("external wine search failed", zap.String("q", q), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "external search failed"})

		return
	}

	results := make([]*WineResponse, 0, len(wines))
	for index := range wines {
		results = append(results, WineFromModel(&wines[index]))
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

func uintParam(c *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}

	return uint(value), nil
}

func positiveIntQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, errors.New("invalid " + name)
	}

	return value, nil
}
