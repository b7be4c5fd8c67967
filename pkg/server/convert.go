package server

import (
	"math"
	"time"

	"winenow.app/WineNowNote/pkg/auth"
	"winenow.app/WineNowNote/pkg/model"
)

const dateLayout = "2006-01-02"

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

type UserResponse struct {
	ID                 uint      `json:"id"`
	Email              string    `json:"email"`
	Username           string    `json:"username"`
	ProfileImage       string    `json:"profile_image"`
	PreferredWineTypes []string  `json:"preferred_wine_types"`
	Bio                string    `json:"bio"`
	DateJoined         time.Time `json:"date_joined"`
}

func UserFromModel(user *model.User) *UserResponse {
	preferred := []string(user.PreferredWineTypes)
	if preferred == nil {
		preferred = []string{}
	}

	return &UserResponse{
		ID:                 user.ID,
		Email:              user.Email,
		Username:           user.Username,
		ProfileImage:       user.ProfileImage,
		PreferredWineTypes: preferred,
		Bio:                user.Bio,
		DateJoined:         user.CreatedAt,
	}
}

type TokensResponse struct {
	User   *UserResponse   `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

type WineResponse struct {
	ID             uint     `json:"id"`
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	Region         string   `json:"region"`
	Country        string   `json:"country"`
	Vintage        *int     `json:"vintage"`
	GrapeVarieties []string `json:"grape_varieties"`
	AlcoholContent *float64 `json:"alcohol_content"`
	AveragePrice   *float64 `json:"average_price"`
	Winery         string   `json:"winery"`
	ExternalID     *string  `json:"external_id"`
}

func WineFromModel(wine *model.Wine) *WineResponse {
	varieties := []string(wine.GrapeVarieties)
	if varieties == nil {
		varieties = []string{}
	}

	return &WineResponse{
		ID:             wine.ID,
		Name:           wine.Name,
		Type:           wine.Type,
		Region:         wine.Region,
		Country:        wine.Country,
		Vintage:        wine.Vintage,
		GrapeVarieties: varieties,
		AlcoholContent: wine.AlcoholContent,
		AveragePrice:   wine.AveragePrice,
		Winery:         wine.Winery,
		ExternalID:     wine.ExternalID,
	}
}

func WinesFromModel(wines []*model.Wine) []*WineResponse {
	responses := make([]*WineResponse, 0, len(wines))

	for _, wine := range wines {
		responses = append(responses, WineFromModel(wine))
	}

	return responses
}

// WineDetailResponse adds the computed tasting aggregates to the catalog
// attributes.
type WineDetailResponse struct {
	WineResponse
	TastingNotesCount int64    `json:"tasting_notes_count"`
	AverageRating     *float64 `json:"average_rating"`
}

type NoteResponse struct {
	ID                  uint           `json:"id"`
	Wine                *WineResponse  `json:"wine"`
	TemplateID          *uint          `json:"template"`
	TemplateName        *string        `json:"template_name,omitempty"`
	Rating              int            `json:"rating"`
	TastedDate          string         `json:"tasted_date"`
	Location            string         `json:"location"`
	LocationDetail      string         `json:"location_detail"`
	AppearanceClarity   string         `json:"appearance_clarity"`
	AppearanceIntensity *int           `json:"appearance_intensity"`
	Color               string         `json:"color"`
	AromaIntensity      *int           `json:"aroma_intensity"`
	AromaNotes          string         `json:"aroma_notes"`
	Body                *int           `json:"body"`
	Acidity             *int           `json:"acidity"`
	Tannin              *int           `json:"tannin"`
	Sweetness           *int           `json:"sweetness"`
	Pairing             string         `json:"pairing"`
	Notes               string         `json:"notes"`
	CustomFields        map[string]any `json:"custom_fields"`
	Photos              []string       `json:"photos"`
	IsPublic            bool           `json:"is_public"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

func NoteFromModel(note *model.TastingNote) *NoteResponse {
	photos := []string(note.Photos)
	if photos == nil {
		photos = []string{}
	}

	customFields := map[string]any(note.CustomFields)
	if customFields == nil {
		customFields = map[string]any{}
	}

	response := &NoteResponse{
		ID:                  note.ID,
		Wine:                WineFromModel(&note.Wine),
		TemplateID:          note.TemplateID,
		Rating:              note.Rating,
		TastedDate:          note.TastedDate.Format(dateLayout),
		Location:            note.Location,
		LocationDetail:      note.LocationDetail,
		AppearanceClarity:   note.AppearanceClarity,
		AppearanceIntensity: note.AppearanceIntensity,
		Color:               note.Color,
		AromaIntensity:      note.AromaIntensity,
		AromaNotes:          note.AromaNotes,
		Body:                note.Body,
		Acidity:             note.Acidity,
		Tannin:              note.Tannin,
		Sweetness:           note.Sweetness,
		Pairing:             note.Pairing,
		Notes:               note.Notes,
		CustomFields:        customFields,
		Photos:              photos,
		IsPublic:            note.IsPublic,
		CreatedAt:           note.CreatedAt,
		UpdatedAt:           note.UpdatedAt,
	}

	if note.Template != nil {
		response.TemplateName = &note.Template.Name
	}

	return response
}

func NotesFromModel(notes []*model.TastingNote) []*NoteResponse {
	responses := make([]*NoteResponse, 0, len(notes))

	for _, note := range notes {
		responses = append(responses, NoteFromModel(note))
	}

	return responses
}

type TemplateResponse struct {
	ID        uint                  `json:"id"`
	Name      string                `json:"name"`
	Fields    []model.TemplateField `json:"fields"`
	IsDefault bool                  `json:"is_default"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

func TemplateFromModel(template *model.Template) *TemplateResponse {
	fields := []model.TemplateField(template.Fields)
	if fields == nil {
		fields = []model.TemplateField{}
	}

	return &TemplateResponse{
		ID:        template.ID,
		Name:      template.Name,
		Fields:    fields,
		IsDefault: template.IsDefault,
		CreatedAt: template.CreatedAt,
		UpdatedAt: template.UpdatedAt,
	}
}

func TemplatesFromModel(templates []*model.Template) []*TemplateResponse {
	responses := make([]*TemplateResponse, 0, len(templates))

	for _, template := range templates {
		responses = append(responses, TemplateFromModel(template))
	}

	return responses
}

type TopWineResponse struct {
	Wine      *WineResponse `json:"wine"`
	Count     int64         `json:"count"`
	AvgRating float64       `json:"avg_rating"`
}

func TopWineFromModel(row *model.TopWine) *TopWineResponse {
	return &TopWineResponse{
		Wine: &WineResponse{
			ID:             row.WineID,
			Name:           row.Name,
			Type:           row.Type,
			Region:         row.Region,
			Country:        row.Country,
			Vintage:        row.Vintage,
			Winery:         row.Winery,
			GrapeVarieties: []string{},
		},
		Count:     row.Count,
		AvgRating: round2(row.AvgRating),
	}
}
