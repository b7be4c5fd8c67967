package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"winenow.app/WineNowNote/pkg/auth"
	"winenow.app/WineNowNote/pkg/model"
	"winenow.app/WineNowNote/pkg/repository"
	"winenow.app/WineNowNote/pkg/storage"
)

var ErrInvalidInput = errors.New("bad request")

const maxPhotoBytes = 5 << 20 // 5MB

type noteRepository interface {
	CreateNote(ctx context.Context, note model.TastingNote) (*model.TastingNote, error)
	GetNoteByID(ctx context.Context, noteID uint) (*model.TastingNote, error)
	ListNotes(ctx context.Context, filter repository.NoteFilter) ([]*model.TastingNote, error)
	SaveNote(ctx context.Context, note *model.TastingNote) (*model.TastingNote, error)
	DeleteNote(ctx context.Context, noteID uint) error
	UpdateNotePhotos(ctx context.Context, noteID uint, photos []string) error
}

type noteWineRepository interface {
	GetWineByID(ctx context.Context, wineID uint) (*model.Wine, error)
}

type noteTemplateRepository interface {
	GetTemplateByID(ctx context.Context, templateID uint) (*model.Template, error)
}

type NoteServer struct {
	notes     noteRepository
	wines     noteWineRepository
	templates noteTemplateRepository
	store     storage.Store
	logger    *zap.Logger
}

func NewNoteServer(notes noteRepository, wines noteWineRepository, templates noteTemplateRepository, store storage.Store, logger *zap.Logger) *NoteServer {
	return &NoteServer{notes: notes, wines: wines, templates: templates, store: store, logger: logger}
}

func (n *NoteServer) ListNotes(c *gin.Context) {
	user, found := auth.CurrentUser(c)
	if !found {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no user in context"})

		return
	}

	filter := repository.NoteFilter{
		UserID:   user.ID,
		Search:   c.Query("q"),
		Ordering: c.DefaultQuery("ordering", "-tasted_date"),
	}

	if err := fillNoteFilter(c, &filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	notes, err := n.notes.ListNotes(c.Request.Context(), filter)
	if err != nil {
		n.logger.Error("error listing notes", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notes"})

		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(notes), "results": NotesFromModel(notes)})
}

// fillNoteFilter parses the optional listing query parameters.
// is_public=true widens the scope to every user's public notes; the
// default scope is the caller's own notes.
func fillNoteFilter(c *gin.Context, filter *repository.NoteFilter) error {
	if raw := c.Query("wine_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return errors.New("invalid wine_id")
		}

		wineID := uint(parsed)
		filter.WineID = &wineID
	}

	if raw := c.Query("rating"); raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil || !model.ValidRating(rating) {
			return errors.New("invalid rating")
		}

		filter.Rating = &rating
	}

	if raw := c.Query("start_date"); raw != "" {
		startDate, err := time.Parse(dateLayout, raw)
		if err != nil {
			return errors.New("invalid start_date, expected YYYY-MM-DD")
		}

		filter.StartDate = &startDate
	}

	if raw := c.Query("end_date"); raw != "" {
		endDate, err := time.Parse(dateLayout, raw)
		if err != nil {
			return errors.New("invalid end_date, expected YYYY-MM-DD")
		}

		filter.EndDate = &endDate
	}

	if raw := c.Query("location"); raw != "" {
		if !model.ValidLocation(raw) {
			return errors.New("unknown location: " + raw)
		}

		location := raw
		filter.Location = &location
	}

	if raw := c.Query("is_public"); raw != "" {
		switch raw {
		case "true":
			filter.PublicFeed = true
		case "false":
			isPublic := false
			filter.IsPublic = &isPublic
		default:
			return errors.New("invalid is_public")
		}
	}

	return nil
}

type NoteInput struct {
	WineID              uint           `json:"wine_id" binding:"required"`
	TemplateID          *uint          `json:"template_id"`
	Rating              int            `json:"rating" binding:"required,min=1,max=5"`
	TastedDate          string         `json:"tasted_date" binding:"required"`
	Location            string         `json:"location"`
	LocationDetail      string         `json:"location_detail" binding:"omitempty,max=200"`
	AppearanceClarity   string         `json:"appearance_clarity"`
	AppearanceIntensity *int           `json:"appearance_intensity" binding:"omitempty,min=1,max=5"`
	Color               string         `json:"color" binding:"omitempty,max=50"`
	AromaIntensity      *int           `json:"aroma_intensity" binding:"omitempty,min=1,max=5"`
	AromaNotes          string         `json:"aroma_notes"`
	Body                *int           `json:"body" binding:"omitempty,min=1,max=5"`
	Acidity             *int           `json:"acidity" binding:"omitempty,min=1,max=5"`
	Tannin              *int           `json:"tannin" binding:"omitempty,min=1,max=5"`
	Sweetness           *int           `json:"sweetness" binding:"omitempty,min=1,max=5"`
	Pairing             string         `json:"pairing" binding:"omitempty,max=200"`
	Notes               string         `json:"notes"`
	CustomFields        map[string]any `json:"custom_fields"`
	Photos              []string       `json:"photos" binding:"omitempty,max=5"`
	IsPublic            bool           `json:"is_public"`
}

func (n *NoteServer) CreateNote(c *gin.Context) {
	user, found := auth.CurrentUser(c)
	if !found {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no user in context"})

		return
	}

	var input NoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if input.Location == "" {
		input.Location = model.LocationOther
	}

	if err := n.validateNoteInput(c.Request.Context(), user, input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	tastedDate, err := time.Parse(dateLayout, input.TastedDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tasted_date, expected YYYY-MM-DD"})

		return
	}

	note := model.TastingNote{
		UserID:              user.ID,
		WineID:              input.WineID,
		TemplateID:          input.TemplateID,
		Rating:              input.Rating,
		TastedDate:          tastedDate,
		Location:            input.Location,
		LocationDetail:      input.LocationDetail,
		AppearanceClarity:   input.AppearanceClarity,
		AppearanceIntensity: input.AppearanceIntensity,
		Color:               input.Color,
		AromaIntensity:      input.AromaIntensity,
		AromaNotes:          input.AromaNotes,
		Body:                input.Body,
		Acidity:             input.Acidity,
		Tannin:              input.Tannin,
		Sweetness:           input.Sweetness,
		Pairing:             input.Pairing,
		Notes:               input.Notes,
		CustomFields:        input.CustomFields,
		Photos:              input.Photos,
		IsPublic:            input.IsPublic,
	}

	created, err := n.notes.CreateNote(c.Request.Context(), note)
	if err != nil {
		n.logger.Error("error creating note", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create note"})

		return
	}

	// Reload for wine and template associations.
	created, err = n.notes.GetNoteByID(c.Request.Context(), created.ID)
	if err != nil {
		n.logger.Error("error reloading note", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create note"})

		return
	}

	c.JSON(http.StatusCreated, NoteFromModel(created))
}

func (n *NoteServer) validateNoteInput(ctx context.Context, user *model.User, input NoteInput) error {
	if !model.ValidLocation(input.Location) {
		return fmt.Errorf("%w: unknown location %q", ErrInvalidInput, input.Location)
	}

	if input.AppearanceClarity != "" && !model.ValidClarity(input.AppearanceClarity) {
		return fmt.Errorf("%w: unknown appearance_clarity %q", ErrInvalidInput, input.AppearanceClarity)
	}

	if _, err := n.wines.GetWineByID(ctx, input.WineID); err != nil {
		return fmt.Errorf("%w: wine %d does not exist", ErrInvalidInput, input.WineID)
	}

	if input.TemplateID != nil {
		template, err := n.templates.GetTemplateByID(ctx, *input.TemplateID)
		if err != nil || template.UserID != user.ID {
			return fmt.Errorf("%w: template %d does not belong to you", ErrInvalidInput, *input.TemplateID)
		}
	}

	return nil
}

func (n *NoteServer) GetNote(c *gin.Context) {
	_, note, ok := n.visibleNote(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, NoteFromModel(note))
}

type UpdateNoteInput struct {
	WineID              *uint           `json:"wine_id"`
	TemplateID          *uint           `json:"template_id"`
	Rating              *int            `json:"rating" binding:"omitempty,min=1,max=5"`
	TastedDate          *string         `json:"tasted_date"`
	Location            *string         `json:"location"`
	LocationDetail      *string         `json:"location_detail" binding:"omitempty,max=200"`
	AppearanceClarity   *string         `json:"appearance_clarity"`
	AppearanceIntensity *int            `json:"appearance_intensity" binding:"omitempty,min=1,max=5"`
	Color               *string         `json:"color" binding:"omitempty,max=50"`
	AromaIntensity      *int            `json:"aroma_intensity" binding:"omitempty,min=1,max=5"`
	AromaNotes          *string         `json:"aroma_notes"`
	Body                *int            `json:"body" binding:"omitempty,min=1,max=5"`
	Acidity             *int            `json:"acidity" binding:"omitempty,min=1,max=5"`
	Tannin              *int            `json:"tannin" binding:"omitempty,min=1,max=5"`
	Sweetness           *int            `json:"sweetness" binding:"omitempty,min=1,max=5"`
	Pairing             *string         `json:"pairing" binding:"omitempty,max=200"`
	Notes               *string         `json:"notes"`
	CustomFields        *map[string]any `json:"custom_fields"`
	Photos              *[]string       `json:"photos" binding:"omitempty,max=5"`
	IsPublic            *bool           `json:"is_public"`
}

//nolint:cyclop // field-by-field partial update
func (n *NoteServer) UpdateNote(c *gin.Context) {
	user, note, ok := n.ownedNote(c)
	if !ok {
		return
	}

	var input UpdateNoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if input.WineID != nil {
		if _, err := n.wines.GetWineByID(c.Request.Context(), *input.WineID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("wine %d does not exist", *input.WineID)})

			return
		}

		note.WineID = *input.WineID
	}

	if input.TemplateID != nil {
		template, err := n.templates.GetTemplateByID(c.Request.Context(), *input.TemplateID)
		if err != nil || template.UserID != user.ID {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("template %d does not belong to you", *input.TemplateID)})

			return
		}

		note.TemplateID = input.TemplateID
	}

	if input.TastedDate != nil {
		tastedDate, err := time.Parse(dateLayout, *input.TastedDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tasted_date, expected YYYY-MM-DD"})

			return
		}

		note.TastedDate = tastedDate
	}

	if input.Location != nil {
		if !model.ValidLocation(*input.Location) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown location: " + *input.Location})

			return
		}

		note.Location = *input.Location
	}

	if input.AppearanceClarity != nil {
		if *input.AppearanceClarity != "" && !model.ValidClarity(*input.AppearanceClarity) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown appearance_clarity: " + *input.AppearanceClarity})

			return
		}

		note.AppearanceClarity = *input.AppearanceClarity
	}

	if input.Rating != nil {
		note.Rating = *input.Rating
	}

	if input.LocationDetail != nil {
		note.LocationDetail = *input.LocationDetail
	}

	if input.AppearanceIntensity != nil {
		note.AppearanceIntensity = input.AppearanceIntensity
	}

	if input.Color != nil {
		note.Color = *input.Color
	}

	if input.AromaIntensity != nil {
		note.AromaIntensity = input.AromaIntensity
	}

	if input.AromaNotes != nil {
		note.AromaNotes = *input.AromaNotes
	}

	if input.Body != nil {
		note.Body = input.Body
	}

	if input.Acidity != nil {
		note.Acidity = input.Acidity
	}

	if input.Tannin != nil {
		note.Tannin = input.Tannin
	}

	if input.Sweetness != nil {
		note.Sweetness = input.Sweetness
	}

	if input.Pairing != nil {
		note.Pairing = *input.Pairing
	}

	if input.Notes != nil {
		note.Notes = *input.Notes
	}

	if input.CustomFields != nil {
		note.CustomFields = *input.CustomFields
	}

	if input.Photos != nil {
		note.Photos = *input.Photos
	}

	if input.IsPublic != nil {
		note.IsPublic = *input.IsPublic
	}

	updated, err := n.notes.SaveNote(c.Request.Context(), note)
	if err != nil {
		n.logger.Error("error updating note", zap.Uint("note_id", note.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update note"})

		return
	}

	updated, err = n.notes.GetNoteByID(c.Request.Context(), updated.ID)
	if err != nil {
		n.logger.Error("error reloading note", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update note"})

		return
	}

	c.JSON(http.StatusOK, NoteFromModel(updated))
}

func (n *NoteServer) DeleteNote(c *gin.Context) {
	_, note, ok := n.ownedNote(c)
	if !ok {
		return
	}

	if err := n.notes.DeleteNote(c.Request.Context(), note.ID); err != nil {
		n.logger.Error("error deleting note", zap.Uint("note_id", note.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete note"})

		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "note deleted"})
}

// visibleNote loads the note for read access: the owner always, other
// users only when the note is public. Anything else is a 404.
func (n *NoteServer) visibleNote(c *gin.Context) (*model.User, *model.TastingNote, bool) {
	user, note, ok := n.loadNote(c)
	if !ok {
		return nil, nil, false
	}

	if note.UserID != user.ID && !note.IsPublic {
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})

		return nil, nil, false
	}

	return user, note, true
}

// ownedNote loads the note for write access. Non-owners get a 404
// regardless of visibility, so existence is never revealed.
func (n *NoteServer) ownedNote(c *gin.Context) (*model.User, *model.TastingNote, bool) {
	user, note, ok := n.loadNote(c)
	if !ok {
		return nil, nil, false
	}

	if note.UserID != user.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})

		return nil, nil, false
	}

	return user, note, true
}

func (n *NoteServer) loadNote(c *gin.Context) (*model.User, *model.TastingNote, bool) {
	user, found := auth.CurrentUser(c)
	if !found {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no user in context"})

		return nil, nil, false
	}

	noteID, err := uintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid note id"})

		return nil, nil, false
	}

	note, err := n.notes.GetNoteByID(c.Request.Context(), noteID)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})

			return nil, nil, false
		}

		n.logger.Error("error loading note", zap.Uint("note_id", noteID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load note"})

		return nil, nil, false
	}

	return user, note, true
}
