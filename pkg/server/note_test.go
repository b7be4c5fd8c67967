package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"winenow.app/WineNowNote/pkg/model"
	"winenow.app/WineNowNote/pkg/repository"
	"winenow.app/WineNowNote/pkg/server"
)

type stubNoteRepository struct {
	notes      map[uint]*model.TastingNote
	created    *model.TastingNote
	saved      *model.TastingNote
	deletedID  uint
	photos     map[uint][]string
	listFilter repository.NoteFilter
	listNotes  []*model.TastingNote
}

func newStubNoteRepository() *stubNoteRepository {
	return &stubNoteRepository{
		notes:  make(map[uint]*model.TastingNote),
		photos: make(map[uint][]string),
	}
}

func (s *stubNoteRepository) CreateNote(_ context.Context, note model.TastingNote) (*model.TastingNote, error) {
	note.ID = 7
	s.created = &note
	stored := note
	s.notes[note.ID] = &stored

	return &note, nil
}

func (s *stubNoteRepository) GetNoteByID(_ context.Context, noteID uint) (*model.TastingNote, error) {
	note, found := s.notes[noteID]
	if !found {
		return nil, repository.ErrNoteNotFound
	}

	return note, nil
}

func (s *stubNoteRepository) ListNotes(_ context.Context, filter repository.NoteFilter) ([]*model.TastingNote, error) {
	s.listFilter = filter

	return s.listNotes, nil
}

func (s *stubNoteRepository) SaveNote(_ context.Context, note *model.TastingNote) (*model.TastingNote, error) {
	s.saved = note
	s.notes[note.ID] = note

	return note, nil
}

func (s *stubNoteRepository) DeleteNote(_ context.Context, noteID uint) error {
	s.deletedID = noteID
	delete(s.notes, noteID)

	return nil
}

func (s *stubNoteRepository) UpdateNotePhotos(_ context.Context, noteID uint, photos []string) error {
	if _, found := s.notes[noteID]; !found {
		return repository.ErrNoteNotFound
	}

	s.photos[noteID] = photos
	s.notes[noteID].Photos = photos

	return nil
}

type stubWineRepository struct {
	wines map[uint]*model.Wine
}

func (s *stubWineRepository) GetWineByID(_ context.Context, wineID uint) (*model.Wine, error) {
	wine, found := s.wines[wineID]
	if !found {
		return nil, repository.ErrWineNotFound
	}

	return wine, nil
}

type stubTemplateLookup struct {
	templates map[uint]*model.Template
}

func (s *stubTemplateLookup) GetTemplateByID(_ context.Context, templateID uint) (*model.Template, error) {
	template, found := s.templates[templateID]
	if !found {
		return nil, repository.ErrTemplateNotFound
	}

	return template, nil
}

type NoteServerSuite struct {
	suite.Suite
	notes        *stubNoteRepository
	wines        *stubWineRepository
	templates    *stubTemplateLookup
	store        *stubStore
	service      *server.NoteServer
	observedLogs *observer.ObservedLogs
}

func TestNoteServerSuite(t *testing.T) {
	suite.Run(t, new(NoteServerSuite))
}

func (suite *NoteServerSuite) SetupTest() {
	suite.notes = newStubNoteRepository()
	suite.wines = &stubWineRepository{wines: map[uint]*model.Wine{
		10: {Model: gorm.Model{ID: 10}, Name: "Barolo", Type: model.WineTypeRed},
	}}
	suite.templates = &stubTemplateLookup{templates: map[uint]*model.Template{
		3: {Model: gorm.Model{ID: 3}, UserID: 100, Name: "WSET"},
		4: {Model: gorm.Model{ID: 4}, UserID: 200, Name: "Someone else's"},
	}}
	suite.store = &stubStore{url: "http://localhost:8080/media/tasting_notes/100/photo.jpg"}

	observedZapCore, observedLogs := observer.New(zap.InfoLevel)
	suite.observedLogs = observedLogs
	suite.service = server.NewNoteServer(suite.notes, suite.wines, suite.templates, suite.store, zap.New(observedZapCore))
}

func (suite *NoteServerSuite) TestCreateNote_CreatesNote() {
	body := `{"wine_id":10,"rating":4,"tasted_date":"2024-05-12","location":"home","notes":"cherry and leather"}`

	c, recorder := newTestContext(http.MethodPost, "/api/tasting-notes", strings.NewReader(body))
	asUser(c, testUser(100))

	suite.service.CreateNote(c)

	suite.Equal(http.StatusCreated, recorder.Code)
	suite.Require().NotNil(suite.notes.created)
	suite.Equal(uint(100), suite.notes.created.UserID)
	suite.Equal(uint(10), suite.notes.created.WineID)
	suite.Equal(4, suite.notes.created.Rating)
	suite.Equal("cherry and leather", suite.notes.created.Notes)
}

func (suite *NoteServerSuite) TestCreateNote_DefaultsLocation() {
	body := `{"wine_id":10,"rating":3,"tasted_date":"2024-05-12"}`

	c, recorder := newTestContext(http.MethodPost, "/api/tasting-notes", strings.NewReader(body))
	asUser(c, testUser(100))

	suite.service.CreateNote(c)

	suite.Equal(http.StatusCreated, recorder.Code)
	suite.Equal(model.LocationOther, suite.notes.created.Location)
}

func (suite *NoteServerSuite) TestCreateNote_RejectsRatingAboveFive() {
	body := `{"wine_id":10,"rating":6,"tasted_date":"2024-05-12"}`

	c, recorder := newTestContext(http.MethodPost, "/api/tasting-notes", strings.NewReader(body))
	asUser(c, testUser(100))

	suite.service.CreateNote(c)

	suite.Equal(http.StatusBadRequest, recorder.Code)
	suite.Nil(suite.notes.created)
}

func (suite *NoteServerSuite) TestCreateNote_RejectsRatingZero() {
	body := `{"wine_id":10,"rating":0,"tasted_date":"2024-05-12"}`

	c, recorder := newTestContext(http.MethodPost, "/api/tasting-notes", strings.NewReader(body))
	asUser(c, testUser(100))

	suite.service.CreateNote(c)

	suite.Equal(http.StatusBadRequest, recorder.Code)
	suite.Nil(suite.notes.created)
}

func (suite *NoteServerSuite) TestCreateNote_RejectsUnknownWine() {
	body := `{"wine_id":999,"rating":4,"tasted_date":"2024-05-12"}`

	c, recorder := newTestContext(http.MethodPost, "/api/tasting-notes", strings.NewReader(body))
	asUser(c, testUser(100))

	suite.service.CreateNote(c)

	suite.Equal(http.StatusBadRequest, recorder.Code)
	suite.Contains(recorder.Body.String(), "wine 999 does not exist")
}

func (suite *NoteServerSuite) TestCreateNote_RejectsForeignTemplate() {
	body := `{"wine_id":10,"template_id":4,"rating":4,"tasted_date":"2024-05-12"}`

	c, recorder := newTestContext(http.MethodPost, "/api/tasting-notes", strings.NewReader(body))
	asUser(c, testUser(100))

	suite.service.CreateNote(c)

	suite.Equal(http.StatusBadRequest, recorder.Code)
	suite.Contains(recorder.Body.String(), "template 4 does not belong to you")
}

func (suite *NoteServerSuite) TestCreateNote_RejectsUnknownLocation() {
	body := `{"wine_id":10,"rating":4,"tasted_date":"2024-05-12","location":"spaceship"}`

	c, recorder := newTestContext(http.MethodPost, "/api/tasting-notes", strings.NewReader(body))
	asUser(c, testUser(100))

	suite.service.CreateNote(c)

	suite.Equal(http.StatusBadRequest, recorder.Code)
	suite.Contains(recorder.Body.String(), "unknown location")
}

func (suite *NoteServerSuite) TestGetNote_OwnerSeesPrivateNote() {
	suite.notes.notes[7] = &model.TastingNote{Model: gorm.Model{ID: 7}, UserID: 100, Rating: 4}

	c, recorder := newTestContext(http.MethodGet, "/api/tasting-notes/7", nil)
	asUser(c, testUser(100))
	withParam(c, "id", "7")

	suite.service.GetNote(c)

	suite.Equal(http.StatusOK, recorder.Code)
}

func (suite *NoteServerSuite) TestGetNote_StrangerSeesPublicNote() {
	suite.notes.notes[7] = &model.TastingNote{Model: gorm.Model{ID: 7}, UserID: 100, Rating: 4, IsPublic: true}

	c, recorder := newTestContext(http.MethodGet, "/api/tasting-notes/7", nil)
	asUser(c, testUser(200))
	withParam(c, "id", "7")

	suite.service.GetNote(c)

	suite.Equal(http.StatusOK, recorder.Code)
}

func (suite *NoteServerSuite) TestGetNote_PrivateNoteHiddenFromStranger() {
	suite.notes.notes[7] = &model.TastingNote{Model: gorm.Model{ID: 7}, UserID: 100, Rating: 4}

	c, recorder := newTestContext(http.MethodGet, "/api/tasting-notes/7", nil)
	asUser(c, testUser(200))
	withParam(c, "id", "7")

	suite.service.GetNote(c)

	suite.Equal(http.StatusNotFound, recorder.Code)
}

func (suite *NoteServerSuite) TestUpdateNote_PublicNoteStillNotWritableByStranger() {
	suite.notes.notes[7] = &model.TastingNote{Model: gorm.Model{ID: 7}, UserID: 100, Rating: 4, IsPublic: true}

	c, recorder := newTestContext(http.MethodPatch, "/api/tasting-notes/7", strings.NewReader(`{"rating":1}`))
	asUser(c, testUser(200))
	withParam(c, "id", "7")

	suite.service.UpdateNote(c)

	suite.Equal(http.StatusNotFound, recorder.Code)
	suite.Nil(suite.notes.saved)
}

func (suite *NoteServerSuite) TestUpdateNote_PartialUpdate() {
	suite.notes.notes[7] = &model.TastingNote{Model: gorm.Model{ID: 7}, UserID: 100, WineID: 10, Rating: 4, Notes: "original"}

	c, recorder := newTestContext(http.MethodPatch, "/api/tasting-notes/7", strings.NewReader(`{"rating":5}`))
	asUser(c, testUser(100))
	withParam(c, "id", "7")

	suite.service.UpdateNote(c)

	suite.Equal(http.StatusOK, recorder.Code)
	suite.Require().NotNil(suite.notes.saved)
	suite.Equal(5, suite.notes.saved.Rating)
	suite.Equal("original", suite.notes.saved.Notes)
}

func (suite *NoteServerSuite) TestDeleteNote_OwnerDeletes() {
	suite.notes.notes[7] = &model.TastingNote{Model: gorm.Model{ID: 7}, UserID: 100}

	c, recorder := newTestContext(http.MethodDelete, "/api/tasting-notes/7", nil)
	asUser(c, testUser(100))
	withParam(c, "id", "7")

	suite.service.DeleteNote(c)

	suite.Equal(http.StatusOK, recorder.Code)
	suite.Equal(uint(7), suite.notes.deletedID)
}

func (suite *NoteServerSuite) TestListNotes_DefaultsToOwnerScope() {
	c, recorder := newTestContext(http.MethodGet, "/api/tasting-notes", nil)
	asUser(c, testUser(100))

	suite.service.ListNotes(c)

	suite.Equal(http.StatusOK, recorder.Code)
	suite.Equal(uint(100), suite.notes.listFilter.UserID)
	suite.False(suite.notes.listFilter.PublicFeed)
	suite.Equal("-tasted_date", suite.notes.listFilter.Ordering)
}

func (suite *NoteServerSuite) TestListNotes_PublicFeed() {
	c, recorder := newTestContext(http.MethodGet, "/api/tasting-notes?is_public=true", nil)
	asUser(c, testUser(100))

	suite.service.ListNotes(c)

	suite.Equal(http.StatusOK, recorder.Code)
	suite.True(suite.notes.listFilter.PublicFeed)
}

func (suite *NoteServerSuite) TestListNotes_RejectsInvalidRating() {
	c, recorder := newTestContext(http.MethodGet, "/api/tasting-notes?rating=9", nil)
	asUser(c, testUser(100))

	suite.service.ListNotes(c)

	suite.Equal(http.StatusBadRequest, recorder.Code)
}

func (suite *NoteServerSuite) TestListNotes_ReturnsCountAndResults() {
	suite.notes.listNotes = []*model.TastingNote{
		{Model: gorm.Model{ID: 1}, UserID: 100, Rating: 4},
		{Model: gorm.Model{ID: 2}, UserID: 100, Rating: 5},
	}

	c, recorder := newTestContext(http.MethodGet, "/api/tasting-notes", nil)
	asUser(c, testUser(100))

	suite.service.ListNotes(c)

	suite.Equal(http.StatusOK, recorder.Code)

	var response struct {
		Count   int               `json:"count"`
		Results []json.RawMessage `json:"results"`
	}

	suite.Require().NoError(json.Unmarshal(recorder.Body.Bytes(), &response))
	suite.Equal(2, response.Count)
	suite.Len(response.Results, 2)
}
