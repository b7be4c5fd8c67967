package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/suite"

	"winenow.app/WineNowNote/pkg/model"
	"winenow.app/WineNowNote/pkg/repository"
)

var errDeadlock = errors.New("deadlock detected")

type TemplateTestSuite struct {
	RepositorySuite
}

func TestTemplateTestSuite(t *testing.T) {
	suite.Run(t, new(TemplateTestSuite))
}

func (suite *TemplateTestSuite) TearDownTest() {
	suite.NoError(suite.mock.ExpectationsWereMet())
}

func (suite *TemplateTestSuite) TestCreateTemplate_CreatesTemplate() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`INSERT INTO "templates" (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("3"))
	suite.mock.ExpectCommit()

	template, err := suite.repository.CreateTemplate(context.Background(), model.Template{
		UserID: 100,
		Name:   "Blind tasting",
		Fields: []model.TemplateField{{Name: "guess", Type: "text", Label: "Your guess"}},
	})

	suite.Require().NoError(err)
	suite.Equal(uint(3), template.ID)
	suite.Equal("Blind tasting", template.Name)
	suite.Len(template.Fields, 1)
}

func (suite *TemplateTestSuite) TestGetTemplateByID_NotFound() {
	suite.mock.ExpectQuery(`SELECT (.+) FROM "templates" WHERE (.+)`).
		WithArgs(999, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	template, err := suite.repository.GetTemplateByID(context.Background(), 999)

	suite.Nil(template)
	suite.ErrorIs(err, repository.ErrTemplateNotFound)
}

func (suite *TemplateTestSuite) TestGetTemplatesForUser_OrdersByUpdatedAt() {
	suite.mock.ExpectQuery(`SELECT (.+) FROM "templates" WHERE user_id = (.+) ORDER BY updated_at desc`).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "fields"}).
			AddRow(2, "WSET", []byte(`[{"name":"finish","type":"text","label":"Finish"}]`)).
			AddRow(1, "Quick note", []byte(`[]`)))

	templates, err := suite.repository.GetTemplatesForUser(context.Background(), 100)

	suite.Require().NoError(err)
	suite.Len(templates, 2)
	suite.Equal("WSET", templates[0].Name)
	suite.Len(templates[0].Fields, 1)
	suite.Equal("finish", templates[0].Fields[0].Name)
}

func (suite *TemplateTestSuite) TestDeleteTemplate_DetachesNotesFirst() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE "tasting_notes" SET (.+) WHERE template_id = (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	suite.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "templates" SET "deleted_at"=$1 WHERE "templates"."id" = $2 AND "templates"."deleted_at" IS NULL`)).
		WithArgs(sqlmock.AnyArg(), 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	suite.mock.ExpectCommit()

	err := suite.repository.DeleteTemplate(context.Background(), 3)
	suite.NoError(err)
}

func (suite *TemplateTestSuite) TestSetDefaultTemplate_ClearsOthers() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE "templates" SET (.+) WHERE user_id = (.+) AND id <> (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	suite.mock.ExpectExec(`UPDATE "templates" SET (.+) WHERE user_id = (.+) AND id = (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	suite.mock.ExpectCommit()

	err := suite.repository.SetDefaultTemplate(context.Background(), 100, 3)
	suite.NoError(err)
}

func (suite *TemplateTestSuite) TestSetDefaultTemplate_MissingTemplate() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE "templates" SET (.+) WHERE user_id = (.+) AND id <> (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	suite.mock.ExpectExec(`UPDATE "templates" SET (.+) WHERE user_id = (.+) AND id = (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	suite.mock.ExpectRollback()

	err := suite.repository.SetDefaultTemplate(context.Background(), 100, 999)
	suite.ErrorIs(err, repository.ErrTemplateNotFound)
}

func (suite *TemplateTestSuite) TestCreateTemplate_DefaultClearsOthersInSameTransaction() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`INSERT INTO "templates" (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("3"))
	suite.mock.ExpectExec(`UPDATE "templates" SET (.+) WHERE user_id = (.+) AND id <> (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	suite.mock.ExpectCommit()

	template, err := suite.repository.CreateTemplate(context.Background(), model.Template{
		UserID:    100,
		Name:      "Daily",
		IsDefault: true,
	})

	suite.Require().NoError(err)
	suite.Equal(uint(3), template.ID)
}

func (suite *TemplateTestSuite) TestCreateTemplate_RollsBackWhenClearFails() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`INSERT INTO "templates" (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("3"))
	suite.mock.ExpectExec(`UPDATE "templates" SET (.+) WHERE user_id = (.+) AND id <> (.+)`).
		WillReturnError(errDeadlock)
	suite.mock.ExpectRollback()

	template, err := suite.repository.CreateTemplate(context.Background(), model.Template{
		UserID:    100,
		Name:      "Daily",
		IsDefault: true,
	})

	suite.Nil(template)
	suite.ErrorIs(err, errDeadlock)
}

func (suite *TemplateTestSuite) TestSaveTemplate_DefaultClearsOthersInSameTransaction() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE "templates" SET (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	suite.mock.ExpectExec(`UPDATE "templates" SET (.+) WHERE user_id = (.+) AND id <> (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	suite.mock.ExpectCommit()

	template := &model.Template{UserID: 100, Name: "Daily", IsDefault: true}
	template.ID = 3

	_, err := suite.repository.SaveTemplate(context.Background(), template)
	suite.NoError(err)
}
