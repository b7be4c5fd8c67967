package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"winenow.app/WineNowNote/pkg/auth"
	"winenow.app/WineNowNote/pkg/model"
	"winenow.app/WineNowNote/pkg/repository"
)

type templateRepository interface {
	CreateTemplate(ctx context.Context, template model.Template) (*model.Template, error)
	GetTemplateByID(ctx context.Context, templateID uint) (*model.Template, error)
	GetTemplatesForUser(ctx context.Context, userID uint) ([]*model.Template, error)
	SaveTemplate(ctx context.Context, template *model.Template) (*model.Template, error)
	DeleteTemplate(ctx context.Context, templateID uint) error
	SetDefaultTemplate(ctx context.Context, userID uint, templateID uint) error
}

type TemplateServer struct {
	repository templateRepository
	logger     *zap.Logger
}

func NewTemplateServer(repository templateRepository, logger *zap.Logger) *TemplateServer {
	return &TemplateServer{repository: repository, logger: logger}
}

func (t *TemplateServer) ListTemplates(c *gin.Context) {
	user, found := auth.CurrentUser(c)
	if !found {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no user in context"})

		return
	}

	templates, err := t.repository.GetTemplatesForUser(c.Request.Context(), user.ID)
	if err != nil {
		t.logger.Error("error listing templates", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list templates"})

		return
	}

	c.JSON(http.StatusOK, gin.H{"results": TemplatesFromModel(templates)})
}

type TemplateInput struct {
	Name      string                `json:"name" binding:"required,max=100"`
	Fields    []model.TemplateField `json:"fields"`
	IsDefault bool                  `json:"is_default"`
}

func (t *TemplateServer) CreateTemplate(c *gin.Context) {
	user, found := auth.CurrentUser(c)
	if !found {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no user in context"})

		return
	}

	var input TemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if err := validateTemplateFields(input.Fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	template, err := t.repository.CreateTemplate(c.Request.Context(), model.Template{
		UserID:    user.ID,
		Name:      input.Name,
		Fields:    input.Fields,
		IsDefault: input.IsDefault,
	})
	if err != nil {
		t.logger.Error("error creating template", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create template"})

		return
	}

	c.JSON(http.StatusCreated, TemplateFromModel(template))
}

func (t *TemplateServer) GetTemplate(c *gin.Context) {
	_, template, ok := t.ownedTemplate(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, TemplateFromModel(template))
}

type UpdateTemplateInput struct {
	Name      *string                `json:"name" binding:"omitempty,max=100"`
	Fields    *[]model.TemplateField `json:"fields"`
	IsDefault *bool                  `json:"is_default"`
}

func (t *TemplateServer) UpdateTemplate(c *gin.Context) {
	_, template, ok := t.ownedTemplate(c)
	if !ok {
		return
	}

	var input UpdateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if input.Name != nil {
		template.Name = *input.Name
	}

	if input.Fields != nil {
		if err := validateTemplateFields(*input.Fields); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

			return
		}

		template.Fields = *input.Fields
	}

	if input.IsDefault != nil {
		template.IsDefault = *input.IsDefault
	}

	updated, err := t.repository.SaveTemplate(c.Request.Context(), template)
	if err != nil {
		t.logger.Error("error updating template", zap.Uint("template_id", template.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update template"})

		return
	}

	c.JSON(http.StatusOK, TemplateFromModel(updated))
}

func (t *TemplateServer) DeleteTemplate(c *gin.Context) {
	_, template, ok := t.ownedTemplate(c)
	if !ok {
		return
	}

	if err := t.repository.DeleteTemplate(c.Request.Context(), template.ID); err != nil {
		t.logger.Error("error deleting template", zap.Uint("template_id", template.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete template"})

		return
	}

	c.Status(http.StatusNoContent)
}

// SetDefault marks the template as the caller's default and clears the
// flag everywhere else.
func (t *TemplateServer) SetDefault(c *gin.Context) {
	user, template, ok := t.ownedTemplate(c)
	if !ok {
		return
	}

	if err := t.repository.SetDefaultTemplate(c.Request.Context(), user.ID, template.ID); err != nil {
		if errors.Is(err, repository.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})

			return
		}

		t.logger.Error("error setting default template", zap.Uint("template_id", template.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set default template"})

		return
	}

	template.IsDefault = true

	c.JSON(http.StatusOK, TemplateFromModel(template))
}

// ownedTemplate loads the template from the id param and hides templates
// of other users behind a 404.
func (t *TemplateServer) ownedTemplate(c *gin.Context) (*model.User, *model.Template, bool) {
	user, found := auth.CurrentUser(c)
	if !found {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no user in context"})

		return nil, nil, false
	}

	templateID, err := uintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})

		return nil, nil, false
	}

	template, err := t.repository.GetTemplateByID(c.Request.Context(), templateID)
	if err != nil {
		if errors.Is(err, repository.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})

			return nil, nil, false
		}

		t.logger.Error("error loading template", zap.Uint("template_id", templateID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load template"})

		return nil, nil, false
	}

	if template.UserID != user.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})

		return nil, nil, false
	}

	return user, template, true
}

func validateTemplateFields(fields []model.TemplateField) error {
	var errs error

	for index, field := range fields {
		if field.Name == "" {
			errs = multierr.Append(errs, fmt.Errorf("fields[%d]: name is required", index))
		}

		if field.Type == "" {
			errs = multierr.Append(errs, fmt.Errorf("fields[%d]: type is required", index))
		}

		if field.Label == "" {
			errs = multierr.Append(errs, fmt.Errorf("fields[%d]: label is required", index))
		}
	}

	return errs
}
