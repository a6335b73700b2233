package service

import (
	"context"
	"time"

	"github.com/ivopashov/classdocs/internal/access"
	"github.com/ivopashov/classdocs/internal/database"
	"github.com/ivopashov/classdocs/internal/models"
	"github.com/ivopashov/classdocs/internal/snowflake"
)

// TemplateService manages reusable document scaffolds. Templates are managed
// by elevated actors and readable by everyone.
type TemplateService struct {
	templates database.TemplateRepository
	snowflake *snowflake.Generator
}

// NewTemplateService creates a TemplateService.
func NewTemplateService(templates database.TemplateRepository, sf *snowflake.Generator) *TemplateService {
	return &TemplateService{templates: templates, snowflake: sf}
}

// CreateTemplate creates a template. Elevated actors only.
func (s *TemplateService) CreateTemplate(ctx context.Context, userID int64, role access.Role, name, content string) (*models.Template, error) {
	if err := RequireElevated(role); err != nil {
		return nil, err
	}
	if len(name) < 1 || len(name) > 200 {
		return nil, BadRequest("INVALID_NAME", "template name must be 1-200 characters")
	}

	tmpl := &models.Template{
		ID:        s.snowflake.Generate().Int64(),
		Name:      name,
		Content:   content,
		CreatedBy: userID,
		CreatedAt: time.Now(),
	}
	if err := s.templates.Create(ctx, tmpl); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	return tmpl, nil
}

// GetTemplate returns a template by ID.
func (s *TemplateService) GetTemplate(ctx context.Context, templateID int64) (*models.Template, error) {
	tmpl, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if tmpl == nil {
		return nil, NotFound("NOT_FOUND", "template not found")
	}
	return tmpl, nil
}

// ListTemplates returns all templates.
func (s *TemplateService) ListTemplates(ctx context.Context) ([]models.Template, error) {
	templates, err := s.templates.List(ctx)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if templates == nil {
		templates = []models.Template{}
	}
	return templates, nil
}

// UpdateTemplate updates a template's name and/or content. Elevated actors
// only.
func (s *TemplateService) UpdateTemplate(ctx context.Context, role access.Role, templateID int64, name, content *string) (*models.Template, error) {
	if err := RequireElevated(role); err != nil {
		return nil, err
	}

	tmpl, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if tmpl == nil {
		return nil, NotFound("NOT_FOUND", "template not found")
	}

	if name != nil {
		if len(*name) < 1 || len(*name) > 200 {
			return nil, BadRequest("INVALID_NAME", "template name must be 1-200 characters")
		}
		tmpl.Name = *name
	}
	if content != nil {
		tmpl.Content = *content
	}

	if err := s.templates.Update(ctx, tmpl); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	return tmpl, nil
}

// DeleteTemplate deletes a template. Elevated actors only.
func (s *TemplateService) DeleteTemplate(ctx context.Context, role access.Role, templateID int64) error {
	if err := RequireElevated(role); err != nil {
		return err
	}

	tmpl, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if tmpl == nil {
		return NotFound("NOT_FOUND", "template not found")
	}

	return s.templates.Delete(ctx, templateID)
}
