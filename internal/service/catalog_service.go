package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/talentlens/talentlens-backend/internal/model"
	"github.com/talentlens/talentlens-backend/internal/repository"
)

// CatalogService serves the read-only assessment catalog (templates and
// competencies authored by external administrative flows).
type CatalogService struct {
	templateRepo   *repository.TemplateRepository
	competencyRepo *repository.CompetencyRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(templateRepo *repository.TemplateRepository, competencyRepo *repository.CompetencyRepository) *CatalogService {
	return &CatalogService{templateRepo: templateRepo, competencyRepo: competencyRepo}
}

// ListTemplates returns all active templates.
func (s *CatalogService) ListTemplates(ctx context.Context) ([]model.TestTemplate, error) {
	templates, err := s.templateRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	if templates == nil {
		templates = []model.TestTemplate{}
	}
	return templates, nil
}

// GetTemplate returns one active template by id.
func (s *CatalogService) GetTemplate(ctx context.Context, id uuid.UUID) (*model.TestTemplate, error) {
	tmpl, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "template", ID: id}
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	if !tmpl.Active {
		return nil, &NotFoundError{Resource: "template", ID: id}
	}
	return tmpl, nil
}

// ListCompetencies returns all active competencies.
func (s *CatalogService) ListCompetencies(ctx context.Context) ([]model.Competency, error) {
	competencies, err := s.competencyRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list competencies: %w", err)
	}
	if competencies == nil {
		competencies = []model.Competency{}
	}
	return competencies, nil
}
