package project

import (
	"context"

	"sitestock/internal/core/apperror"
	"sitestock/internal/core/id"
	"sitestock/internal/domain/stock"
	"sitestock/pkg/logger"
)

// Service provides business operations for the project catalog.
type Service struct {
	repo Repository
}

// NewService creates a new project catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a new project.
func (s *Service) Create(ctx context.Context, p *Project) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	logger.Info(ctx, "project created", "id", p.ID, "code", p.Code)
	return nil
}

// Update validates and stores changes to an existing project.
func (s *Service) Update(ctx context.Context, p *Project) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(p.ID) {
		return apperror.NewValidation("id is required")
	}
	return s.repo.Update(ctx, p)
}

// GetByID returns one project scoped to the company.
func (s *Service) GetByID(ctx context.Context, companyID, projectID id.ID) (*Project, error) {
	return s.repo.GetByID(ctx, companyID, projectID)
}

// List returns the company's projects.
func (s *Service) List(ctx context.Context, companyID id.ID, includeInactive bool) ([]Project, error) {
	if id.IsNil(companyID) {
		return nil, apperror.NewValidation("companyId is required")
	}
	return s.repo.ListByCompany(ctx, companyID, includeInactive)
}

// Exists implements stock.ProjectResolver for overview scope validation.
func (s *Service) Exists(ctx context.Context, companyID, projectID id.ID) (bool, error) {
	return s.repo.Exists(ctx, companyID, projectID)
}

// Deactivate soft-deletes a project.
func (s *Service) Deactivate(ctx context.Context, companyID, projectID id.ID) error {
	return s.repo.Deactivate(ctx, companyID, projectID)
}

// Ensure interface compliance.
var _ stock.ProjectResolver = (*Service)(nil)
