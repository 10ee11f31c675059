package project

import (
	"context"

	"sitestock/internal/core/id"
)

// Repository defines persistence operations for the project catalog.
type Repository interface {
	Create(ctx context.Context, p *Project) error
	Update(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, companyID, projectID id.ID) (*Project, error)
	ListByCompany(ctx context.Context, companyID id.ID, includeInactive bool) ([]Project, error)
	Exists(ctx context.Context, companyID, projectID id.ID) (bool, error)
	Deactivate(ctx context.Context, companyID, projectID id.ID) error
}
