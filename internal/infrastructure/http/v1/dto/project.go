package dto

import (
	"sitestock/internal/core/id"
	"sitestock/internal/domain/catalogs/project"
)

// CreateProjectRequest is the body of POST /projects.
type CreateProjectRequest struct {
	Code string `json:"code"`
	Name string `json:"name" binding:"required"`
}

// ToModel builds a project from the request.
func (r *CreateProjectRequest) ToModel(companyID id.ID) *project.Project {
	return project.NewProject(companyID, r.Code, r.Name)
}

// UpdateProjectRequest is the body of PUT /projects/:id.
type UpdateProjectRequest struct {
	Code     string `json:"code"`
	Name     string `json:"name" binding:"required"`
	IsActive *bool  `json:"isActive"`
}

// Apply overlays the request onto an existing project.
func (r *UpdateProjectRequest) Apply(p *project.Project) {
	p.Code = r.Code
	p.Name = r.Name
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
}
