// Package project provides the project catalog. Projects are construction
// sites; they act as the reporting scopes for the stock overview and as the
// destinations of stock transfers.
package project

import (
	"context"
	"time"

	"sitestock/internal/core/apperror"
	"sitestock/internal/core/id"
)

// Project represents one construction site owned by a company.
type Project struct {
	ID        id.ID `db:"id" json:"id"`
	CompanyID id.ID `db:"company_id" json:"companyId"`

	// Code is a short human-readable identifier, unique per company.
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`

	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewProject creates a new Project with generated ID.
func NewProject(companyID id.ID, code, name string) *Project {
	now := time.Now().UTC()
	return &Project{
		ID:        id.New(),
		CompanyID: companyID,
		Code:      code,
		Name:      name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks required fields.
func (p *Project) Validate(ctx context.Context) error {
	if id.IsNil(p.CompanyID) {
		return apperror.NewValidation("companyId is required")
	}
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}
