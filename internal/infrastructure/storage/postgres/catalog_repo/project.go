package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"sitestock/internal/core/apperror"
	"sitestock/internal/core/id"
	"sitestock/internal/domain/catalogs/project"
	"sitestock/internal/infrastructure/storage/postgres"
)

const projectsTable = "projects"

var projectColumns = []string{
	"id", "company_id", "code", "name", "is_active", "created_at", "updated_at",
}

// ProjectRepo implements project.Repository.
type ProjectRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewProjectRepo creates a new project catalog repository.
func NewProjectRepo(txm *postgres.TxManager) *ProjectRepo {
	return &ProjectRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new project.
func (r *ProjectRepo) Create(ctx context.Context, p *project.Project) error {
	q := r.builder.Insert(projectsTable).
		Columns(projectColumns...).
		Values(p.ID, p.CompanyID, p.Code, p.Name, p.IsActive, p.CreatedAt, p.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}

	return nil
}

// Update stores changes to an existing project.
func (r *ProjectRepo) Update(ctx context.Context, p *project.Project) error {
	q := r.builder.Update(projectsTable).
		Set("code", p.Code).
		Set("name", p.Name).
		Set("is_active", p.IsActive).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": p.ID, "company_id": p.CompanyID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("project", p.ID.String())
	}

	return nil
}

// GetByID returns one project scoped to the company.
func (r *ProjectRepo) GetByID(ctx context.Context, companyID, projectID id.ID) (*project.Project, error) {
	q := r.builder.Select(projectColumns...).
		From(projectsTable).
		Where(squirrel.Eq{"id": projectID, "company_id": companyID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p project.Project
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("project", projectID.String())
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	return &p, nil
}

// ListByCompany returns the company's projects ordered by code.
func (r *ProjectRepo) ListByCompany(ctx context.Context, companyID id.ID, includeInactive bool) ([]project.Project, error) {
	q := r.builder.Select(projectColumns...).
		From(projectsTable).
		Where(squirrel.Eq{"company_id": companyID})

	if !includeInactive {
		q = q.Where(squirrel.Eq{"is_active": true})
	}

	q = q.OrderBy("code", "id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var projects []project.Project
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &projects, sql, args...); err != nil {
		return nil, fmt.Errorf("select projects: %w", err)
	}

	return projects, nil
}

// Exists reports whether a project belongs to the company.
func (r *ProjectRepo) Exists(ctx context.Context, companyID, projectID id.ID) (bool, error) {
	sql := `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1 AND company_id = $2)`

	var exists bool
	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, projectID, companyID).Scan(&exists); err != nil {
		return false, fmt.Errorf("project exists: %w", err)
	}

	return exists, nil
}

// Deactivate soft-deletes a project.
func (r *ProjectRepo) Deactivate(ctx context.Context, companyID, projectID id.ID) error {
	q := r.builder.Update(projectsTable).
		Set("is_active", false).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": projectID, "company_id": companyID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("deactivate project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("project", projectID.String())
	}

	return nil
}

// Ensure interface compliance.
var _ project.Repository = (*ProjectRepo)(nil)
