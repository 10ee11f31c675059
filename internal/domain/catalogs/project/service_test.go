package project

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitestock/internal/core/apperror"
	"sitestock/internal/core/id"
)

type mockRepo struct {
	projects map[id.ID]Project
}

func newMockRepo() *mockRepo {
	return &mockRepo{projects: make(map[id.ID]Project)}
}

func (r *mockRepo) Create(ctx context.Context, p *Project) error {
	r.projects[p.ID] = *p
	return nil
}

func (r *mockRepo) Update(ctx context.Context, p *Project) error {
	if _, ok := r.projects[p.ID]; !ok {
		return apperror.NewNotFound("project", p.ID)
	}
	r.projects[p.ID] = *p
	return nil
}

func (r *mockRepo) GetByID(ctx context.Context, companyID, projectID id.ID) (*Project, error) {
	p, ok := r.projects[projectID]
	if !ok || p.CompanyID != companyID {
		return nil, apperror.NewNotFound("project", projectID)
	}
	return &p, nil
}

func (r *mockRepo) ListByCompany(ctx context.Context, companyID id.ID, includeInactive bool) ([]Project, error) {
	var out []Project
	for _, p := range r.projects {
		if p.CompanyID != companyID {
			continue
		}
		if !includeInactive && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *mockRepo) Exists(ctx context.Context, companyID, projectID id.ID) (bool, error) {
	p, ok := r.projects[projectID]
	return ok && p.CompanyID == companyID && p.IsActive, nil
}

func (r *mockRepo) Deactivate(ctx context.Context, companyID, projectID id.ID) error {
	p, ok := r.projects[projectID]
	if !ok || p.CompanyID != companyID {
		return apperror.NewNotFound("project", projectID)
	}
	p.IsActive = false
	r.projects[projectID] = p
	return nil
}

func TestCreate_Valid(t *testing.T) {
	svc := NewService(newMockRepo())
	companyID := id.New()

	p := NewProject(companyID, "SITE-A", "Riverside Tower")
	require.NoError(t, svc.Create(context.Background(), p))

	stored, err := svc.GetByID(context.Background(), companyID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Riverside Tower", stored.Name)
}

func TestCreate_MissingName(t *testing.T) {
	svc := NewService(newMockRepo())

	err := svc.Create(context.Background(), NewProject(id.New(), "SITE-A", ""))
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestExists_ScopedToCompany(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	companyID := id.New()

	p := NewProject(companyID, "SITE-A", "Riverside Tower")
	require.NoError(t, svc.Create(context.Background(), p))

	exists, err := svc.Exists(context.Background(), companyID, p.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	// Another company never sees it.
	exists, err = svc.Exists(context.Background(), id.New(), p.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeactivate_HidesFromScopes(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	companyID := id.New()

	p := NewProject(companyID, "SITE-A", "Riverside Tower")
	require.NoError(t, svc.Create(context.Background(), p))
	require.NoError(t, svc.Deactivate(context.Background(), companyID, p.ID))

	exists, err := svc.Exists(context.Background(), companyID, p.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	projects, err := svc.List(context.Background(), companyID, false)
	require.NoError(t, err)
	assert.Empty(t, projects)
}
