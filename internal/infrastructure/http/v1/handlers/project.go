package handlers

import (
	"github.com/gin-gonic/gin"

	"sitestock/internal/domain/catalogs/project"
	"sitestock/internal/infrastructure/http/v1/dto"
)

// ProjectHandler handles HTTP requests for the project catalog.
type ProjectHandler struct {
	*BaseHandler
	service *project.Service
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(base *BaseHandler, service *project.Service) *ProjectHandler {
	return &ProjectHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.CreateProjectRequest
	if !h.BindJSON(c, &req) {
		return
	}

	model := req.ToModel(h.GetCompanyID(c))
	if err := h.service.Create(c.Request.Context(), model); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, model.ID.String())
}

// GetByID handles GET /projects/:id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	projectID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	model, err := h.service.GetByID(c.Request.Context(), h.GetCompanyID(c), projectID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, model)
}

// List handles GET /projects
func (h *ProjectHandler) List(c *gin.Context) {
	includeInactive := c.Query("includeInactive") == "true"

	projects, err := h.service.List(c.Request.Context(), h.GetCompanyID(c), includeInactive)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, projects)
}

// Update handles PUT /projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	projectID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	model, err := h.service.GetByID(ctx, h.GetCompanyID(c), projectID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.Apply(model)
	if err := h.service.Update(ctx, model); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, model)
}

// Deactivate handles DELETE /projects/:id
func (h *ProjectHandler) Deactivate(c *gin.Context) {
	projectID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), h.GetCompanyID(c), projectID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
