package handlers

import (
	"github.com/gin-gonic/gin"

	"sitestock/internal/domain/catalogs/item"
	"sitestock/internal/infrastructure/http/v1/dto"
)

// ItemHandler handles HTTP requests for the stock item catalog.
type ItemHandler struct {
	*BaseHandler
	service *item.Service
}

// NewItemHandler creates a new item handler.
func NewItemHandler(base *BaseHandler, service *item.Service) *ItemHandler {
	return &ItemHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /items
func (h *ItemHandler) Create(c *gin.Context) {
	var req dto.CreateStockItemRequest
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

// GetByID handles GET /items/:id
func (h *ItemHandler) GetByID(c *gin.Context) {
	itemID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	model, err := h.service.GetByID(c.Request.Context(), h.GetCompanyID(c), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, model)
}

// List handles GET /items
func (h *ItemHandler) List(c *gin.Context) {
	includeInactive := c.Query("includeInactive") == "true"

	items, err := h.service.List(c.Request.Context(), h.GetCompanyID(c), includeInactive)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, items)
}

// Update handles PUT /items/:id
func (h *ItemHandler) Update(c *gin.Context) {
	itemID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateStockItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	model, err := h.service.GetByID(ctx, h.GetCompanyID(c), itemID)
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

// Deactivate handles DELETE /items/:id
func (h *ItemHandler) Deactivate(c *gin.Context) {
	itemID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), h.GetCompanyID(c), itemID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
