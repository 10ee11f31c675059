package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"sitestock/internal/core/apperror"
	"sitestock/internal/domain/stock"
	"sitestock/internal/infrastructure/http/v1/dto"
)

// StockHandler handles HTTP requests for the stock register.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *stock.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Adjust handles POST /stock/adjust
func (h *StockHandler) Adjust(c *gin.Context) {
	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	params, err := req.ToParams(h.GetCompanyID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.AdjustStock(c.Request.Context(), params)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromAdjustResult(result))
}

// GetOverview handles GET /stock/overview
func (h *StockHandler) GetOverview(c *gin.Context) {
	projectID, ok := h.ParseIDQuery(c, "projectId")
	if !ok {
		return
	}

	overview, err := h.service.GetOverview(c.Request.Context(), h.GetCompanyID(c), stock.Scope{ProjectID: projectID})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, overview)
}

// GetBalances handles GET /stock/balances
func (h *StockHandler) GetBalances(c *gin.Context) {
	filter := stock.BalanceFilter{
		ExcludeZero: c.Query("excludeZero") == "true",
	}

	balances, err := h.service.ListBalances(c.Request.Context(), h.GetCompanyID(c), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := make([]dto.BalanceResponse, len(balances))
	for i, b := range balances {
		resp[i] = dto.FromBalance(b)
	}
	h.OK(c, resp)
}

// GetBalance handles GET /stock/balances/:itemId
func (h *StockHandler) GetBalance(c *gin.Context) {
	itemID, ok := h.ParseIDParam(c, "itemId")
	if !ok {
		return
	}

	balance, err := h.service.GetBalance(c.Request.Context(), h.GetCompanyID(c), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromBalance(balance))
}

// GetMovements handles GET /stock/movements
func (h *StockHandler) GetMovements(c *gin.Context) {
	filter := stock.MovementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	var ok bool
	if filter.ItemID, ok = h.ParseIDQuery(c, "itemId"); !ok {
		return
	}
	if filter.ProjectID, ok = h.ParseIDQuery(c, "projectId"); !ok {
		return
	}

	if raw := c.Query("type"); raw != "" {
		mt := stock.MovementType(raw)
		if !mt.IsValid() {
			h.Error(c, apperror.NewValidation("invalid type filter"))
			return
		}
		filter.Type = &mt
	}

	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid from date, expected RFC3339"))
			return
		}
		filter.FromDate = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid to date, expected RFC3339"))
			return
		}
		filter.ToDate = &to
	}

	movements, err := h.service.MovementHistory(c.Request.Context(), h.GetCompanyID(c), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := make([]dto.MovementResponse, len(movements))
	for i, m := range movements {
		resp[i] = dto.FromMovement(m)
	}
	h.OK(c, resp)
}

// Reconcile handles GET /stock/reconcile/:itemId
func (h *StockHandler) Reconcile(c *gin.Context) {
	itemID, ok := h.ParseIDParam(c, "itemId")
	if !ok {
		return
	}

	rec, err := h.service.Reconcile(c.Request.Context(), h.GetCompanyID(c), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, rec)
}
