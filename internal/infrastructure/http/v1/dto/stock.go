package dto

import (
	"time"

	"sitestock/internal/core/apperror"
	"sitestock/internal/core/id"
	"sitestock/internal/core/types"
	"sitestock/internal/domain/stock"
)

// AdjustStockRequest is the body of POST /stock/adjust.
// Quantity accepts a JSON number or string; it must be strictly positive,
// direction is conveyed by type.
type AdjustStockRequest struct {
	ItemID   string         `json:"itemId" binding:"required"`
	Type     string         `json:"type" binding:"required"`
	Kind     *string        `json:"kind"`
	Quantity types.Decimal  `json:"quantity"`
	UnitCost *types.Decimal `json:"unitCost"`

	ProjectID            *string `json:"projectId"`
	DestinationProjectID *string `json:"destinationProjectId"`
	VendorID             *string `json:"vendorId"`

	ReferenceType *string `json:"referenceType"`
	ReferenceID   *string `json:"referenceId"`

	MovementDate *time.Time `json:"movementDate"`
}

// ToParams converts the request into adjuster parameters.
func (r *AdjustStockRequest) ToParams(companyID id.ID) (stock.AdjustParams, error) {
	p := stock.AdjustParams{
		CompanyID:     companyID,
		Type:          stock.MovementType(r.Type),
		Quantity:      r.Quantity,
		UnitCost:      r.UnitCost,
		ReferenceType: r.ReferenceType,
		ReferenceID:   r.ReferenceID,
	}

	itemID, err := id.Parse(r.ItemID)
	if err != nil {
		return p, apperror.NewValidation("invalid itemId format")
	}
	p.ItemID = itemID

	if r.Kind != nil {
		kind := stock.MovementKind(*r.Kind)
		p.Kind = &kind
	}

	if p.ProjectID, err = parseOptionalID(r.ProjectID, "projectId"); err != nil {
		return p, err
	}
	if p.DestinationProjectID, err = parseOptionalID(r.DestinationProjectID, "destinationProjectId"); err != nil {
		return p, err
	}
	if p.VendorID, err = parseOptionalID(r.VendorID, "vendorId"); err != nil {
		return p, err
	}

	if r.MovementDate != nil {
		p.MovementDate = *r.MovementDate
	}

	return p, nil
}

func parseOptionalID(raw *string, field string) (*id.ID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := id.Parse(*raw)
	if err != nil {
		return nil, apperror.NewValidation("invalid " + field + " format")
	}
	return &parsed, nil
}

// BalanceResponse is the API shape of a cached balance.
type BalanceResponse struct {
	ItemID         string        `json:"itemId"`
	Quantity       types.Decimal `json:"quantity"`
	AvgCost        types.Decimal `json:"avgCost"`
	TotalValue     types.Decimal `json:"totalValue"`
	LastMovementAt time.Time     `json:"lastMovementAt"`
}

// FromBalance converts a domain balance to its response shape.
func FromBalance(b stock.Balance) BalanceResponse {
	return BalanceResponse{
		ItemID:         b.ItemID.String(),
		Quantity:       b.Quantity,
		AvgCost:        b.AvgCost,
		TotalValue:     b.Value(),
		LastMovementAt: b.LastMovementAt,
	}
}

// AdjustStockResponse is returned by POST /stock/adjust.
type AdjustStockResponse struct {
	MovementID     string          `json:"movementId"`
	Balance        BalanceResponse `json:"balance"`
	AlreadyApplied bool            `json:"alreadyApplied"`
}

// FromAdjustResult converts an adjuster result to its response shape.
func FromAdjustResult(r *stock.AdjustResult) AdjustStockResponse {
	return AdjustStockResponse{
		MovementID:     r.MovementID.String(),
		Balance:        FromBalance(r.Balance),
		AlreadyApplied: r.AlreadyApplied,
	}
}

// MovementResponse is the API shape of one ledger row.
type MovementResponse struct {
	ID           string         `json:"id"`
	ItemID       string         `json:"itemId"`
	Type         string         `json:"type"`
	Kind         *string        `json:"kind,omitempty"`
	Quantity     types.Decimal  `json:"quantity"`
	UnitCost     *types.Decimal `json:"unitCost,omitempty"`
	ProjectID    *string        `json:"projectId,omitempty"`
	VendorID     *string        `json:"vendorId,omitempty"`
	MovementDate time.Time      `json:"movementDate"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// FromMovement converts a domain movement to its response shape.
func FromMovement(m stock.Movement) MovementResponse {
	resp := MovementResponse{
		ID:           m.ID.String(),
		ItemID:       m.ItemID.String(),
		Type:         string(m.Type),
		Quantity:     m.Quantity,
		UnitCost:     m.UnitCost,
		MovementDate: m.MovementDate,
		CreatedAt:    m.CreatedAt,
	}
	if m.Kind != nil {
		kind := string(*m.Kind)
		resp.Kind = &kind
	}
	if m.ProjectID != nil {
		s := m.ProjectID.String()
		resp.ProjectID = &s
	}
	if m.VendorID != nil {
		s := m.VendorID.String()
		resp.VendorID = &s
	}
	return resp
}
