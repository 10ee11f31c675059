package stock

import (
	"slices"
	"strings"
	"time"

	"sitestock/internal/core/id"
	"sitestock/internal/core/types"
)

// MovementType is the coarse legacy direction of a movement.
type MovementType string

const (
	TypeIn     MovementType = "in"
	TypeOut    MovementType = "out"
	TypeAdjust MovementType = "adjust"
)

// IsValid reports whether t is a known movement type.
func (t MovementType) IsValid() bool {
	switch t {
	case TypeIn, TypeOut, TypeAdjust:
		return true
	}
	return false
}

// MovementKind is the fine-grained movement classification. Older rows
// predate it and carry only the coarse type.
type MovementKind string

const (
	KindOpening     MovementKind = "opening"
	KindReceive     MovementKind = "receive"
	KindTransferIn  MovementKind = "transfer_in"
	KindReturnIn    MovementKind = "return_in"
	KindIssue       MovementKind = "issue"
	KindTransferOut MovementKind = "transfer_out"
	KindWastage     MovementKind = "wastage"
	KindAdjustment  MovementKind = "adjustment"
)

// Category is the semantic class a movement replays as.
type Category string

const (
	CategoryOpening Category = "opening"
	CategoryIn      Category = "in"
	CategoryOut     Category = "out"
	CategoryWastage Category = "wastage"
	CategoryAdjust  Category = "adjust"
)

// Movement is a single append-only stock event. Movements are never updated
// or deleted; corrections are new movements.
type Movement struct {
	ID        id.ID         `db:"id" json:"id"`
	CompanyID id.ID         `db:"company_id" json:"companyId"`
	ItemID    id.ID         `db:"item_id" json:"itemId"`
	Type      MovementType  `db:"type" json:"type"`
	Kind      *MovementKind `db:"kind" json:"kind,omitempty"`

	// Quantity is signed. The replay path interprets adjust rows by sign;
	// in/out rows are stored positive/negative respectively.
	Quantity types.Decimal `db:"quantity" json:"quantity"`

	// UnitCost is present on inbound-flavored movements and absent on most
	// outbound ones (outflows are valued at the running average).
	UnitCost *types.Decimal `db:"unit_cost" json:"unitCost,omitempty"`

	ProjectID            *id.ID `db:"project_id" json:"projectId,omitempty"`
	DestinationProjectID *id.ID `db:"destination_project_id" json:"destinationProjectId,omitempty"`
	VendorID             *id.ID `db:"vendor_id" json:"vendorId,omitempty"`

	// ReferenceType/ReferenceID link the movement to the external event that
	// produced it (a posted purchase, a form submission) and act as the
	// idempotency key for AdjustStock.
	ReferenceType *string `db:"reference_type" json:"referenceType,omitempty"`
	ReferenceID   *string `db:"reference_id" json:"referenceId,omitempty"`

	// MovementDate is the business date; CreatedAt is the system insert
	// time used as ordering tiebreak.
	MovementDate time.Time `db:"movement_date" json:"movementDate"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Classify maps a movement to its replay category. Kind wins over the
// legacy type; unknown inputs never error, they fall through to the
// inbound default.
func Classify(m Movement) Category {
	if m.Kind != nil {
		switch *m.Kind {
		case KindOpening:
			return CategoryOpening
		case KindReceive, KindTransferIn, KindReturnIn:
			return CategoryIn
		case KindIssue, KindTransferOut:
			return CategoryOut
		case KindWastage:
			return CategoryWastage
		case KindAdjustment:
			return CategoryAdjust
		}
	}

	switch m.Type {
	case TypeIn:
		return CategoryIn
	case TypeOut:
		return CategoryOut
	case TypeAdjust:
		// Replayed as a sign-split delta, see Replay.
		return CategoryAdjust
	}

	return CategoryIn
}

// CompareMovements is the canonical total order for replay: business date,
// then insert time, then id as a lexicographic string. Replay correctness
// depends on this being total, so same-instant inserts still order
// deterministically.
func CompareMovements(a, b Movement) int {
	if c := a.MovementDate.Compare(b.MovementDate); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID.String(), b.ID.String())
}

// SortMovements sorts movements into canonical replay order in place.
func SortMovements(movements []Movement) {
	slices.SortStableFunc(movements, CompareMovements)
}

// Balance is the cached projection of the movement stream for one item.
// Mutated only by Service.AdjustStock under a row lock; always reproducible
// by replaying the item's movements in canonical order (modulo the adjust
// divergence described in the package doc).
type Balance struct {
	CompanyID id.ID `db:"company_id" json:"companyId"`
	ItemID    id.ID `db:"item_id" json:"itemId"`

	// Quantity is never negative. AvgCost is zero exactly when Quantity is.
	Quantity types.Decimal `db:"quantity" json:"quantity"`
	AvgCost  types.Decimal `db:"avg_cost" json:"avgCost"`

	LastMovementAt time.Time `db:"last_movement_at" json:"lastMovementAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// Value returns the balance valuation (quantity x average cost).
func (b Balance) Value() types.Decimal {
	return b.Quantity.Mul(b.AvgCost)
}
