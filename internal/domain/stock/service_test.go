package stock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitestock/internal/core/apperror"
	"sitestock/internal/core/id"
	"sitestock/internal/core/types"
)

// mockTxManager runs the function directly; the adjuster's transactional
// behavior is the postgres TxManager's concern.
type mockTxManager struct {
	calls int
}

func (m *mockTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type mockRepo struct {
	movements  []Movement
	balances   map[id.ID]Balance
	thresholds map[id.ID]types.Decimal

	lockCalls int
}

func newMockRepo() *mockRepo {
	return &mockRepo{balances: make(map[id.ID]Balance)}
}

func (r *mockRepo) CreateMovement(ctx context.Context, m *Movement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *mockRepo) FindMovementByReference(ctx context.Context, companyID, itemID id.ID, mType MovementType, refType, refID string) (*Movement, error) {
	for i := range r.movements {
		m := &r.movements[i]
		if m.CompanyID == companyID && m.ItemID == itemID && m.Type == mType &&
			m.ReferenceType != nil && *m.ReferenceType == refType &&
			m.ReferenceID != nil && *m.ReferenceID == refID {
			return m, nil
		}
	}
	return nil, nil
}

func (r *mockRepo) ListMovements(ctx context.Context, companyID id.ID, f MovementFilter) ([]Movement, error) {
	var out []Movement
	for _, m := range r.movements {
		if m.CompanyID != companyID {
			continue
		}
		if f.ItemID != nil && m.ItemID != *f.ItemID {
			continue
		}
		out = append(out, m)
	}
	SortMovements(out)
	return out, nil
}

func (r *mockRepo) ListMovementsForScope(ctx context.Context, companyID id.ID, projectID *id.ID) ([]Movement, error) {
	var out []Movement
	for _, m := range r.movements {
		if m.CompanyID != companyID {
			continue
		}
		if projectID != nil && !movementInScope(m, *projectID) {
			continue
		}
		out = append(out, m)
	}
	SortMovements(out)
	return out, nil
}

// movementInScope mirrors the repository scope rule: a movement belongs to
// a project through its primary project, or as an inbound transfer whose
// destination is that project.
func movementInScope(m Movement, projectID id.ID) bool {
	if m.ProjectID != nil && *m.ProjectID == projectID {
		return true
	}
	return m.DestinationProjectID != nil && *m.DestinationProjectID == projectID &&
		m.Kind != nil && *m.Kind == KindTransferIn
}

func (r *mockRepo) GetBalance(ctx context.Context, companyID, itemID id.ID) (Balance, error) {
	if b, ok := r.balances[itemID]; ok {
		return b, nil
	}
	return Balance{CompanyID: companyID, ItemID: itemID, Quantity: types.Zero(), AvgCost: types.Zero()}, nil
}

func (r *mockRepo) GetBalanceForUpdate(ctx context.Context, companyID, itemID id.ID) (Balance, error) {
	r.lockCalls++
	return r.GetBalance(ctx, companyID, itemID)
}

func (r *mockRepo) UpsertBalance(ctx context.Context, b Balance) error {
	r.balances[b.ItemID] = b
	return nil
}

func (r *mockRepo) ListBalances(ctx context.Context, companyID id.ID, f BalanceFilter) ([]Balance, error) {
	var out []Balance
	for _, b := range r.balances {
		if b.CompanyID != companyID {
			continue
		}
		if f.ExcludeZero && b.Quantity.IsZero() {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *mockRepo) GetThresholds(ctx context.Context, companyID id.ID, projectID *id.ID) (map[id.ID]types.Decimal, error) {
	return r.thresholds, nil
}

type mockProjects struct {
	existing map[id.ID]bool
}

func (p *mockProjects) Exists(ctx context.Context, companyID, projectID id.ID) (bool, error) {
	return p.existing[projectID], nil
}

type mockItems struct {
	items map[id.ID]ItemInfo
}

func (s *mockItems) ItemsByCompany(ctx context.Context, companyID id.ID) (map[id.ID]ItemInfo, error) {
	return s.items, nil
}

type mockAudit struct {
	records []AdjustmentRecord
}

func (a *mockAudit) LogAdjustment(ctx context.Context, rec AdjustmentRecord) error {
	a.records = append(a.records, rec)
	return nil
}

type serviceFixture struct {
	svc   *Service
	repo  *mockRepo
	txm   *mockTxManager
	audit *mockAudit

	companyID id.ID
	itemID    id.ID
}

func newServiceFixture() *serviceFixture {
	repo := newMockRepo()
	txm := &mockTxManager{}
	audit := &mockAudit{}
	f := &serviceFixture{
		repo:      repo,
		txm:       txm,
		audit:     audit,
		companyID: id.New(),
		itemID:    id.New(),
	}
	f.svc = NewService(repo, &mockProjects{}, &mockItems{}, txm, audit)
	return f
}

func (f *serviceFixture) adjust(t *testing.T, p AdjustParams) *AdjustResult {
	t.Helper()
	p.CompanyID = f.companyID
	p.ItemID = f.itemID
	result, err := f.svc.AdjustStock(context.Background(), p)
	require.NoError(t, err)
	return result
}

func TestAdjustStock_InBlendsAverage(t *testing.T) {
	f := newServiceFixture()

	f.adjust(t, AdjustParams{
		Type:     TypeIn,
		Quantity: types.MustDecimal("10"),
		UnitCost: costPtr("100"),
	})
	result := f.adjust(t, AdjustParams{
		Type:     TypeIn,
		Quantity: types.MustDecimal("10"),
		UnitCost: costPtr("200"),
	})

	assert.True(t, result.Balance.Quantity.Equal(types.MustDecimal("20")))
	assert.True(t, result.Balance.AvgCost.Equal(types.MustDecimal("150")), "avg cost = %s", result.Balance.AvgCost)
	assert.Len(t, f.repo.movements, 2)
	assert.Equal(t, 2, f.repo.lockCalls, "every mutation must lock the balance row")

	// The audit trail frames each adjustment with the balance it read and
	// the balance it wrote.
	require.Len(t, f.audit.records, 2)
	rec := f.audit.records[1]
	assert.True(t, rec.Before.Quantity.Equal(types.MustDecimal("10")))
	assert.True(t, rec.Before.AvgCost.Equal(types.MustDecimal("100")))
	assert.True(t, rec.Balance.Quantity.Equal(types.MustDecimal("20")))
	assert.True(t, rec.Balance.AvgCost.Equal(types.MustDecimal("150")))
}

func TestAdjustStock_InWithoutCostKeepsAverage(t *testing.T) {
	f := newServiceFixture()

	f.adjust(t, AdjustParams{Type: TypeIn, Quantity: types.MustDecimal("10"), UnitCost: costPtr("100")})
	result := f.adjust(t, AdjustParams{Type: TypeIn, Quantity: types.MustDecimal("5")})

	assert.True(t, result.Balance.Quantity.Equal(types.MustDecimal("15")))
	assert.True(t, result.Balance.AvgCost.Equal(types.MustDecimal("100")))
}

func TestAdjustStock_OutRejectsInsufficient(t *testing.T) {
	f := newServiceFixture()

	f.adjust(t, AdjustParams{Type: TypeIn, Quantity: types.MustDecimal("5"), UnitCost: costPtr("100")})

	_, err := f.svc.AdjustStock(context.Background(), AdjustParams{
		CompanyID: f.companyID,
		ItemID:    f.itemID,
		Type:      TypeOut,
		Quantity:  types.MustDecimal("8"),
	})

	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "8", appErr.Details["requested"])
	assert.Equal(t, "5", appErr.Details["available"])

	// A rejected adjustment leaves no trace.
	assert.Len(t, f.repo.movements, 1)
	balance, _ := f.repo.GetBalance(context.Background(), f.companyID, f.itemID)
	assert.True(t, balance.Quantity.Equal(types.MustDecimal("5")))
}

func TestAdjustStock_OutStoresNegativeQuantity(t *testing.T) {
	f := newServiceFixture()

	f.adjust(t, AdjustParams{Type: TypeIn, Quantity: types.MustDecimal("10"), UnitCost: costPtr("100")})
	result := f.adjust(t, AdjustParams{Type: TypeOut, Quantity: types.MustDecimal("4")})

	assert.True(t, result.Balance.Quantity.Equal(types.MustDecimal("6")))
	assert.True(t, f.repo.movements[1].Quantity.Equal(types.MustDecimal("-4")))
}

func TestAdjustStock_DrainToZeroResetsCost(t *testing.T) {
	f := newServiceFixture()

	f.adjust(t, AdjustParams{Type: TypeIn, Quantity: types.MustDecimal("10"), UnitCost: costPtr("100")})
	result := f.adjust(t, AdjustParams{Type: TypeOut, Quantity: types.MustDecimal("10")})

	assert.True(t, result.Balance.Quantity.IsZero())
	assert.True(t, result.Balance.AvgCost.IsZero())
}

func TestAdjustStock_AdjustSetsAbsoluteLevel(t *testing.T) {
	f := newServiceFixture()

	f.adjust(t, AdjustParams{Type: TypeIn, Quantity: types.MustDecimal("10"), UnitCost: costPtr("100")})

	// Adjust to 3: the quantity is the new level, not a delta.
	result := f.adjust(t, AdjustParams{Type: TypeAdjust, Quantity: types.MustDecimal("3")})
	assert.True(t, result.Balance.Quantity.Equal(types.MustDecimal("3")))
	assert.True(t, result.Balance.AvgCost.Equal(types.MustDecimal("100")), "cost untouched without a unit cost")

	// With a unit cost the average is replaced outright.
	result = f.adjust(t, AdjustParams{Type: TypeAdjust, Quantity: types.MustDecimal("3"), UnitCost: costPtr("120")})
	assert.True(t, result.Balance.AvgCost.Equal(types.MustDecimal("120")))
}

func TestAdjustStock_IdempotentByReference(t *testing.T) {
	f := newServiceFixture()

	refType := "purchase"
	refID := "PO-1001"
	params := AdjustParams{
		Type:          TypeIn,
		Quantity:      types.MustDecimal("10"),
		UnitCost:      costPtr("100"),
		ReferenceType: &refType,
		ReferenceID:   &refID,
	}

	first := f.adjust(t, params)
	require.False(t, first.AlreadyApplied)

	second := f.adjust(t, params)
	assert.True(t, second.AlreadyApplied)
	assert.Equal(t, first.MovementID, second.MovementID)
	assert.True(t, second.Balance.Quantity.Equal(types.MustDecimal("10")), "no double application")

	assert.Len(t, f.repo.movements, 1)
	// The replayed call never gets audited a second time.
	assert.Len(t, f.audit.records, 1)
}

func TestAdjustStock_Validation(t *testing.T) {
	f := newServiceFixture()
	refType := "purchase"

	tests := []struct {
		name   string
		params AdjustParams
	}{
		{"missing company", AdjustParams{ItemID: f.itemID, Type: TypeIn, Quantity: types.FromInt(1)}},
		{"missing item", AdjustParams{CompanyID: f.companyID, Type: TypeIn, Quantity: types.FromInt(1)}},
		{"invalid type", AdjustParams{CompanyID: f.companyID, ItemID: f.itemID, Type: "transfer", Quantity: types.FromInt(1)}},
		{"zero quantity", AdjustParams{CompanyID: f.companyID, ItemID: f.itemID, Type: TypeIn, Quantity: types.Zero()}},
		{"negative quantity", AdjustParams{CompanyID: f.companyID, ItemID: f.itemID, Type: TypeIn, Quantity: types.FromInt(-1)}},
		{"dangling reference", AdjustParams{CompanyID: f.companyID, ItemID: f.itemID, Type: TypeIn, Quantity: types.FromInt(1), ReferenceType: &refType}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AdjustStock(context.Background(), tt.params)
			require.Error(t, err)

			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		})
	}

	assert.Empty(t, f.repo.movements)
	assert.Zero(t, f.txm.calls, "validation failures never open a transaction")
}

func TestAdjustStock_DefaultsMovementDate(t *testing.T) {
	f := newServiceFixture()

	before := time.Now().UTC()
	f.adjust(t, AdjustParams{Type: TypeIn, Quantity: types.MustDecimal("1"), UnitCost: costPtr("10")})

	require.Len(t, f.repo.movements, 1)
	assert.False(t, f.repo.movements[0].MovementDate.Before(before))
}

func TestReconcile_MatchesAfterCleanHistory(t *testing.T) {
	f := newServiceFixture()

	f.adjust(t, AdjustParams{Type: TypeIn, Quantity: types.MustDecimal("10"), UnitCost: costPtr("100")})
	f.adjust(t, AdjustParams{Type: TypeIn, Quantity: types.MustDecimal("10"), UnitCost: costPtr("200")})
	f.adjust(t, AdjustParams{Type: TypeOut, Quantity: types.MustDecimal("5")})

	rec, err := f.svc.Reconcile(context.Background(), f.companyID, f.itemID)
	require.NoError(t, err)

	assert.True(t, rec.QuantityMatch)
	assert.True(t, rec.CostMatch)
	assert.True(t, rec.Cached.Quantity.Equal(types.MustDecimal("15")))
	assert.True(t, rec.Replayed.OnHandQty.Equal(types.MustDecimal("15")))
}

func TestReconcile_AdjustHistoryDiverges(t *testing.T) {
	f := newServiceFixture()

	// Online: adjust sets the level to 3. Replay: the stored row applies as
	// a +3 delta on top of 10. The divergence is inherent to the dual
	// semantics and Reconcile exists to surface it.
	f.adjust(t, AdjustParams{Type: TypeIn, Quantity: types.MustDecimal("10"), UnitCost: costPtr("100")})
	f.adjust(t, AdjustParams{Type: TypeAdjust, Quantity: types.MustDecimal("3")})

	rec, err := f.svc.Reconcile(context.Background(), f.companyID, f.itemID)
	require.NoError(t, err)

	assert.True(t, rec.Cached.Quantity.Equal(types.MustDecimal("3")))
	assert.True(t, rec.Replayed.OnHandQty.Equal(types.MustDecimal("13")))
	assert.False(t, rec.QuantityMatch)
}

func TestReconcile_EmptyHistory(t *testing.T) {
	f := newServiceFixture()

	rec, err := f.svc.Reconcile(context.Background(), f.companyID, f.itemID)
	require.NoError(t, err)

	assert.True(t, rec.QuantityMatch)
	assert.True(t, rec.CostMatch)
	assert.True(t, rec.Cached.Quantity.IsZero())
}
