package stock_repo

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitestock/internal/core/id"
	"sitestock/internal/core/types"
	"sitestock/internal/infrastructure/storage/postgres"
)

var balanceColumns = []string{
	"company_id", "item_id", "quantity", "avg_cost", "last_movement_at", "updated_at",
}

// fakeRows feeds canned rows through the pgx.Rows interface.
type fakeRows struct {
	cols []string
	data [][]any
	idx  int
}

func (r *fakeRows) Close()                        {}
func (r *fakeRows) Err() error                    { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (r *fakeRows) Conn() *pgx.Conn               { return nil }
func (r *fakeRows) RawValues() [][]byte           { return nil }

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	fds := make([]pgconn.FieldDescription, len(r.cols))
	for i, c := range r.cols {
		fds[i] = pgconn.FieldDescription{Name: c}
	}
	return fds
}

func (r *fakeRows) Next() bool {
	if r.idx < len(r.data) {
		r.idx++
		return true
	}
	return false
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.idx-1]
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(row[i]))
	}
	return nil
}

func (r *fakeRows) Values() ([]any, error) {
	return r.data[r.idx-1], nil
}

type capturedQuery struct {
	sql  string
	args []any
}

// fakeQuerier records executed statements and emulates a single-row
// stock_balances table keyed by the queried company/item pair.
type fakeQuerier struct {
	queries    []capturedQuery
	balanceRow []any
}

func (q *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.queries = append(q.queries, capturedQuery{sql: sql, args: args})
	if strings.Contains(sql, "ON CONFLICT (company_id, item_id) DO NOTHING") && q.balanceRow == nil {
		now := time.Now().UTC()
		q.balanceRow = []any{args[0], args[1], types.Zero(), types.Zero(), now, now}
	}
	return pgconn.CommandTag{}, nil
}

func (q *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.queries = append(q.queries, capturedQuery{sql: sql, args: args})
	rows := &fakeRows{cols: balanceColumns}
	if strings.Contains(sql, "FROM stock_balances") && q.balanceRow != nil {
		rows.data = [][]any{q.balanceRow}
	}
	return rows, nil
}

func (q *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.queries = append(q.queries, capturedQuery{sql: sql, args: args})
	return fakeRow{}
}

type fakeRow struct{}

func (fakeRow) Scan(dest ...any) error { return pgx.ErrNoRows }

type fakeSource struct{ q postgres.Querier }

func (s fakeSource) GetQuerier(ctx context.Context) postgres.Querier { return s.q }

func newTestRepo(q *fakeQuerier) *StockRepo {
	return &StockRepo{
		txm:     fakeSource{q: q},
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func TestGetBalanceForUpdate_InitializesMissingRow(t *testing.T) {
	q := &fakeQuerier{}
	repo := newTestRepo(q)

	companyID := id.New()
	itemID := id.New()

	balance, err := repo.GetBalanceForUpdate(context.Background(), companyID, itemID)
	require.NoError(t, err)

	assert.Equal(t, companyID, balance.CompanyID)
	assert.Equal(t, itemID, balance.ItemID)
	assert.True(t, balance.Quantity.IsZero())
	assert.True(t, balance.AvgCost.IsZero())

	// First lock attempt finds nothing, the zero row is inserted, then the
	// lock is retried against the now-existing row.
	require.Len(t, q.queries, 3)
	assert.Contains(t, q.queries[0].sql, "FOR UPDATE")
	assert.Contains(t, q.queries[1].sql, "INSERT INTO stock_balances")
	assert.Contains(t, q.queries[1].sql, "ON CONFLICT (company_id, item_id) DO NOTHING")
	assert.Equal(t, []any{companyID, itemID}, q.queries[1].args)
	assert.Contains(t, q.queries[2].sql, "FOR UPDATE")
}

func TestGetBalanceForUpdate_ExistingRowLocksDirectly(t *testing.T) {
	companyID := id.New()
	itemID := id.New()
	now := time.Now().UTC()

	q := &fakeQuerier{
		balanceRow: []any{
			companyID, itemID,
			types.MustDecimal("150"), types.MustDecimal("12.5"),
			now, now,
		},
	}
	repo := newTestRepo(q)

	balance, err := repo.GetBalanceForUpdate(context.Background(), companyID, itemID)
	require.NoError(t, err)

	assert.True(t, balance.Quantity.Equal(types.MustDecimal("150")))
	assert.True(t, balance.AvgCost.Equal(types.MustDecimal("12.5")))

	require.Len(t, q.queries, 1)
	assert.Contains(t, q.queries[0].sql, "FOR UPDATE")
}

func TestListMovementsForScope_FiltersOnDestinationTransfers(t *testing.T) {
	q := &fakeQuerier{}
	repo := newTestRepo(q)

	companyID := id.New()
	projectID := id.New()

	_, err := repo.ListMovementsForScope(context.Background(), companyID, &projectID)
	require.NoError(t, err)

	require.Len(t, q.queries, 1)
	sql := q.queries[0].sql
	assert.Contains(t, sql, "project_id")
	assert.Contains(t, sql, "destination_project_id")
	assert.Contains(t, sql, "kind")
	// company, project, destination project, transfer_in kind
	require.Len(t, q.queries[0].args, 4)
	assert.Equal(t, projectID, q.queries[0].args[1])
	assert.Equal(t, projectID, q.queries[0].args[2])
}
