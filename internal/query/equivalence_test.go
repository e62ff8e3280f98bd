package query

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/orderpulse/internal/canon"
	"github.com/ledgerline/orderpulse/internal/kpi"
	"github.com/ledgerline/orderpulse/internal/tabular"
	"github.com/ledgerline/orderpulse/internal/testutil"
)

// Equivalence is the system's central invariant: both engines must
// produce identical rows (values and ordering) for every KPI. The
// fixture case pins both engines to hand-computed expectations; the
// generated case stresses agreement on a larger dataset neither engine
// was written against.

func TestEquivalence_Fixture(t *testing.T) {
	assertEnginesAgree(t, testutil.FixtureCustomers(), testutil.FixtureOrders(), testutil.FixtureParams())
}

func TestEquivalence_Generated(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	regions := []canon.Region{canon.RegionNorth, canon.RegionSouth, canon.RegionEast, canon.RegionWest, canon.RegionUnknown}

	var customers []canon.Customer
	for id := int64(1); id <= 40; id++ {
		customers = append(customers, canon.Customer{
			ID:     id,
			Name:   "Customer " + string(rune('A'+id%26)),
			Mobile: "9000000000",
			Region: regions[rng.Intn(len(regions))],
		})
	}

	base := time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC)
	var orders []canon.Order
	for id := int64(1); id <= 300; id++ {
		orders = append(orders, canon.Order{
			ID:          id,
			CustomerID:  customers[rng.Intn(len(customers))].ID,
			Date:        canon.DateOf(base.AddDate(0, 0, rng.Intn(220))),
			AmountMinor: int64(rng.Intn(100000)),
		})
	}

	params := kpi.TopSpendersParams{
		AsOf:       canon.Date{Year: 2024, Month: time.April, Day: 15},
		WindowDays: 30,
		Limit:      10,
	}
	assertEnginesAgree(t, customers, orders, params)
}

func assertEnginesAgree(t *testing.T, customers []canon.Customer, orders []canon.Order, params kpi.TopSpendersParams) {
	t.Helper()
	ctx := context.Background()

	tab := tabular.New(customers, orders)
	qry := newEngineWith(t, customers, orders)

	tabReport, err := kpi.ComputeAll(ctx, tab, params)
	require.NoError(t, err)
	qryReport, err := kpi.ComputeAll(ctx, qry, params)
	require.NoError(t, err)

	assert.Equal(t, tabReport.RepeatCustomers, qryReport.RepeatCustomers)
	assert.Equal(t, tabReport.MonthlyTrends, qryReport.MonthlyTrends)
	assert.Equal(t, tabReport.RegionalRevenue, qryReport.RegionalRevenue)
	assert.Equal(t, tabReport.TopSpenders, qryReport.TopSpenders)
}
