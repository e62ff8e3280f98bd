package tabular

import (
	"context"
	"sort"

	"github.com/ledgerline/orderpulse/internal/canon"
	"github.com/ledgerline/orderpulse/internal/kpi"
)

// Engine computes the four KPIs over in-memory columnar tables.
type Engine struct {
	customers *customerTable
	orders    *orderTable
}

// New builds an engine from canonical entities. The slices are copied
// into columns; the caller's data is never mutated.
func New(customers []canon.Customer, orders []canon.Order) *Engine {
	return &Engine{
		customers: newCustomerTable(customers),
		orders:    newOrderTable(orders),
	}
}

// Name implements kpi.Engine.
func (e *Engine) Name() string { return "tabular" }

// RepeatCustomers groups orders by customer and keeps counts above one.
func (e *Engine) RepeatCustomers(ctx context.Context) ([]kpi.RepeatCustomerRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids, groups := groupBy(e.orders.allRows(), func(row int) int64 {
		return e.orders.customerIDs[row]
	})

	rows := []kpi.RepeatCustomerRow{}
	for _, id := range ids {
		orderRows := groups[id]
		if len(orderRows) <= 1 {
			continue
		}
		ci, ok := e.customers.lookup(id)
		if !ok {
			continue
		}
		rows = append(rows, kpi.RepeatCustomerRow{
			CustomerID: id,
			Name:       e.customers.names[ci],
			Mobile:     e.customers.mobiles[ci],
			Region:     e.customers.regions[ci],
			OrderCount: int64(len(orderRows)),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].OrderCount != rows[j].OrderCount {
			return rows[i].OrderCount > rows[j].OrderCount
		}
		return rows[i].CustomerID < rows[j].CustomerID
	})
	return rows, nil
}

// MonthlyTrends groups orders by (year, month) of the order date.
func (e *Engine) MonthlyTrends(ctx context.Context) ([]kpi.MonthlyTrendRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Composite key year*100+month keeps the group key a single int64.
	keys, groups := groupBy(e.orders.allRows(), func(row int) int64 {
		d := e.orders.dates[row]
		return int64(d.Year)*100 + int64(d.Month)
	})

	rows := []kpi.MonthlyTrendRow{}
	for _, k := range keys {
		var total int64
		for _, r := range groups[k] {
			total += e.orders.amounts[r]
		}
		rows = append(rows, kpi.MonthlyTrendRow{
			Year:         int(k / 100),
			Month:        int(k % 100),
			OrderCount:   int64(len(groups[k])),
			TotalRevenue: kpi.Money(total),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Month < rows[j].Month
	})
	return rows, nil
}

// RegionalRevenue joins orders to customers and groups by region.
func (e *Engine) RegionalRevenue(ctx context.Context) ([]kpi.RegionalRevenueRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type regionAgg struct {
		customers  map[int64]bool
		orderCount int64
		total      int64
	}
	aggs := make(map[string]*regionAgg)
	var regionOrder []string

	for _, row := range e.orders.allRows() {
		ci, ok := e.customers.lookup(e.orders.customerIDs[row])
		if !ok {
			continue
		}
		region := e.customers.regions[ci]
		a := aggs[region]
		if a == nil {
			a = &regionAgg{customers: make(map[int64]bool)}
			aggs[region] = a
			regionOrder = append(regionOrder, region)
		}
		a.customers[e.orders.customerIDs[row]] = true
		a.orderCount++
		a.total += e.orders.amounts[row]
	}

	rows := []kpi.RegionalRevenueRow{}
	for _, region := range regionOrder {
		a := aggs[region]
		rows = append(rows, kpi.RegionalRevenueRow{
			Region:        region,
			CustomerCount: int64(len(a.customers)),
			OrderCount:    a.orderCount,
			TotalRevenue:  kpi.Money(a.total),
			AvgOrderValue: kpi.Avg(kpi.Money(a.total), a.orderCount),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalRevenue != rows[j].TotalRevenue {
			return rows[i].TotalRevenue > rows[j].TotalRevenue
		}
		return rows[i].Region < rows[j].Region
	})
	return rows, nil
}

// TopSpenders filters orders to the inclusive window, groups by customer,
// and keeps the top rows by spend.
func (e *Engine) TopSpenders(ctx context.Context, p kpi.TopSpendersParams) ([]kpi.TopSpenderRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := p.WindowStart()
	inWindow := e.orders.filter(func(row int) bool {
		d := e.orders.dates[row]
		return !d.Before(start) && !d.After(p.AsOf)
	})

	ids, groups := groupBy(inWindow, func(row int) int64 {
		return e.orders.customerIDs[row]
	})

	rows := []kpi.TopSpenderRow{}
	for _, id := range ids {
		ci, ok := e.customers.lookup(id)
		if !ok {
			continue
		}
		var (
			total int64
			last  canon.Date
		)
		for _, r := range groups[id] {
			total += e.orders.amounts[r]
			if e.orders.dates[r].After(last) {
				last = e.orders.dates[r]
			}
		}
		count := int64(len(groups[id]))
		rows = append(rows, kpi.TopSpenderRow{
			CustomerID:    id,
			Name:          e.customers.names[ci],
			Mobile:        e.customers.mobiles[ci],
			Region:        e.customers.regions[ci],
			OrderCount:    count,
			TotalSpent:    kpi.Money(total),
			AvgOrderValue: kpi.Avg(kpi.Money(total), count),
			LastOrderDate: last.String(),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalSpent != rows[j].TotalSpent {
			return rows[i].TotalSpent > rows[j].TotalSpent
		}
		return rows[i].CustomerID < rows[j].CustomerID
	})
	if p.Limit > 0 && len(rows) > p.Limit {
		rows = rows[:p.Limit]
	}
	return rows, nil
}
