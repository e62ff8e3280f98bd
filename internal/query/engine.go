// Package query is the relational KPI engine.
//
// It computes the four KPIs with declarative SQL aggregates over the
// populated store. Agreement with the tabular engine is by construction:
// sums run over integer minor units, averages are derived in Go through
// the contract's shared helper (never SQL AVG), window bounds arrive as
// the same YYYY-MM-DD strings the in-memory engine compares, and every
// query carries a complete ORDER BY including tie-breaks.
//
// All values are parameterized, never interpolated.
package query

import (
	"context"
	"fmt"

	"github.com/ledgerline/orderpulse/internal/kpi"
	"github.com/ledgerline/orderpulse/internal/store"
)

// Engine computes KPIs against an already-populated store.
type Engine struct {
	st *store.Store
}

// New builds a query engine over st. The store must outlive the engine.
func New(st *store.Store) *Engine {
	return &Engine{st: st}
}

// Name implements kpi.Engine.
func (e *Engine) Name() string { return "query" }

const repeatCustomersSQL = `
SELECT c.customer_id,
       c.name,
       COALESCE(c.mobile_number, ''),
       c.region,
       COUNT(o.order_id) AS order_count
FROM customers c
JOIN orders o ON o.customer_id = c.customer_id
GROUP BY c.customer_id, c.name, c.mobile_number, c.region
HAVING COUNT(o.order_id) > 1
ORDER BY order_count DESC, c.customer_id ASC`

// RepeatCustomers implements kpi.Engine.
func (e *Engine) RepeatCustomers(ctx context.Context) ([]kpi.RepeatCustomerRow, error) {
	rows, err := e.st.Query(ctx, repeatCustomersSQL)
	if err != nil {
		return nil, fmt.Errorf("query repeat customers: %w", err)
	}
	defer rows.Close()

	out := []kpi.RepeatCustomerRow{}
	for rows.Next() {
		var r kpi.RepeatCustomerRow
		if err := rows.Scan(&r.CustomerID, &r.Name, &r.Mobile, &r.Region, &r.OrderCount); err != nil {
			return nil, fmt.Errorf("scan repeat customer: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate repeat customers: %w", err)
	}
	return out, nil
}

const monthlyTrendsSQL = `
SELECT CAST(strftime('%Y', order_date) AS INTEGER) AS year,
       CAST(strftime('%m', order_date) AS INTEGER) AS month,
       COUNT(*) AS order_count,
       SUM(amount_minor) AS total_minor
FROM orders
GROUP BY year, month
ORDER BY year ASC, month ASC`

// MonthlyTrends implements kpi.Engine.
func (e *Engine) MonthlyTrends(ctx context.Context) ([]kpi.MonthlyTrendRow, error) {
	rows, err := e.st.Query(ctx, monthlyTrendsSQL)
	if err != nil {
		return nil, fmt.Errorf("query monthly trends: %w", err)
	}
	defer rows.Close()

	out := []kpi.MonthlyTrendRow{}
	for rows.Next() {
		var (
			r     kpi.MonthlyTrendRow
			total int64
		)
		if err := rows.Scan(&r.Year, &r.Month, &r.OrderCount, &total); err != nil {
			return nil, fmt.Errorf("scan monthly trend: %w", err)
		}
		r.TotalRevenue = kpi.Money(total)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly trends: %w", err)
	}
	return out, nil
}

const regionalRevenueSQL = `
SELECT c.region,
       COUNT(DISTINCT c.customer_id) AS customer_count,
       COUNT(o.order_id) AS order_count,
       SUM(o.amount_minor) AS total_minor
FROM customers c
JOIN orders o ON o.customer_id = c.customer_id
GROUP BY c.region
ORDER BY total_minor DESC, c.region ASC`

// RegionalRevenue implements kpi.Engine.
func (e *Engine) RegionalRevenue(ctx context.Context) ([]kpi.RegionalRevenueRow, error) {
	rows, err := e.st.Query(ctx, regionalRevenueSQL)
	if err != nil {
		return nil, fmt.Errorf("query regional revenue: %w", err)
	}
	defer rows.Close()

	out := []kpi.RegionalRevenueRow{}
	for rows.Next() {
		var (
			r     kpi.RegionalRevenueRow
			total int64
		)
		if err := rows.Scan(&r.Region, &r.CustomerCount, &r.OrderCount, &total); err != nil {
			return nil, fmt.Errorf("scan regional revenue: %w", err)
		}
		r.TotalRevenue = kpi.Money(total)
		r.AvgOrderValue = kpi.Avg(r.TotalRevenue, r.OrderCount)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate regional revenue: %w", err)
	}
	return out, nil
}

const topSpendersSQL = `
SELECT c.customer_id,
       c.name,
       COALESCE(c.mobile_number, ''),
       c.region,
       COUNT(o.order_id) AS order_count,
       SUM(o.amount_minor) AS total_minor,
       MAX(o.order_date) AS last_order_date
FROM customers c
JOIN orders o ON o.customer_id = c.customer_id
WHERE o.order_date >= ? AND o.order_date <= ?
GROUP BY c.customer_id, c.name, c.mobile_number, c.region
ORDER BY total_minor DESC, c.customer_id ASC
LIMIT ?`

// TopSpenders implements kpi.Engine. The window bounds are inclusive on
// both ends, matching the tabular engine exactly.
func (e *Engine) TopSpenders(ctx context.Context, p kpi.TopSpendersParams) ([]kpi.TopSpenderRow, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = -1 // SQLite: negative LIMIT means no limit
	}
	rows, err := e.st.Query(ctx, topSpendersSQL, p.WindowStart().String(), p.AsOf.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("query top spenders: %w", err)
	}
	defer rows.Close()

	out := []kpi.TopSpenderRow{}
	for rows.Next() {
		var (
			r     kpi.TopSpenderRow
			total int64
		)
		if err := rows.Scan(&r.CustomerID, &r.Name, &r.Mobile, &r.Region, &r.OrderCount, &total, &r.LastOrderDate); err != nil {
			return nil, fmt.Errorf("scan top spender: %w", err)
		}
		r.TotalSpent = kpi.Money(total)
		r.AvgOrderValue = kpi.Avg(r.TotalSpent, r.OrderCount)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top spenders: %w", err)
	}
	return out, nil
}
