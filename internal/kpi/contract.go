package kpi

import (
	"context"
	"fmt"

	"github.com/ledgerline/orderpulse/internal/canon"
)

// KPI names, used for output files and metric labels.
const (
	NameRepeatCustomers = "repeat_customers"
	NameMonthlyTrends   = "monthly_trends"
	NameRegionalRevenue = "regional_revenue"
	NameTopSpenders     = "top_spenders"
)

// RepeatCustomerRow is one customer with more than one order.
// Ordering: order_count DESC, customer_id ASC.
type RepeatCustomerRow struct {
	CustomerID int64  `json:"customer_id"`
	Name       string `json:"name"`
	Mobile     string `json:"mobile_number"`
	Region     string `json:"region"`
	OrderCount int64  `json:"order_count"`
}

// MonthlyTrendRow is one (year, month) bucket of orders.
// Ordering: chronological ASC.
type MonthlyTrendRow struct {
	Year         int   `json:"year"`
	Month        int   `json:"month"`
	OrderCount   int64 `json:"order_count"`
	TotalRevenue Money `json:"total_revenue"`
}

// RegionalRevenueRow is one region's order aggregate. Regions without any
// order do not appear (the join is over orders).
// Ordering: total_revenue DESC, region ASC.
type RegionalRevenueRow struct {
	Region        string `json:"region"`
	CustomerCount int64  `json:"customer_count"`
	OrderCount    int64  `json:"order_count"`
	TotalRevenue  Money  `json:"total_revenue"`
	AvgOrderValue Money  `json:"avg_order_value"`
}

// TopSpenderRow is one customer ranked by spend inside the window.
// Ordering: total_spent DESC, customer_id ASC; at most Limit rows.
type TopSpenderRow struct {
	CustomerID    int64  `json:"customer_id"`
	Name          string `json:"name"`
	Mobile        string `json:"mobile_number"`
	Region        string `json:"region"`
	OrderCount    int64  `json:"order_count"`
	TotalSpent    Money  `json:"total_spent"`
	AvgOrderValue Money  `json:"avg_order_value"`
	LastOrderDate string `json:"last_order_date"`
}

// TopSpendersParams fixes the window and limit for the top-spenders KPI.
// The window is [AsOf-WindowDays, AsOf], inclusive on both ends.
type TopSpendersParams struct {
	AsOf       canon.Date
	WindowDays int
	Limit      int
}

// WindowStart returns the inclusive lower bound of the window.
func (p TopSpendersParams) WindowStart() canon.Date {
	return p.AsOf.AddDays(-p.WindowDays)
}

// Engine is implemented by both computation strategies. Implementations
// are stateless per invocation and must return empty (non-nil) result
// slices rather than failing when the canonical data is empty.
type Engine interface {
	Name() string
	RepeatCustomers(ctx context.Context) ([]RepeatCustomerRow, error)
	MonthlyTrends(ctx context.Context) ([]MonthlyTrendRow, error)
	RegionalRevenue(ctx context.Context) ([]RegionalRevenueRow, error)
	TopSpenders(ctx context.Context, p TopSpendersParams) ([]TopSpenderRow, error)
}

// Report bundles one engine's results for all four KPIs.
type Report struct {
	RepeatCustomers []RepeatCustomerRow  `json:"repeat_customers"`
	MonthlyTrends   []MonthlyTrendRow    `json:"monthly_trends"`
	RegionalRevenue []RegionalRevenueRow `json:"regional_revenue"`
	TopSpenders     []TopSpenderRow      `json:"top_spenders"`
}

// ComputeAll runs the four KPIs on one engine.
func ComputeAll(ctx context.Context, e Engine, p TopSpendersParams) (*Report, error) {
	var (
		r   Report
		err error
	)
	if r.RepeatCustomers, err = e.RepeatCustomers(ctx); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", e.Name(), NameRepeatCustomers, err)
	}
	if r.MonthlyTrends, err = e.MonthlyTrends(ctx); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", e.Name(), NameMonthlyTrends, err)
	}
	if r.RegionalRevenue, err = e.RegionalRevenue(ctx); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", e.Name(), NameRegionalRevenue, err)
	}
	if r.TopSpenders, err = e.TopSpenders(ctx, p); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", e.Name(), NameTopSpenders, err)
	}
	return &r, nil
}
