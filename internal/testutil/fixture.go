package testutil

import (
	"time"

	"github.com/ledgerline/orderpulse/internal/canon"
	"github.com/ledgerline/orderpulse/internal/kpi"
)

// The contract fixture. Both engines are tested against the hand-computed
// expectations below; neither engine's output is the other's oracle.
//
// The dataset covers: repeat customers (three, all tied on count so the
// customer_id tie-break is exercised), three months of trends, all four
// regions, a nulled mobile, an order on the exact window-start day
// (included), and an order one day earlier (excluded; 2024 is a leap
// year, so that day is Feb 29).

// FixtureAsOf is the run date the fixture is computed against.
func FixtureAsOf() canon.Date {
	return canon.Date{Year: 2024, Month: time.March, Day: 31}
}

// FixtureParams is the top-spenders window for the fixture: [2024-03-01,
// 2024-03-31] inclusive.
func FixtureParams() kpi.TopSpendersParams {
	return kpi.TopSpendersParams{AsOf: FixtureAsOf(), WindowDays: 30, Limit: 10}
}

// FixtureCustomers returns fresh copies of the canonical customers.
func FixtureCustomers() []canon.Customer {
	created := time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC)
	return []canon.Customer{
		{ID: 1, Name: "Amit Sharma", Mobile: "9876543210", Region: canon.RegionNorth, CreatedAt: created},
		{ID: 2, Name: "Bhavna Rao", Mobile: "9123456780", Region: canon.RegionSouth, CreatedAt: created},
		{ID: 3, Name: "Chirag Patel", Mobile: "", Region: canon.RegionEast, CreatedAt: created},
		{ID: 4, Name: "Divya Nair", Mobile: "9012345678", Region: canon.RegionWest, CreatedAt: created},
	}
}

// FixtureOrders returns fresh copies of the canonical orders.
func FixtureOrders() []canon.Order {
	d := func(y int, m time.Month, day int) canon.Date { return canon.Date{Year: y, Month: m, Day: day} }
	return []canon.Order{
		{ID: 10, CustomerID: 1, Date: d(2024, time.January, 5), AmountMinor: 10000},
		{ID: 11, CustomerID: 1, Date: d(2024, time.February, 10), AmountMinor: 20000},
		{ID: 12, CustomerID: 2, Date: d(2024, time.March, 1), AmountMinor: 15050},
		{ID: 13, CustomerID: 2, Date: d(2024, time.March, 15), AmountMinor: 4950},
		{ID: 14, CustomerID: 3, Date: d(2024, time.March, 31), AmountMinor: 7525},
		{ID: 15, CustomerID: 4, Date: d(2024, time.February, 29), AmountMinor: 50000},
		{ID: 16, CustomerID: 4, Date: d(2024, time.January, 20), AmountMinor: 6000},
	}
}

// ExpectedRepeatCustomers is the contract result for the fixture.
func ExpectedRepeatCustomers() []kpi.RepeatCustomerRow {
	return []kpi.RepeatCustomerRow{
		{CustomerID: 1, Name: "Amit Sharma", Mobile: "9876543210", Region: "North", OrderCount: 2},
		{CustomerID: 2, Name: "Bhavna Rao", Mobile: "9123456780", Region: "South", OrderCount: 2},
		{CustomerID: 4, Name: "Divya Nair", Mobile: "9012345678", Region: "West", OrderCount: 2},
	}
}

// ExpectedMonthlyTrends is the contract result for the fixture.
func ExpectedMonthlyTrends() []kpi.MonthlyTrendRow {
	return []kpi.MonthlyTrendRow{
		{Year: 2024, Month: 1, OrderCount: 2, TotalRevenue: 16000},
		{Year: 2024, Month: 2, OrderCount: 2, TotalRevenue: 70000},
		{Year: 2024, Month: 3, OrderCount: 3, TotalRevenue: 27525},
	}
}

// ExpectedRegionalRevenue is the contract result for the fixture.
func ExpectedRegionalRevenue() []kpi.RegionalRevenueRow {
	return []kpi.RegionalRevenueRow{
		{Region: "West", CustomerCount: 1, OrderCount: 2, TotalRevenue: 56000, AvgOrderValue: 28000},
		{Region: "North", CustomerCount: 1, OrderCount: 2, TotalRevenue: 30000, AvgOrderValue: 15000},
		{Region: "South", CustomerCount: 1, OrderCount: 2, TotalRevenue: 20000, AvgOrderValue: 10000},
		{Region: "East", CustomerCount: 1, OrderCount: 1, TotalRevenue: 7525, AvgOrderValue: 7525},
	}
}

// ExpectedTopSpenders is the contract result for the fixture window.
func ExpectedTopSpenders() []kpi.TopSpenderRow {
	return []kpi.TopSpenderRow{
		{CustomerID: 2, Name: "Bhavna Rao", Mobile: "9123456780", Region: "South",
			OrderCount: 2, TotalSpent: 20000, AvgOrderValue: 10000, LastOrderDate: "2024-03-15"},
		{CustomerID: 3, Name: "Chirag Patel", Mobile: "", Region: "East",
			OrderCount: 1, TotalSpent: 7525, AvgOrderValue: 7525, LastOrderDate: "2024-03-31"},
	}
}

// ExpectedReport bundles the four contract results.
func ExpectedReport() *kpi.Report {
	return &kpi.Report{
		RepeatCustomers: ExpectedRepeatCustomers(),
		MonthlyTrends:   ExpectedMonthlyTrends(),
		RegionalRevenue: ExpectedRegionalRevenue(),
		TopSpenders:     ExpectedTopSpenders(),
	}
}
