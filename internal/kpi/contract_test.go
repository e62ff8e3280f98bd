package kpi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/orderpulse/internal/canon"
)

func dateYMD(y, m, d int) canon.Date {
	return canon.Date{Year: y, Month: time.Month(m), Day: d}
}

// stubEngine returns fixed rows, or an error for one named KPI.
type stubEngine struct {
	failOn string
}

func (s *stubEngine) Name() string { return "stub" }

func (s *stubEngine) RepeatCustomers(ctx context.Context) ([]RepeatCustomerRow, error) {
	if s.failOn == NameRepeatCustomers {
		return nil, errors.New("boom")
	}
	return []RepeatCustomerRow{}, nil
}

func (s *stubEngine) MonthlyTrends(ctx context.Context) ([]MonthlyTrendRow, error) {
	if s.failOn == NameMonthlyTrends {
		return nil, errors.New("boom")
	}
	return []MonthlyTrendRow{}, nil
}

func (s *stubEngine) RegionalRevenue(ctx context.Context) ([]RegionalRevenueRow, error) {
	if s.failOn == NameRegionalRevenue {
		return nil, errors.New("boom")
	}
	return []RegionalRevenueRow{}, nil
}

func (s *stubEngine) TopSpenders(ctx context.Context, p TopSpendersParams) ([]TopSpenderRow, error) {
	if s.failOn == NameTopSpenders {
		return nil, errors.New("boom")
	}
	return []TopSpenderRow{}, nil
}

func TestComputeAll_EmptyButWellFormed(t *testing.T) {
	report, err := ComputeAll(context.Background(), &stubEngine{}, TopSpendersParams{})
	require.NoError(t, err)

	// Empty result sets are non-nil: "no data" is a result, not an error.
	assert.NotNil(t, report.RepeatCustomers)
	assert.NotNil(t, report.MonthlyTrends)
	assert.NotNil(t, report.RegionalRevenue)
	assert.NotNil(t, report.TopSpenders)
}

func TestComputeAll_PropagatesFailure(t *testing.T) {
	for _, name := range []string{NameRepeatCustomers, NameMonthlyTrends, NameRegionalRevenue, NameTopSpenders} {
		t.Run(name, func(t *testing.T) {
			_, err := ComputeAll(context.Background(), &stubEngine{failOn: name}, TopSpendersParams{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}
