// Package run orchestrates one full batch: canonicalize, populate the
// store, and compute KPIs through both engines.
//
// The two engines read independent, already-materialized inputs (the
// tabular engine the in-memory entities, the query engine the populated
// store), so they run concurrently with no shared mutable state. A store
// failure aborts only the query engine; the tabular results are still
// produced and reported with an explicit absence reason on the other
// side.
package run

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ledgerline/orderpulse/internal/canon"
	"github.com/ledgerline/orderpulse/internal/kpi"
	"github.com/ledgerline/orderpulse/internal/metrics"
	"github.com/ledgerline/orderpulse/internal/query"
	"github.com/ledgerline/orderpulse/internal/rules"
	"github.com/ledgerline/orderpulse/internal/store"
	"github.com/ledgerline/orderpulse/internal/tabular"
)

// Clock supplies the run timestamp. The as-of date for the windowed KPI
// and the default created_at both derive from it, so a fixed clock makes
// an entire run reproducible.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Summary is the user-visible outcome of one run.
type Summary struct {
	RunID             string                  `json:"run_id"`
	AsOf              canon.Date              `json:"as_of"`
	CustomersAccepted int                     `json:"customers_accepted"`
	OrdersAccepted    int                     `json:"orders_accepted"`
	IssueCounts       map[canon.IssueKind]int `json:"issue_counts"`
	Issues            []canon.ValidationIssue `json:"issues,omitempty"`

	Tabular *kpi.Report `json:"tabular,omitempty"`
	Query   *kpi.Report `json:"query,omitempty"`

	// TabularError / QueryError carry the absence reason when the
	// corresponding report is nil.
	TabularError string `json:"tabular_error,omitempty"`
	QueryError   string `json:"query_error,omitempty"`
}

// Runner executes batches. Store may be nil, in which case only the
// tabular engine runs and the query side reports an absence reason.
type Runner struct {
	Rules   rules.Set
	Store   *store.Store
	Clock   Clock
	Log     *slog.Logger
	Metrics *metrics.Registry

	// StoreErr is why Store is nil when the caller tried to open one and
	// failed. It becomes the query side's absence reason, so a summary
	// reader can tell an unreachable store from one never configured.
	StoreErr error

	// AsOf overrides the window anchor date; zero means "today" per Clock.
	AsOf canon.Date
}

// Execute canonicalizes the raw batches and computes all KPIs.
// Record-level problems never fail the run; the only fatal errors are a
// broken rule set or a cancelled context.
func (r *Runner) Execute(ctx context.Context, rawCustomers, rawOrders []canon.RawRecord) (*Summary, error) {
	clock := r.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	log := r.Log
	if log == nil {
		log = slog.Default()
	}

	cfg, err := r.Rules.CanonConfig()
	if err != nil {
		return nil, fmt.Errorf("rule set: %w", err)
	}

	asOf := r.AsOf
	if asOf.IsZero() {
		asOf = canon.DateOf(clock.Now())
	}

	sum := &Summary{
		RunID: uuid.NewString(),
		AsOf:  asOf,
	}
	log = log.With("run_id", sum.RunID)

	log.Info("canonicalizing",
		"raw_customers", len(rawCustomers),
		"raw_orders", len(rawOrders))
	res := canon.NewCanonicalizer(cfg, clock.Now).Run(rawCustomers, rawOrders)

	sum.CustomersAccepted = len(res.Customers)
	sum.OrdersAccepted = len(res.Orders)
	sum.Issues = res.Issues
	sum.IssueCounts = canon.CountByKind(res.Issues)
	r.Metrics.AddAccepted("customer", len(res.Customers))
	r.Metrics.AddAccepted("order", len(res.Orders))
	for kind, n := range sum.IssueCounts {
		r.Metrics.AddIssue(string(kind), n)
	}
	log.Info("canonicalized",
		"customers", len(res.Customers),
		"orders", len(res.Orders),
		"issues", len(res.Issues))

	params := kpi.TopSpendersParams{
		AsOf:       asOf,
		WindowDays: r.Rules.KPI.WindowDays,
		Limit:      r.Rules.KPI.TopLimit,
	}

	// Load phase. A store failure here is final for the query engine but
	// must not stop the tabular side.
	var queryEngine kpi.Engine
	switch {
	case r.Store == nil && r.StoreErr != nil:
		sum.QueryError = r.StoreErr.Error()
	case r.Store == nil:
		sum.QueryError = "no store configured"
	default:
		if err := r.loadStore(ctx, res); err != nil {
			log.Error("store load failed, query engine skipped", "error", err)
			sum.QueryError = err.Error()
		} else {
			queryEngine = query.New(r.Store)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report, err := r.computeTimed(gctx, tabular.New(res.Customers, res.Orders), params)
		if err != nil {
			log.Error("tabular engine failed", "error", err)
			sum.TabularError = err.Error()
			return nil
		}
		sum.Tabular = report
		return nil
	})
	if queryEngine != nil {
		g.Go(func() error {
			report, err := r.computeTimed(gctx, queryEngine, params)
			if err != nil {
				log.Error("query engine failed", "error", err)
				sum.QueryError = err.Error()
				return nil
			}
			sum.Query = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.Metrics.IncRuns()
	log.Info("run complete",
		"tabular_ok", sum.Tabular != nil,
		"query_ok", sum.Query != nil)
	return sum, nil
}

func (r *Runner) loadStore(ctx context.Context, res canon.Result) error {
	if err := r.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	if err := r.Store.BulkInsertCustomers(ctx, res.Customers); err != nil {
		return fmt.Errorf("load customers: %w", err)
	}
	if err := r.Store.BulkInsertOrders(ctx, res.Orders); err != nil {
		return fmt.Errorf("load orders: %w", err)
	}
	return nil
}

func (r *Runner) computeTimed(ctx context.Context, e kpi.Engine, params kpi.TopSpendersParams) (*kpi.Report, error) {
	started := time.Now()
	report, err := kpi.ComputeAll(ctx, e, params)
	r.Metrics.ObserveEngine(e.Name(), time.Since(started))
	return report, err
}
