package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerline/orderpulse/internal/canon"
	"github.com/ledgerline/orderpulse/internal/ingest"
	"github.com/ledgerline/orderpulse/internal/metrics"
	"github.com/ledgerline/orderpulse/internal/rules"
	"github.com/ledgerline/orderpulse/internal/run"
	"github.com/ledgerline/orderpulse/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config        string
	Customers     string
	Orders        string
	DB            string
	Out           string
	Rules         string
	AsOf          string
	MetricsListen string

	// Clock allows overriding the run clock (for testing).
	Clock run.Clock
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Canonicalize records and compute KPIs through both engines",
		Long: `Canonicalize raw customer (CSV) and order (XML) records and compute
the four KPIs through the in-memory tabular engine and the SQLite-backed
query engine.

Example:
  orderpulse run --customers data/customers.csv --orders data/orders.xml --db ./orderpulse.db
  orderpulse run --config run.yaml --out ./outputs --as-of 2024-03-31`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "YAML run config (flags override)")
	cmd.Flags().StringVar(&opts.Customers, "customers", "", "path to customers CSV")
	cmd.Flags().StringVar(&opts.Orders, "orders", "", "path to orders XML")
	cmd.Flags().StringVar(&opts.DB, "db", "", "path to SQLite database (empty: tabular engine only)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "directory for per-KPI JSON/CSV result files")
	cmd.Flags().StringVar(&opts.Rules, "rules", "", "CUE rules file overriding the embedded defaults")
	cmd.Flags().StringVar(&opts.AsOf, "as-of", "", "window anchor date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&opts.MetricsListen, "metrics-listen", "", "address to serve /metrics on for the duration of the run")

	return cmd
}

func runPipeline(opts *RunOptions, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	if opts.Config != "" {
		fileCfg, err := LoadFileConfig(opts.Config)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
		applyFileConfig(opts, cmd, fileCfg)
	}
	if opts.Customers == "" || opts.Orders == "" {
		return NewExitError(ExitCommandError, "both --customers and --orders are required (via flag or config)")
	}

	ruleSet, err := loadRules(opts.Rules)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load rules", err)
	}

	rawCustomers, rawOrders, err := readSources(opts.Customers, opts.Orders)
	if err != nil {
		return err
	}

	var asOf canon.Date
	if opts.AsOf != "" {
		asOf, err = canon.ParseDate([]string{"2006-01-02"}, opts.AsOf)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --as-of date", err)
		}
	}

	var (
		st       *store.Store
		storeErr error
	)
	if opts.DB != "" {
		slog.Info("opening store", "path", opts.DB)
		st, storeErr = store.Open(opts.DB)
		if storeErr != nil {
			// The tabular engine can still run; the runner reports the
			// query side as absent with this error as the reason.
			slog.Error("store unavailable, continuing with tabular engine only", "error", storeErr)
		} else {
			defer func() {
				if closeErr := st.Close(); closeErr != nil {
					slog.Error("error closing store", "error", closeErr)
				}
			}()
		}
	}

	reg := metrics.NewRegistry()
	if opts.MetricsListen != "" {
		shutdown, err := serveMetrics(opts.MetricsListen, reg)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to serve metrics", err)
		}
		defer shutdown()
	}

	runner := &run.Runner{
		Rules:    ruleSet,
		Store:    st,
		Clock:    opts.Clock,
		Log:      slog.Default(),
		Metrics:  reg,
		StoreErr: storeErr,
		AsOf:     asOf,
	}
	sum, err := runner.Execute(cmd.Context(), rawCustomers, rawOrders)
	if err != nil {
		return WrapExitError(ExitCommandError, "run failed", err)
	}

	if err := RenderSummary(cmd.OutOrStdout(), sum, opts.Format); err != nil {
		return WrapExitError(ExitCommandError, "failed to render summary", err)
	}

	if opts.Out != "" {
		if sum.Query != nil {
			if err := WriteReportJSON(opts.Out, "query", sum.Query); err != nil {
				return WrapExitError(ExitCommandError, "failed to write query results", err)
			}
		}
		if sum.Tabular != nil {
			if err := WriteReportCSV(opts.Out, "tabular", sum.Tabular); err != nil {
				return WrapExitError(ExitCommandError, "failed to write tabular results", err)
			}
		}
	}

	// A configured engine that produced nothing is a data failure even
	// though the run itself completed.
	if sum.Tabular == nil || (opts.DB != "" && sum.Query == nil) {
		return NewExitError(ExitFailure, "one or more engines produced no result")
	}
	return nil
}

// serveMetrics exposes the registry on addr until shutdown is called.
// The listener is bound synchronously so a bad address fails the run up
// front instead of racing the pipeline.
func serveMetrics(addr string, reg *metrics.Registry) (shutdown func(), err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	srv := &http.Server{Handler: mux}

	go func() {
		if serveErr := srv.Serve(ln); serveErr != nil && serveErr != http.ErrServerClosed {
			slog.Error("metrics server stopped", "error", serveErr)
		}
	}()
	slog.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("error shutting down metrics server", "error", err)
		}
	}, nil
}

func applyFileConfig(opts *RunOptions, cmd *cobra.Command, cfg FileConfig) {
	set := func(flag string, dst *string, val string) {
		if !cmd.Flags().Changed(flag) && val != "" {
			*dst = val
		}
	}
	set("customers", &opts.Customers, cfg.Customers)
	set("orders", &opts.Orders, cfg.Orders)
	set("db", &opts.DB, cfg.DB)
	set("out", &opts.Out, cfg.Out)
	set("rules", &opts.Rules, cfg.Rules)
	set("as-of", &opts.AsOf, cfg.AsOf)
}

func loadRules(path string) (rules.Set, error) {
	if path == "" {
		return rules.Default()
	}
	return rules.Load(path)
}

func readSources(customersPath, ordersPath string) ([]canon.RawRecord, []canon.RawRecord, error) {
	cf, err := os.Open(customersPath)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open customers file", err)
	}
	defer cf.Close()
	customers, err := ingest.ReadCustomersCSV(cf)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to read customers CSV", err)
	}
	if customers.Skipped > 0 {
		slog.Warn("skipped unreadable customer rows", "count", customers.Skipped)
	}

	of, err := os.Open(ordersPath)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open orders file", err)
	}
	defer of.Close()
	orders, err := ingest.ReadOrdersXML(of)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to read orders XML", err)
	}
	if orders.Skipped > 0 {
		slog.Warn("skipped unreadable order elements", "count", orders.Skipped)
	}

	slog.Info("sources read",
		"raw_customers", len(customers.Records),
		"raw_orders", len(orders.Records))
	return customers.Records, orders.Records, nil
}

func setupLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}
