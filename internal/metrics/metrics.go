// Package metrics exposes run counters and timings via Prometheus.
//
// A batch job's metrics are mostly per-run: how many records survived,
// how many issues of each kind, how long each engine took. The registry
// is optional everywhere it is consumed; passing nil disables recording.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	RecordsAccepted *prometheus.CounterVec // by entity: customer|order
	IssuesTotal     *prometheus.CounterVec // by kind
	EngineDuration  *prometheus.GaugeVec   // by engine: tabular|query
	RunsTotal       prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	accepted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orderpulse_records_accepted_total",
		Help: "Canonical records accepted, by entity.",
	}, []string{"entity"})
	issues := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orderpulse_validation_issues_total",
		Help: "Validation issues recorded, by kind.",
	}, []string{"kind"})
	duration := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "orderpulse_engine_duration_seconds",
		Help: "Wall time of the last KPI computation, by engine.",
	}, []string{"engine"})
	runs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orderpulse_runs_total",
		Help: "Completed runs.",
	})

	r.MustRegister(accepted, issues, duration, runs)
	return &Registry{
		reg:             r,
		RecordsAccepted: accepted,
		IssuesTotal:     issues,
		EngineDuration:  duration,
		RunsTotal:       runs,
	}
}

// ObserveEngine records one engine's computation wall time.
func (r *Registry) ObserveEngine(engine string, d time.Duration) {
	if r == nil {
		return
	}
	r.EngineDuration.WithLabelValues(engine).Set(d.Seconds())
}

// AddAccepted records accepted canonical records for an entity.
func (r *Registry) AddAccepted(entity string, n int) {
	if r == nil {
		return
	}
	r.RecordsAccepted.WithLabelValues(entity).Add(float64(n))
}

// AddIssue records validation issues of one kind.
func (r *Registry) AddIssue(kind string, n int) {
	if r == nil {
		return
	}
	r.IssuesTotal.WithLabelValues(kind).Add(float64(n))
}

// IncRuns marks one completed run.
func (r *Registry) IncRuns() {
	if r == nil {
		return
	}
	r.RunsTotal.Inc()
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
