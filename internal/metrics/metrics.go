// Package metrics defines the recorder interface the services report to.
//
// The recorder is injected explicitly rather than accumulated in a
// process-wide singleton, so the balance engine and its callers stay free of
// global state and tests can pass a Nop.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "tally_"

// Recorder receives performance and outcome samples from the service layer.
type Recorder interface {
	// BalanceComputed records one balance computation for a group: how long
	// it took and how many malformed ledger records were skipped.
	BalanceComputed(duration time.Duration, degradedRecords int)

	// LedgerMutation records a create/update/delete on an expense or
	// settlement. kind is "expense" or "settlement".
	LedgerMutation(kind, op string)

	// LockedMutationRejected records a mutation rejected because the record
	// references a departed member.
	LockedMutationRejected(kind string)
}

// PrometheusRecorder implements Recorder with prometheus collectors.
type PrometheusRecorder struct {
	balanceLatency  prometheus.Histogram
	balanceTotal    prometheus.Counter
	degradedRecords prometheus.Counter
	mutations       *prometheus.CounterVec
	lockedRejects   *prometheus.CounterVec
}

// NewPrometheusRecorder creates a recorder and registers its collectors with
// the given registerer.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		balanceLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricPrefix + "balance_computation_seconds",
			Help:    "Balance computation latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		balanceTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "balance_computations_total",
			Help: "Total balance computations",
		}),
		degradedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "degraded_ledger_records_total",
			Help: "Total malformed ledger records skipped during balance computation",
		}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "ledger_mutations_total",
			Help: "Total ledger mutations by record kind and operation",
		}, []string{"kind", "op"}),
		lockedRejects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "locked_mutations_rejected_total",
			Help: "Total mutations rejected on locked records by record kind",
		}, []string{"kind"}),
	}
	reg.MustRegister(r.balanceLatency, r.balanceTotal, r.degradedRecords, r.mutations, r.lockedRejects)
	return r
}

func (r *PrometheusRecorder) BalanceComputed(duration time.Duration, degradedRecords int) {
	r.balanceTotal.Inc()
	r.balanceLatency.Observe(duration.Seconds())
	r.degradedRecords.Add(float64(degradedRecords))
}

func (r *PrometheusRecorder) LedgerMutation(kind, op string) {
	r.mutations.WithLabelValues(kind, op).Inc()
}

func (r *PrometheusRecorder) LockedMutationRejected(kind string) {
	r.lockedRejects.WithLabelValues(kind).Inc()
}

// Nop is a Recorder that discards all samples. Useful in tests.
type Nop struct{}

func (Nop) BalanceComputed(time.Duration, int) {}
func (Nop) LedgerMutation(string, string)      {}
func (Nop) LockedMutationRejected(string)      {}
