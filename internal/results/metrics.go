package results

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRecorder observes persistence operations. Implementations must be
// safe for concurrent use.
type MetricsRecorder interface {
	// ObserveAppend records one per-sample write for the given encoding.
	ObserveAppend(format Format, d time.Duration, err error)
	// ObserveReload records a data reload; mode is "full" or "incremental".
	ObserveReload(format Format, mode string, err error)
	// IncUnitWarning counts a unit-normalization fallback for a column.
	IncUnitWarning(column string)
}

// NopMetrics discards all observations. It is the default recorder.
type NopMetrics struct{}

func (NopMetrics) ObserveAppend(Format, time.Duration, error) {}
func (NopMetrics) ObserveReload(Format, string, error)        {}
func (NopMetrics) IncUnitWarning(string)                      {}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// PrometheusRecorder publishes persistence metrics through a prometheus
// registerer.
type PrometheusRecorder struct {
	appendDuration *prometheus.HistogramVec
	appends        *prometheus.CounterVec
	reloads        *prometheus.CounterVec
	unitWarnings   *prometheus.CounterVec
}

// NewPrometheusRecorder constructs and registers the recorder's collectors.
// A nil registerer falls back to the default registry.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &PrometheusRecorder{
		appendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "benchcore",
			Subsystem: "results",
			Name:      "append_duration_seconds",
			Help:      "Time spent writing one measurement row.",
		}, []string{"format"}),
		appends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "benchcore",
			Subsystem: "results",
			Name:      "appends_total",
			Help:      "Measurement rows written, by encoding and status.",
		}, []string{"format", "status"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "benchcore",
			Subsystem: "results",
			Name:      "reloads_total",
			Help:      "Data reloads, by encoding, mode and status.",
		}, []string{"format", "mode", "status"}),
		unitWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "benchcore",
			Subsystem: "results",
			Name:      "unit_warnings_total",
			Help:      "Values written as nan because they could not be normalized to the column unit.",
		}, []string{"column"}),
	}
	reg.MustRegister(r.appendDuration, r.appends, r.reloads, r.unitWarnings)
	return r
}

func (r *PrometheusRecorder) ObserveAppend(format Format, d time.Duration, err error) {
	r.appendDuration.WithLabelValues(string(format)).Observe(d.Seconds())
	r.appends.WithLabelValues(string(format), statusLabel(err)).Inc()
}

func (r *PrometheusRecorder) ObserveReload(format Format, mode string, err error) {
	r.reloads.WithLabelValues(string(format), mode, statusLabel(err)).Inc()
}

func (r *PrometheusRecorder) IncUnitWarning(column string) {
	r.unitWarnings.WithLabelValues(column).Inc()
}

var expvarSeq uint64

// ExpvarRecorder publishes aggregate persistence counters via expvar for
// deployments that prefer process-local metrics without scrape
// infrastructure.
type ExpvarRecorder struct {
	name string

	mu           sync.Mutex
	appends      map[string]int64
	reloads      map[string]int64
	unitWarnings map[string]int64
	appendNanos  map[string]int64
}

// ExpvarSnapshot is a read-only view of the recorded counters.
type ExpvarSnapshot struct {
	Appends          map[string]int64 `json:"appends_total"`
	AppendNanosTotal map[string]int64 `json:"append_nanos_total"`
	Reloads          map[string]int64 `json:"reloads_total"`
	UnitWarnings     map[string]int64 `json:"unit_warnings_total"`
}

// NewExpvarRecorder constructs an expvar-backed recorder published under
// name; an empty name generates a unique one.
func NewExpvarRecorder(name string) *ExpvarRecorder {
	if name == "" {
		name = fmt.Sprintf("benchcore_results_metrics_%d", atomic.AddUint64(&expvarSeq, 1))
	}
	r := &ExpvarRecorder{
		name:         name,
		appends:      make(map[string]int64),
		reloads:      make(map[string]int64),
		unitWarnings: make(map[string]int64),
		appendNanos:  make(map[string]int64),
	}
	expvar.Publish(name, expvar.Func(func() any { return r.Snapshot() }))
	return r
}

// Name returns the expvar export name.
func (r *ExpvarRecorder) Name() string { return r.name }

// Snapshot returns a copy of the aggregated counters.
func (r *ExpvarRecorder) Snapshot() ExpvarSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ExpvarSnapshot{
		Appends:          cloneCounts(r.appends),
		AppendNanosTotal: cloneCounts(r.appendNanos),
		Reloads:          cloneCounts(r.reloads),
		UnitWarnings:     cloneCounts(r.unitWarnings),
	}
}

func cloneCounts(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (r *ExpvarRecorder) ObserveAppend(format Format, d time.Duration, err error) {
	key := string(format) + "/" + statusLabel(err)
	r.mu.Lock()
	r.appends[key]++
	r.appendNanos[string(format)] += d.Nanoseconds()
	r.mu.Unlock()
}

func (r *ExpvarRecorder) ObserveReload(format Format, mode string, err error) {
	key := string(format) + "/" + mode + "/" + statusLabel(err)
	r.mu.Lock()
	r.reloads[key]++
	r.mu.Unlock()
}

func (r *ExpvarRecorder) IncUnitWarning(column string) {
	r.mu.Lock()
	r.unitWarnings[column]++
	r.mu.Unlock()
}
