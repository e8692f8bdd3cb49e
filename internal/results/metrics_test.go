package results

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestExpvarRecorderCounts(t *testing.T) {
	r := NewExpvarRecorder("")
	r.ObserveAppend(FormatCSV, time.Millisecond, nil)
	r.ObserveAppend(FormatCSV, time.Millisecond, errors.New("disk full"))
	r.ObserveReload(FormatCSV, "full", nil)
	r.ObserveReload(FormatJSON, "incremental", nil)
	r.IncUnitWarning("Voltage (V)")
	r.IncUnitWarning("Voltage (V)")

	snap := r.Snapshot()
	if snap.Appends["csv/ok"] != 1 || snap.Appends["csv/error"] != 1 {
		t.Fatalf("appends = %v", snap.Appends)
	}
	if snap.Reloads["csv/full/ok"] != 1 || snap.Reloads["json/incremental/ok"] != 1 {
		t.Fatalf("reloads = %v", snap.Reloads)
	}
	if snap.UnitWarnings["Voltage (V)"] != 2 {
		t.Fatalf("unit warnings = %v", snap.UnitWarnings)
	}
	if snap.AppendNanosTotal["csv"] == 0 {
		t.Fatalf("append nanos = %v", snap.AppendNanosTotal)
	}
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewPrometheusRecorder(reg)
	r.ObserveAppend(FormatCSV, time.Millisecond, nil)
	r.ObserveReload(FormatCSV, "full", errors.New("boom"))
	r.IncUnitWarning("Voltage (V)")

	if got := promtest.ToFloat64(r.appends.WithLabelValues("csv", "ok")); got != 1 {
		t.Fatalf("appends_total = %v", got)
	}
	if got := promtest.ToFloat64(r.reloads.WithLabelValues("csv", "full", "error")); got != 1 {
		t.Fatalf("reloads_total = %v", got)
	}
	if got := promtest.ToFloat64(r.unitWarnings.WithLabelValues("Voltage (V)")); got != 1 {
		t.Fatalf("unit_warnings_total = %v", got)
	}
}

func TestStoreOperationsFeedMetrics(t *testing.T) {
	rec := NewExpvarRecorder("")
	store, _ := newTestCSVStore(t)
	store.metrics = rec

	emit(t, store, map[string]any{"Voltage (V)": 1.0, "Current (A)": 0.0004})
	if rec.Snapshot().Appends["csv/ok"] != 1 {
		t.Fatalf("appends = %v", rec.Snapshot().Appends)
	}
}
