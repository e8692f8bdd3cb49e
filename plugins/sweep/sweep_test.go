package sweep

import (
	"path/filepath"
	"testing"

	"benchcore/internal/results"
	"benchcore/pkg/procedure"
)

func TestRegisterAndResolve(t *testing.T) {
	reg := procedure.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	factory, ok := reg.Resolve("benchcore.plugins.sweep.IVSweep")
	if !ok {
		t.Fatal("identity not registered")
	}
	proc, ok := factory().(*IVSweep)
	if !ok {
		t.Fatalf("factory returned %T", factory())
	}
	if proc.MaxVoltage.Float() != 1.0 || proc.Steps.Int() != 50 {
		t.Fatalf("defaults = %v, %v", proc.MaxVoltage.Float(), proc.Steps.Int())
	}
	if Register(reg) == nil {
		t.Fatal("double registration should fail")
	}
}

func TestSweepResultsRoundTrip(t *testing.T) {
	reg := procedure.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}

	proc := New()
	if err := proc.MaxVoltage.Set("500 mV"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := proc.Bidirect.Set("true"); err != nil {
		t.Fatalf("set: %v", err)
	}

	path := filepath.Join(t.TempDir(), "iv.csv")
	r, err := results.New(proc, []string{path})
	if err != nil {
		t.Fatalf("results.New: %v", err)
	}
	if err := r.Append(map[string]any{"Voltage (V)": 0.5, "Current (A)": 0.0002}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	loaded, err := results.Load(path, reg)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded.Known() {
		t.Fatal("Known() = false")
	}
	got := loaded.Procedure().(*IVSweep)
	if got.MaxVoltage.Float() != 0.5 {
		t.Fatalf("Maximum Voltage = %g", got.MaxVoltage.Float())
	}
	if !got.Bidirect.Bool() {
		t.Fatal("Bidirectional lost on round trip")
	}
	if loaded.Data().Len() != 1 {
		t.Fatalf("rows = %d", loaded.Data().Len())
	}
}
