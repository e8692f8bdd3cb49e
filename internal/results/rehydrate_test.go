package results

import (
	"errors"
	"testing"

	"benchcore/pkg/procedure"
)

func TestRehydrateKnownProcedure(t *testing.T) {
	h := Header{
		Identity: sweepIdentity,
		Params: []HeaderParam{
			{Name: "Maximum Voltage", Value: "2.5 V"},
			{Name: "Iterations", Value: "25"},
		},
	}
	got, err := Rehydrate(newSweepRegistry(), h, nil)
	if err != nil {
		t.Fatalf("Rehydrate: %v", err)
	}
	if !got.Known {
		t.Fatal("Known = false for a registered procedure")
	}
	proc := got.Procedure.(*sweepProc)
	if proc.maxV.Float() != 2.5 {
		t.Fatalf("Maximum Voltage = %g", proc.maxV.Float())
	}
	if proc.iters.Int() != 25 {
		t.Fatalf("Iterations = %d", proc.iters.Int())
	}
}

func TestRehydrateAppliesUnitConversion(t *testing.T) {
	h := Header{
		Identity: sweepIdentity,
		Params: []HeaderParam{
			{Name: "Maximum Voltage", Value: "1000 mV"},
			{Name: "Iterations", Value: "10"},
		},
	}
	got, err := Rehydrate(newSweepRegistry(), h, nil)
	if err != nil {
		t.Fatalf("Rehydrate: %v", err)
	}
	if v := got.Procedure.(*sweepProc).maxV.Float(); v != 1.0 {
		t.Fatalf("1000 mV applied as %g V, want 1", v)
	}
}

func TestRehydrateUnregisteredYieldsPlaceholder(t *testing.T) {
	h := Header{
		Identity: procedure.Identity{Module: "retired.module", Class: "OldSweep"},
		Params:   []HeaderParam{{Name: "Level", Value: "3.0 V"}},
	}
	diag := &MemoryDiagnostics{}
	got, err := Rehydrate(newSweepRegistry(), h, diag)
	if err != nil {
		t.Fatalf("Rehydrate: %v", err)
	}
	if got.Known {
		t.Fatal("Known = true for an unregistered identity")
	}
	if diag.Count("warn") != 1 {
		t.Fatalf("warnings = %d, want 1", diag.Count("warn"))
	}
	placeholder, ok := got.Procedure.(*procedure.Unknown)
	if !ok {
		t.Fatalf("procedure type = %T", got.Procedure)
	}
	if p, _ := placeholder.Parameters().Get("Level"); p.String() != "3.0 V" {
		t.Fatalf("raw value = %q", p.String())
	}
}

func TestRehydrateExtraHeaderParameterFatal(t *testing.T) {
	h := Header{
		Identity: sweepIdentity,
		Params: []HeaderParam{
			{Name: "Maximum Voltage", Value: "1.0 V"},
			{Name: "Iterations", Value: "10"},
			{Name: "Ghost", Value: "1"},
		},
	}
	_, err := Rehydrate(newSweepRegistry(), h, nil)
	if !errors.Is(err, ErrParameterMismatch) {
		t.Fatalf("error = %v, want ErrParameterMismatch", err)
	}
}

func TestRehydrateMissingDeclaredParameterFatal(t *testing.T) {
	h := Header{
		Identity: sweepIdentity,
		Params:   []HeaderParam{{Name: "Maximum Voltage", Value: "1.0 V"}},
	}
	_, err := Rehydrate(newSweepRegistry(), h, nil)
	if !errors.Is(err, ErrParameterMismatch) {
		t.Fatalf("error = %v, want ErrParameterMismatch", err)
	}
}

func TestRehydrateBadValueFails(t *testing.T) {
	h := Header{
		Identity: sweepIdentity,
		Params: []HeaderParam{
			{Name: "Maximum Voltage", Value: "not a voltage"},
			{Name: "Iterations", Value: "10"},
		},
	}
	if _, err := Rehydrate(newSweepRegistry(), h, nil); err == nil {
		t.Fatal("unparseable value should fail rehydration")
	}
}
