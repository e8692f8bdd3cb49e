package results

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func newTestJSONStore(t *testing.T) (*JSONStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.json")
	proc := newSweepProc()
	f := NewFormatter(proc.DataColumns(), nil, nil)
	store := NewJSONStore(path, f, nil, nil)
	header, err := EncodeJSONHeader(sweepIdentity, proc.Parameters())
	if err != nil {
		t.Fatalf("EncodeJSONHeader: %v", err)
	}
	if err := store.Create(header); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return store, path
}

func TestJSONCreateWritesEnvelope(t *testing.T) {
	_, path := newTestJSONStore(t)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var envelope map[string]map[string][]any
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(envelope) != 1 {
		t.Fatalf("top-level keys = %d, want 1", len(envelope))
	}
	for header, data := range envelope {
		if _, err := DecodeJSONHeader(header); err != nil {
			t.Fatalf("header key does not decode: %v", err)
		}
		if len(data) != 0 {
			t.Fatalf("fresh file holds data: %v", data)
		}
	}
}

func TestJSONAppendThenReload(t *testing.T) {
	store, _ := newTestJSONStore(t)
	emit(t, store,
		map[string]any{"Voltage (V)": 0.0, "Current (A)": 0.0},
		map[string]any{"Voltage (V)": 2.5, "Current (A)": 0.001},
	)
	if err := store.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	table := store.Data()
	if table.Len() != 2 {
		t.Fatalf("rows = %d", table.Len())
	}
	row := table.Row(1)
	if row["Voltage (V)"] != "2.5" || row["Current (A)"] != "0.001" {
		t.Fatalf("row = %v", row)
	}
}

func TestJSONLateColumnIsNotBackfilled(t *testing.T) {
	store, path := newTestJSONStore(t)
	emit(t, store, map[string]any{"Voltage (V)": 1.0, "Current (A)": 0.001})
	emit(t, store, map[string]any{"Voltage (V)": 2.0, "Current (A)": 0.002, "Temperature (K)": 293.0})
	if err := store.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	table := store.Data()
	if got := table.Columns(); len(got) != 3 || got[2] != "Temperature (K)" {
		t.Fatalf("columns = %v", got)
	}
	// The late column's array is shorter; its tail rows read as nan.
	if table.Row(1)["Temperature (K)"] != "nan" {
		t.Fatalf("row 1 = %v", table.Row(1))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var envelope map[string]map[string][]any
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, data := range envelope {
		if len(data["Temperature (K)"]) != 1 {
			t.Fatalf("late column length = %d, want 1 (no backfill)", len(data["Temperature (K)"]))
		}
		if len(data["Voltage (V)"]) != 2 {
			t.Fatalf("voltage column length = %d", len(data["Voltage (V)"]))
		}
	}
}

func TestJSONRejectsMultipleHeaderObjects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "two.json")
	if err := os.WriteFile(path, []byte(`{"a":{},"b":{}}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := NewJSONStore(path, NewFormatter([]string{"A"}, nil, nil), nil, nil)
	if err := store.Reload(); err == nil {
		t.Fatal("two top-level objects should fail")
	}
}

func TestJSONSyncSwallowsReadErrors(t *testing.T) {
	store, path := newTestJSONStore(t)
	emit(t, store, map[string]any{"Voltage (V)": 1.0, "Current (A)": 0.001})
	if err := store.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := store.Sync(); err != nil {
		t.Fatalf("Sync should swallow the parse error, got %v", err)
	}
	if store.Data().Len() != 1 {
		t.Fatalf("rows = %d, want previous table kept", store.Data().Len())
	}
}
