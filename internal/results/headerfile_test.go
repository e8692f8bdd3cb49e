package results

import (
	"path/filepath"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	if got := DetectFormat("run.csv"); got != FormatCSV {
		t.Fatalf("run.csv = %v", got)
	}
	if got := DetectFormat("run.json"); got != FormatJSON {
		t.Fatalf("run.json = %v", got)
	}
	if got := DetectFormat("run.dat"); got != FormatCSV {
		t.Fatalf("run.dat = %v", got)
	}
	t.Setenv(EnvFormat, "json")
	if got := DetectFormat("run.csv"); got != FormatJSON {
		t.Fatalf("env override = %v", got)
	}
	t.Setenv(EnvFormat, "csv")
	if got := DetectFormat("run.json"); got != FormatCSV {
		t.Fatalf("env override = %v", got)
	}
}

func TestDecodeHeaderFileCSV(t *testing.T) {
	store, path := newTestCSVStore(t)
	emit(t, store, map[string]any{"Voltage (V)": 1.0, "Current (A)": 0.0004})

	header, format, err := DecodeHeaderFile(path)
	if err != nil {
		t.Fatalf("DecodeHeaderFile: %v", err)
	}
	if format != FormatCSV {
		t.Fatalf("format = %v", format)
	}
	if header.Identity != sweepIdentity {
		t.Fatalf("identity = %+v", header.Identity)
	}
	if v, _ := header.Lookup("Iterations"); v != "10" {
		t.Fatalf("Iterations = %q", v)
	}
}

func TestDecodeHeaderFileJSON(t *testing.T) {
	store, path := newTestJSONStore(t)
	emit(t, store, map[string]any{"Voltage (V)": 1.0, "Current (A)": 0.0004})

	header, format, err := DecodeHeaderFile(path)
	if err != nil {
		t.Fatalf("DecodeHeaderFile: %v", err)
	}
	if format != FormatJSON {
		t.Fatalf("format = %v", format)
	}
	if header.Identity != sweepIdentity {
		t.Fatalf("identity = %+v", header.Identity)
	}
}

func TestCountRows(t *testing.T) {
	store, path := newTestCSVStore(t)
	if n, err := CountRows(path); err != nil || n != 0 {
		t.Fatalf("CountRows(empty) = %d, %v", n, err)
	}
	emit(t, store,
		map[string]any{"Voltage (V)": 1.0, "Current (A)": 0.0004},
		map[string]any{"Voltage (V)": 2.0, "Current (A)": 0.0008},
	)
	if n, err := CountRows(path); err != nil || n != 2 {
		t.Fatalf("CountRows = %d, %v", n, err)
	}

	jsonStore, jsonPath := newTestJSONStore(t)
	emit(t, jsonStore, map[string]any{"Voltage (V)": 1.0, "Current (A)": 0.0004})
	if n, err := CountRows(jsonPath); err != nil || n != 1 {
		t.Fatalf("CountRows(json) = %d, %v", n, err)
	}
}

func TestReadColumns(t *testing.T) {
	_, path := newTestCSVStore(t)
	columns, err := ReadColumns(path)
	if err != nil {
		t.Fatalf("ReadColumns: %v", err)
	}
	if len(columns) != 2 || columns[0] != "Voltage (V)" || columns[1] != "Current (A)" {
		t.Fatalf("columns = %v", columns)
	}

	jsonStore, jsonPath := newTestJSONStore(t)
	emit(t, jsonStore, map[string]any{"Voltage (V)": 1.0, "Current (A)": 0.0004})
	jsonColumns, err := ReadColumns(jsonPath)
	if err != nil {
		t.Fatalf("ReadColumns(json): %v", err)
	}
	// JSON column names come back sorted.
	if len(jsonColumns) != 2 || jsonColumns[0] != "Current (A)" {
		t.Fatalf("json columns = %v", jsonColumns)
	}
}

func TestDecodeHeaderFileMissing(t *testing.T) {
	if _, _, err := DecodeHeaderFile(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("missing file should fail")
	}
}
