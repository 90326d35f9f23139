package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"qudeck/internal/config"
	"qudeck/pauli"
)

func TestRunGate(t *testing.T) {
	var buf bytes.Buffer
	if err := runGate(&buf, "mul", 5, 2); err != nil {
		t.Fatalf("runGate: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"M_5(2)", "arity 1", "unitary: true"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if err := runGate(&buf, "mul", 4, 2); err == nil {
		t.Error("expected error for a non-unit multiplier")
	}
}

func TestRunPauliWritesRows(t *testing.T) {
	var buf bytes.Buffer
	out := filepath.Join(t.TempDir(), "rows.msgpack")
	if err := runPauli(&buf, []string{"X Z", "w2(I)(XZ)"}, 2, 3, out); err != nil {
		t.Fatalf("runPauli: %v", err)
	}
	if !strings.Contains(buf.String(), "w2(I)(XZ)") {
		t.Errorf("table missing canonical form:\n%s", buf.String())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	rows, err := pauli.DecodeRows(data)
	if err != nil {
		t.Fatalf("DecodeRows: %v", err)
	}
	if len(rows) != 2 || rows[0].String() != "(X)(Z)" {
		t.Errorf("rows = %v", rows)
	}
}

func TestListScenarios(t *testing.T) {
	var buf bytes.Buffer
	if err := listScenarios(&buf, 3); err != nil {
		t.Fatalf("listScenarios: %v", err)
	}
	for _, want := range []string{"deutsch-constant", "ghz", "random"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("listing missing %q", want)
		}
	}
}

func TestRunValidateScenario(t *testing.T) {
	cfg := &config.Config{
		Dimension:    3,
		Qudits:       2,
		Samples:      200,
		Workers:      2,
		Seed:         11,
		TVDThreshold: 0.2,
		ProbCutoff:   1e-13,
		LogLevel:     "off",
	}
	var buf bytes.Buffer
	if err := runValidate(context.Background(), cfg, &buf, "", "deutsch-balanced"); err != nil {
		t.Fatalf("runValidate: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"PASS", "records: q0=1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunValidateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.qdc")
	text := "OPENQUDIT 1.0;\nqudits 1 dim 3;\nx q[0];\nmeasure q[0];\n"
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{Samples: 50, Workers: 1, Seed: 3, TVDThreshold: 0.2, LogLevel: "off"}
	var buf bytes.Buffer
	if err := runValidate(context.Background(), cfg, &buf, path, ""); err != nil {
		t.Fatalf("runValidate: %v", err)
	}
	if !strings.Contains(buf.String(), "|1>") {
		t.Errorf("report missing outcome |1>:\n%s", buf.String())
	}

	if err := runValidate(context.Background(), cfg, &buf, "", ""); err == nil {
		t.Error("expected error without --file or --scenario")
	}
}

func TestAppGateCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("QUDECK_DIMENSION", "3")

	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf
	if err := app.Run([]string{"qudeck", "gate", "-d", "2", "H"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(buf.String(), "H_2") {
		t.Errorf("output missing H_2:\n%s", buf.String())
	}
}
