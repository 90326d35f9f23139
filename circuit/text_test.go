package circuit

import (
	"errors"
	"strings"
	"testing"
)

func TestParseText(t *testing.T) {
	text := `OPENQUDIT 1.0;
qudits 3 dim 3;

// prepare
h q[0];
mul(2) q[1];   // inverse of 2 mod 3 is 2
cnot q[0], q[1];
CX q[1], q[2];
m(2) q[2];
measure q[0] -> c[0];
m q[1];
measure q[2];`

	c, err := ParseText(text)
	if err != nil {
		t.Fatalf("ParseText error: %v", err)
	}
	if c.NumQudits != 3 || c.Dimension != 3 {
		t.Fatalf("expected 3 qudits of dim 3, got %d of dim %d", c.NumQudits, c.Dimension)
	}

	want := []struct {
		gate    string
		target  int
		control int
		mult    int
	}{
		{"H", 0, -1, 0},
		{"MUL", 1, -1, 2},
		{"CNOT", 1, 0, 0},
		{"CNOT", 2, 1, 0},
		{"MUL", 2, -1, 2},
		{"MEASURE", 0, -1, 0},
		{"MEASURE", 1, -1, 0},
		{"MEASURE", 2, -1, 0},
	}
	if len(c.Ops) != len(want) {
		t.Fatalf("expected %d ops, got %d", len(want), len(c.Ops))
	}
	for i, w := range want {
		op := c.Ops[i]
		if op.Gate != w.gate || op.Target != w.target || op.Control != w.control || op.Multiplier != w.mult {
			t.Errorf("op %d: expected %s t=%d c=%d a=%d, got %s t=%d c=%d a=%d",
				i, w.gate, w.target, w.control, w.mult, op.Gate, op.Target, op.Control, op.Multiplier)
		}
	}
}

func TestRoundTripText(t *testing.T) {
	c, err := New(2, 5)
	if err != nil {
		t.Fatal(err)
	}
	c.AddGate("H", 0)
	c.AddMultiplier(3, 1)
	c.AddGate("CNOT", 0, 1)
	c.AddGate("P", 1)
	c.AddGate("MEASURE", 0)
	c.AddGate("MEASURE", 1)

	text := Format(c)
	if !strings.HasPrefix(text, Header+"\nqudits 2 dim 5;\n") {
		t.Fatalf("unexpected header:\n%s", text)
	}
	if !strings.Contains(text, "mul(3) q[1];\n") || !strings.Contains(text, "cnot q[0], q[1];\n") {
		t.Errorf("missing ops in:\n%s", text)
	}

	c2, err := ParseText(text)
	if err != nil {
		t.Fatalf("ParseText error: %v", err)
	}
	if Format(c2) != text {
		t.Errorf("round trip changed text:\n%s\nvs\n%s", text, Format(c2))
	}
	for i := range c.Ops {
		if c.Ops[i] != c2.Ops[i] {
			t.Errorf("op %d: %+v != %+v", i, c.Ops[i], c2.Ops[i])
		}
	}
}

func TestParseTextErrors(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantLine string
	}{
		{"missing declaration", "h q[0];", "line 1"},
		{"empty", "", "missing qudits"},
		{"bad gate", "qudits 1 dim 3;\nswap q[0];", "line 2"},
		{"out of range", "qudits 2 dim 3;\nh q[0];\nx q[2];", "line 3"},
		{"not coprime", "qudits 1 dim 4;\nmul(2) q[0];", "line 2"},
		{"param on plain gate", "qudits 1 dim 3;\nh(2) q[0];", "line 2"},
		{"garbage", "qudits 1 dim 3;\nhello world", "line 2"},
		{"bad shape", "qudits 0 dim 3;", "line 1"},
		{"duplicate declaration", "qudits 1 dim 3;\nqudits 2 dim 3;", "line 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseText(tt.text)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrSyntax) {
				t.Errorf("expected ErrSyntax, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantLine) {
				t.Errorf("expected %q in %q", tt.wantLine, err.Error())
			}
		})
	}
}
