package validate

import (
	"fmt"
	"slices"

	"qudeck/circuit"
)

// Scenario is a named regression circuit. Expect holds the measurement
// records every run must produce, or nil when the outcome is random.
type Scenario struct {
	Name        string
	Description string
	Circuit     *circuit.Circuit
	Expect      []circuit.MeasurementResult
}

// step is one AddGate call; a zero mult means a plain gate.
type step struct {
	gate   string
	qudits []int
	mult   int
}

func build(n, d int, steps ...step) (*circuit.Circuit, error) {
	c, err := circuit.New(n, d)
	if err != nil {
		return nil, err
	}
	for _, s := range steps {
		if s.mult != 0 {
			err = c.AddMultiplier(s.mult, s.qudits[0])
		} else {
			err = c.AddGate(s.gate, s.qudits...)
		}
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

func op(name string, qudits ...int) step { return step{gate: name, qudits: qudits} }

func certain(pairs ...int) []circuit.MeasurementResult {
	var out []circuit.MeasurementResult
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, circuit.MeasurementResult{Qudit: pairs[i], Deterministic: true, Value: pairs[i+1]})
	}
	return out
}

// Scenarios returns the built-in regression circuits for dimension d. The
// qubit scenarios are always built with d = 2.
func Scenarios(d int) ([]Scenario, error) {
	// |+> on the query qudit, Fourier |1> on the answer qudit
	prep := []step{op("H", 0), op("X", 1), op("H", 1)}

	constant := slices.Clone(prep)
	for range d - 1 {
		constant = append(constant, op("X", 1))
	}
	constant = append(constant, op("H", 0), op("M", 0))

	balanced := slices.Clone(prep)
	balanced = append(balanced, op("CNOT", 0, 1), op("H", 0), op("M", 0))

	defs := []struct {
		name, desc string
		n, d       int
		steps      []step
		expect     []circuit.MeasurementResult
	}{
		{
			name: "deutsch-constant", desc: "Deutsch query of a constant oracle reads 0",
			n: 2, d: d, steps: constant, expect: certain(0, 0),
		},
		{
			name: "deutsch-balanced", desc: "Deutsch query of the identity oracle reads 1",
			n: 2, d: d, steps: balanced, expect: certain(0, 1),
		},
		{
			name: "qutrit-flip", desc: "X on a qutrit reads 1",
			n: 2, d: 3, steps: []step{op("X", 0), op("M", 0)}, expect: certain(0, 1),
		},
		{
			name: "qubit-flip", desc: "H P P H acts as X",
			n: 2, d: 2,
			steps: []step{
				op("H", 0), op("P", 0), op("P", 0), op("H", 0), op("M", 0),
				op("X", 1), op("M", 1),
			},
			expect: certain(0, 1, 1, 1),
		},
		{
			name: "phase-kickback", desc: "controlled phase kicked back onto both qubits",
			n: 2, d: 2,
			steps: []step{
				op("H", 1), op("P", 1),
				op("H", 0), op("CNOT", 0, 1), op("H", 1), op("CNOT", 0, 1), op("H", 1),
				op("P", 0), op("H", 0), op("M", 0),
				op("P", 1), op("H", 1), op("M", 1),
			},
			expect: certain(0, 1, 1, 1),
		},
		{
			name: "multiply", desc: "X then multiplication by d-1 reads d-1",
			n: 1, d: d,
			steps:  []step{op("X", 0), {qudits: []int{0}, mult: d - 1}, op("M", 0)},
			expect: certain(0, d-1),
		},
		{
			name: "ghz", desc: "three-qudit entangler, all digits equal",
			n: 3, d: d,
			steps: []step{op("H", 0), op("CNOT", 0, 1), op("CNOT", 1, 2), op("M", 0), op("M", 1), op("M", 2)},
		},
	}

	out := make([]Scenario, 0, len(defs))
	for _, def := range defs {
		c, err := build(def.n, def.d, def.steps...)
		if err != nil {
			return nil, fmt.Errorf("Scenarios(%d): %s: %w", d, def.name, err)
		}
		out = append(out, Scenario{Name: def.name, Description: def.desc, Circuit: c, Expect: def.expect})
	}
	return out, nil
}

// Lookup returns the scenario named name.
func Lookup(name string, d int) (Scenario, error) {
	all, err := Scenarios(d)
	if err != nil {
		return Scenario{}, err
	}
	for _, s := range all {
		if s.Name == name {
			return s, nil
		}
	}
	return Scenario{}, fmt.Errorf("Lookup(%q): %w", name, ErrUnknownScenario)
}
