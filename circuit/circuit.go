// Package circuit holds qudit circuits: an ordered list of named gate
// applications laid out on steps, with a dependency view, a text format and
// the measurement records produced when a circuit is sampled.
package circuit

import (
	"fmt"
	"slices"
	"strings"

	"qudeck/gates"
)

// Op names that are not plain gate kinds.
const (
	Measure = "MEASURE"
	Mul     = "MUL"
)

// Op is one gate application placed on the circuit.
type Op struct {
	Gate       string // canonical name: I X Z H P MUL CNOT MEASURE
	Target     int
	Control    int // -1 unless CNOT
	Multiplier int // MUL only
	Step       int // position in circuit timeline
}

// IsMeasurement reports whether the op is a computational-basis measurement.
func (o Op) IsMeasurement() bool { return o.Gate == Measure }

// Qudits returns the qudits the op acts on, control first.
func (o Op) Qudits() []int {
	if o.Control >= 0 {
		return []int{o.Control, o.Target}
	}
	return []int{o.Target}
}

// references reports whether the op acts on qudit q.
func (o Op) references(q int) bool {
	return o.Target == q || o.Control == q
}

// span returns the lowest and highest qudit covered, including the wires a
// two-qudit op crosses.
func (o Op) span() (lo, hi int) {
	if o.Control < 0 {
		return o.Target, o.Target
	}
	return min(o.Control, o.Target), max(o.Control, o.Target)
}

// Resolve returns the gate descriptor of a unitary op.
func (o Op) Resolve(d int) (gates.Gate, error) {
	if o.Gate == Mul {
		return gates.NewM(d, o.Multiplier)
	}
	return gates.Lookup(o.Gate, d)
}

// Circuit holds the qudit circuit state.
type Circuit struct {
	NumQudits int
	Dimension int
	Ops       []Op
	MaxSteps  int
}

// New returns an empty circuit on numQudits qudits of dimension dim.
func New(numQudits, dim int) (*Circuit, error) {
	if numQudits < 1 || dim < 2 {
		return nil, fmt.Errorf("New(%d,%d): %w", numQudits, dim, ErrInvalidShape)
	}
	return &Circuit{NumQudits: numQudits, Dimension: dim}, nil
}

// canonicalName maps a case-insensitive gate name to its Op name. "M" is a
// measurement; the multiplication gate is "MUL".
func canonicalName(name string) (string, error) {
	up := strings.ToUpper(strings.TrimSpace(name))
	switch up {
	case "M", Measure, "MEASURE_Z", "MZ":
		return Measure, nil
	case Mul:
		return Mul, nil
	}
	kind, err := gates.ParseKind(up)
	if err != nil {
		return "", err
	}
	return kind.String(), nil
}

// AddGate appends a named gate on the given qudits at the earliest step where
// every wire it spans is free. CNOT takes (control, target); every other
// name takes one qudit.
func (c *Circuit) AddGate(name string, qudits ...int) error {
	op, err := c.buildOp(name, qudits)
	if err != nil {
		return err
	}
	if op.Gate == Mul {
		return fmt.Errorf("AddGate(%q): %w", name, gates.ErrMultiplierRequired)
	}
	c.appendASAP(op)
	return nil
}

// AddMultiplier appends the multiplication gate |q> -> |a·q mod d>.
func (c *Circuit) AddMultiplier(a, qudit int) error {
	op, err := c.buildOp(Mul, []int{qudit})
	if err != nil {
		return err
	}
	g, err := gates.NewM(c.Dimension, a)
	if err != nil {
		return fmt.Errorf("AddMultiplier(%d,%d): %w", a, qudit, err)
	}
	op.Multiplier = g.Multiplier()
	c.appendASAP(op)
	return nil
}

// buildOp validates name and qudits and returns an unplaced op.
func (c *Circuit) buildOp(name string, qudits []int) (Op, error) {
	canon, err := canonicalName(name)
	if err != nil {
		return Op{}, fmt.Errorf("AddGate(%q): %w", name, err)
	}
	want := 1
	if canon == gates.CNOT.String() {
		want = 2
	}
	if len(qudits) != want {
		return Op{}, fmt.Errorf("AddGate(%q, %v): want %d qudits: %w", name, qudits, want, ErrArity)
	}
	for _, q := range qudits {
		if q < 0 || q >= c.NumQudits {
			return Op{}, fmt.Errorf("AddGate(%q, %v): %w", name, qudits, ErrOutOfRange)
		}
	}
	op := Op{Gate: canon, Target: qudits[0], Control: -1}
	if want == 2 {
		if qudits[0] == qudits[1] {
			return Op{}, fmt.Errorf("AddGate(%q, %v): %w", name, qudits, ErrSameQudit)
		}
		op.Control, op.Target = qudits[0], qudits[1]
	}
	return op, nil
}

func (c *Circuit) appendASAP(op Op) {
	lo, hi := op.span()
	op.Step = c.nextFreeStep(lo, hi)
	c.Ops = append(c.Ops, op)
	c.MaxSteps = max(c.MaxSteps, op.Step+1)
}

// nextFreeStep returns the step after the last op overlapping [lo, hi].
func (c *Circuit) nextFreeStep(lo, hi int) int {
	step := 0
	for _, o := range c.Ops {
		olo, ohi := o.span()
		if olo <= hi && ohi >= lo {
			step = max(step, o.Step+1)
		}
	}
	return step
}

// CanPlaceAt reports whether an op over the given qudits fits at step.
func (c *Circuit) CanPlaceAt(step int, qudits ...int) bool {
	if len(qudits) == 0 {
		return true
	}
	lo, hi := slices.Min(qudits), slices.Max(qudits)
	for _, o := range c.Ops {
		if o.Step != step {
			continue
		}
		olo, ohi := o.span()
		if olo <= hi && ohi >= lo {
			return false
		}
	}
	return true
}

// PlaceAt validates op and inserts it at op.Step.
func (c *Circuit) PlaceAt(op Op) error {
	placed, err := c.buildOp(op.Gate, op.Qudits())
	if err != nil {
		return err
	}
	if placed.Gate == Mul {
		g, err := gates.NewM(c.Dimension, op.Multiplier)
		if err != nil {
			return fmt.Errorf("PlaceAt: %w", err)
		}
		placed.Multiplier = g.Multiplier()
	}
	if op.Step < 0 || !c.CanPlaceAt(op.Step, placed.Qudits()...) {
		return fmt.Errorf("PlaceAt(step %d): %w", op.Step, ErrOccupied)
	}
	placed.Step = op.Step
	c.Ops = append(c.Ops, placed)
	c.MaxSteps = max(c.MaxSteps, op.Step+1)
	return nil
}

// OpAt returns the op at step acting on qudit q, or nil.
func (c *Circuit) OpAt(step, q int) *Op {
	for i := range c.Ops {
		o := &c.Ops[i]
		if o.Step == step && o.references(q) {
			return o
		}
	}
	return nil
}

// RemoveAt removes the op at step acting on qudit q.
func (c *Circuit) RemoveAt(step, q int) {
	c.Ops = slices.DeleteFunc(c.Ops, func(o Op) bool {
		return o.Step == step && o.references(q)
	})
}

// RemoveOnQudit removes every op acting on qudit q.
func (c *Circuit) RemoveOnQudit(q int) {
	c.Ops = slices.DeleteFunc(c.Ops, func(o Op) bool {
		return o.references(q)
	})
}

// Resize changes the qudit count, dropping ops on removed qudits.
func (c *Circuit) Resize(n int) error {
	if n < 1 {
		return fmt.Errorf("Resize(%d): %w", n, ErrInvalidShape)
	}
	c.Ops = slices.DeleteFunc(c.Ops, func(o Op) bool {
		_, hi := o.span()
		return hi >= n
	})
	c.NumQudits = n
	return nil
}

// Clear removes every op.
func (c *Circuit) Clear() {
	c.Ops = nil
	c.MaxSteps = 0
}

// Compact moves every op to the earliest free step, keeping execution order.
func (c *Circuit) Compact() {
	ordered := c.Ordered()
	c.Clear()
	for _, op := range ordered {
		c.appendASAP(op)
	}
}

// Ordered returns the ops sorted by step. Ops sharing a step keep insertion order.
func (c *Circuit) Ordered() []Op {
	ops := slices.Clone(c.Ops)
	slices.SortStableFunc(ops, func(a, b Op) int { return a.Step - b.Step })
	return ops
}

// Measured returns the sorted set of measured qudits.
func (c *Circuit) Measured() []int {
	var qs []int
	for _, o := range c.Ops {
		if o.IsMeasurement() && !slices.Contains(qs, o.Target) {
			qs = append(qs, o.Target)
		}
	}
	slices.Sort(qs)
	return qs
}

// Depth returns the number of occupied steps after compaction.
func (c *Circuit) Depth() int {
	return FromCircuit(c).Depth()
}

// Clone returns a deep copy.
func (c *Circuit) Clone() *Circuit {
	return &Circuit{
		NumQudits: c.NumQudits,
		Dimension: c.Dimension,
		Ops:       slices.Clone(c.Ops),
		MaxSteps:  c.MaxSteps,
	}
}
