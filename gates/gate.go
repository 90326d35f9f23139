package gates

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Kind names one generator of the gate set.
type Kind int

const (
	Identity Kind = iota
	X
	Z
	H
	P
	M
	CNOT
)

var kindNames = [...]string{
	Identity: "I",
	X:        "X",
	Z:        "Z",
	H:        "H",
	P:        "P",
	M:        "M",
	CNOT:     "CNOT",
}

// kindAliases maps accepted upper-case names to kinds.
var kindAliases = map[string]Kind{
	"I":        Identity,
	"ID":       Identity,
	"IDENTITY": Identity,
	"X":        X,
	"Z":        Z,
	"H":        H,
	"P":        P,
	"M":        M,
	"MUL":      M,
	"CNOT":     CNOT,
	"CX":       CNOT,
	"SUM":      CNOT,
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Arity returns the number of qudit lines the gate acts on.
func (k Kind) Arity() int {
	if k == CNOT {
		return 2
	}
	return 1
}

// ParseKind resolves a case-insensitive gate name or alias.
func ParseKind(name string) (Kind, error) {
	k, ok := kindAliases[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("ParseKind(%q): %w", name, ErrUnknownGate)
	}
	return k, nil
}

// Gate is an immutable gate descriptor: a kind, a dimension and, for M, a
// multiplier reduced into [1, d).
type Gate struct {
	kind Kind
	dim  int
	mult int
}

// New returns the gate of the given kind on dimension d. M needs NewM.
func New(kind Kind, d int) (Gate, error) {
	if err := checkDim(d); err != nil {
		return Gate{}, fmt.Errorf("New(%v,%d): %w", kind, d, err)
	}
	switch kind {
	case Identity, X, Z, H, P, CNOT:
		return Gate{kind: kind, dim: d}, nil
	case M:
		return Gate{}, fmt.Errorf("New(%v,%d): %w", kind, d, ErrMultiplierRequired)
	default:
		return Gate{}, fmt.Errorf("New(%v,%d): %w", kind, d, ErrUnknownGate)
	}
}

// NewM returns the multiplication gate |q> -> |a·q mod d>.
func NewM(d, a int) (Gate, error) {
	if err := checkDim(d); err != nil {
		return Gate{}, fmt.Errorf("NewM(%d,%d): %w", d, a, err)
	}
	na, err := normalizeMultiplier(d, a)
	if err != nil {
		return Gate{}, fmt.Errorf("NewM(%d,%d): %w", d, a, err)
	}
	return Gate{kind: M, dim: d, mult: na}, nil
}

// Lookup builds a gate from a case-insensitive name. The optional a is the
// M multiplier and is ignored by the other kinds.
func Lookup(name string, d int, a ...int) (Gate, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return Gate{}, err
	}
	if kind == M {
		if len(a) == 0 {
			return Gate{}, fmt.Errorf("Lookup(%q,%d): %w", name, d, ErrMultiplierRequired)
		}
		return NewM(d, a[0])
	}
	return New(kind, d)
}

// Kind returns the generator kind.
func (g Gate) Kind() Kind { return g.kind }

// Dimension returns d.
func (g Gate) Dimension() int { return g.dim }

// Multiplier returns the M multiplier, or 0 for the other kinds.
func (g Gate) Multiplier() int { return g.mult }

// Arity returns the number of qudit lines.
func (g Gate) Arity() int { return g.kind.Arity() }

// QidShape returns the dimension of each qudit line the gate acts on.
func (g Gate) QidShape() []int {
	shape := make([]int, g.Arity())
	for i := range shape {
		shape[i] = g.dim
	}
	return shape
}

// Unitary returns a fresh copy of the gate matrix. For CNOT the first qudit
// line is the control and indexes the most significant digit.
func (g Gate) Unitary() *mat.CDense {
	switch g.kind {
	case X:
		return shift(g.dim)
	case Z:
		return clock(g.dim)
	case H:
		return hadamard(g.dim)
	case P:
		return phase(g.dim)
	case M:
		return multiply(g.dim, g.mult)
	case CNOT:
		return cnot(g.dim)
	default:
		return identity(g.dim)
	}
}

// Label returns the diagnostic label, e.g. "H_3" or "M_5(2)".
func (g Gate) Label() string {
	if g.kind == M {
		return fmt.Sprintf("M_%d(%d)", g.dim, g.mult)
	}
	return fmt.Sprintf("%s_%d", g.kind, g.dim)
}

// WireLabels returns one label per qudit line.
func (g Gate) WireLabels() []string {
	if g.kind == CNOT {
		return []string{
			fmt.Sprintf("CNOT_%d_control", g.dim),
			fmt.Sprintf("CNOT_%d_target", g.dim),
		}
	}
	return []string{g.Label()}
}

func (g Gate) String() string { return g.Label() }
