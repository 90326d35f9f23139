package pauli

import (
	"fmt"
	"math"
	"math/cmplx"
	"regexp"
	"strconv"
)

// setTermRegex matches the token accepted by Set: a letter, then an optional
// signed integer power or '!'.
var setTermRegex = regexp.MustCompile(`^([A-Z])(-?\d+|!)?$`)

// term is the (x, z) power pair of a single qudit.
type term struct {
	x, z int
}

// assign is the transition taken by Set: the named axis gets power p and the
// other axis is cleared. 'I' clears both.
func assign(symbol byte, p int) term {
	switch symbol {
	case 'X':
		return term{x: p}
	case 'Z':
		return term{z: p}
	default:
		return term{}
	}
}

// merge is the transition taken for each part of a parsed group: the named
// axis is overwritten, the other axis is kept. 'I' leaves t unchanged.
func merge(t term, symbol byte, p int) term {
	switch symbol {
	case 'X':
		t.x = p
	case 'Z':
		t.z = p
	}
	return t
}

func validSymbol(symbol byte) bool {
	return symbol == 'X' || symbol == 'Z' || symbol == 'I'
}

// String is a generalized Pauli operator on a fixed number of qudits.
type String struct {
	dim   int
	phase int
	terms []term
}

// New returns the identity string on numQudits qudits of dimension dim.
func New(numQudits, dim int) (*String, error) {
	if dim < 2 {
		return nil, fmt.Errorf("New(%d,%d): %w", numQudits, dim, ErrInvalidDimension)
	}
	if numQudits < 1 {
		return nil, fmt.Errorf("New(%d,%d): %w", numQudits, dim, ErrInvalidQuditCount)
	}
	return &String{dim: dim, terms: make([]term, numQudits)}, nil
}

// NumQudits returns the number of qudits.
func (s *String) NumQudits() int { return len(s.terms) }

// Dimension returns the qudit dimension d.
func (s *String) Dimension() int { return s.dim }

// Phase returns the stored phase exponent.
func (s *String) Phase() int { return s.phase }

// X returns the X power on qudit i.
func (s *String) X(i int) int { return s.terms[i].x }

// Z returns the Z power on qudit i.
func (s *String) Z(i int) int { return s.terms[i].z }

// XPowers returns a copy of all X powers in qudit order.
func (s *String) XPowers() []int {
	out := make([]int, len(s.terms))
	for i, t := range s.terms {
		out[i] = t.x
	}
	return out
}

// ZPowers returns a copy of all Z powers in qudit order.
func (s *String) ZPowers() []int {
	out := make([]int, len(s.terms))
	for i, t := range s.terms {
		out[i] = t.z
	}
	return out
}

// Set assigns the single-qudit term tok ("X", "Z3", "X!", "I", ...) to qudit
// index. The other axis of that qudit is cleared; the phase is not touched.
func (s *String) Set(index int, tok string) error {
	if index < 0 || index >= len(s.terms) {
		return fmt.Errorf("Set(%d,%q): %w", index, tok, ErrOutOfRange)
	}
	m := setTermRegex.FindStringSubmatch(tok)
	if m == nil {
		return fmt.Errorf("Set(%d,%q): %w", index, tok, ErrMalformedTerm)
	}
	symbol := m[1][0]
	if !validSymbol(symbol) {
		return fmt.Errorf("Set(%d,%q): %w", index, tok, ErrInvalidSymbol)
	}
	p, err := s.power(m[2])
	if err != nil {
		return fmt.Errorf("Set(%d,%q): %w", index, tok, err)
	}
	s.terms[index] = assign(symbol, p)
	return nil
}

// power decodes a power literal: "" is 1, "!" is d-1, digits must be in [0, d).
func (s *String) power(lit string) (int, error) {
	switch lit {
	case "":
		return 1, nil
	case "!":
		return s.dim - 1, nil
	}
	n, err := strconv.Atoi(lit)
	if err != nil || n < 0 || n >= s.dim {
		return 0, ErrInvalidPower
	}
	return n, nil
}

// SetPhase stores the phase exponent p reduced modulo d. Exponents the text
// form cannot express are rejected with ErrInvalidPhase.
func (s *String) SetPhase(p int) error {
	p = ((p % s.dim) + s.dim) % s.dim
	if _, ok := s.phaseDigit(p); !ok {
		return fmt.Errorf("SetPhase(%d): %w", p, ErrInvalidPhase)
	}
	s.phase = p
	return nil
}

// phaseDigit returns the w-prefix digit that parses back to exponent p.
func (s *String) phaseDigit(p int) (int, bool) {
	k := p
	if s.dim%2 == 0 {
		if p%2 != 0 {
			return 0, false
		}
		k = p / 2
	}
	return k, k <= 9
}

// PhaseFactor returns the scalar denoted by the phase exponent.
func (s *String) PhaseFactor() complex128 {
	angle := 2 * math.Pi * float64(s.phase) / float64(s.dim)
	if s.dim%2 == 0 {
		angle /= 2
	}
	return cmplx.Exp(complex(0, angle))
}

// IsIdentity reports whether every qudit carries the identity and the phase is zero.
func (s *String) IsIdentity() bool {
	return s.phase == 0 && s.Weight() == 0
}

// Weight returns the number of qudits with a non-identity term.
func (s *String) Weight() int {
	n := 0
	for _, t := range s.terms {
		if t.x != 0 || t.z != 0 {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (s *String) Clone() *String {
	terms := make([]term, len(s.terms))
	copy(terms, s.terms)
	return &String{dim: s.dim, phase: s.phase, terms: terms}
}

// Equal reports whether o has the same shape, powers and phase.
func (s *String) Equal(o *String) bool {
	if o == nil || s.dim != o.dim || s.phase != o.phase || len(s.terms) != len(o.terms) {
		return false
	}
	for i := range s.terms {
		if s.terms[i] != o.terms[i] {
			return false
		}
	}
	return true
}
