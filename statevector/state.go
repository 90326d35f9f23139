// Package statevector evolves dense qudit states through circuits built from
// the gates package. It is the exact reference the validation driver samples
// against, and it also implements the sampling contract itself.
//
// Basis index digits are big-endian: qudit 0 is the most significant digit.
// A k-qudit gate matrix is indexed the same way over its own legs.
package statevector

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"qudeck/circuit"
	"qudeck/gates"
)

// MaxAmplitudes bounds d^n for a single state.
const MaxAmplitudes = 1 << 22

var (
	ErrTooLarge          = errors.New("statevector: state too large")
	ErrOutOfRange        = errors.New("statevector: qudit index out of range")
	ErrArity             = errors.New("statevector: wrong number of qudits for gate")
	ErrDimensionMismatch = errors.New("statevector: gate dimension differs from state")
	ErrInvalidShape      = errors.New("statevector: invalid qudit count or dimension")
)

type State struct {
	Amplitudes []complex128
	NumQudits  int
	Dimension  int
}

// New returns |0...0> on n qudits of dimension d.
func New(n, d int) (*State, error) {
	if n < 1 || d < 2 {
		return nil, fmt.Errorf("New(%d,%d): %w", n, d, ErrInvalidShape)
	}
	size := 1
	for range n {
		size *= d
		if size > MaxAmplitudes {
			return nil, fmt.Errorf("New(%d,%d): %w", n, d, ErrTooLarge)
		}
	}
	amps := make([]complex128, size)
	amps[0] = 1
	return &State{Amplitudes: amps, NumQudits: n, Dimension: d}, nil
}

func (s *State) Clone() *State {
	amps := make([]complex128, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	return &State{Amplitudes: amps, NumQudits: s.NumQudits, Dimension: s.Dimension}
}

// stride returns the basis-index weight of qudit q.
func (s *State) stride(q int) int {
	st := 1
	for range s.NumQudits - 1 - q {
		st *= s.Dimension
	}
	return st
}

// digit returns the value of qudit q in basis index idx.
func (s *State) digit(idx, q int) int {
	return idx / s.stride(q) % s.Dimension
}

// Apply applies g to the given qudits, first qudit on the most significant leg.
func (s *State) Apply(g gates.Gate, qudits ...int) error {
	if g.Dimension() != s.Dimension {
		return fmt.Errorf("Apply(%s): %w", g, ErrDimensionMismatch)
	}
	if len(qudits) != g.Arity() {
		return fmt.Errorf("Apply(%s, %v): %w", g, qudits, ErrArity)
	}
	seen := make(map[int]bool, len(qudits))
	for _, q := range qudits {
		if q < 0 || q >= s.NumQudits || seen[q] {
			return fmt.Errorf("Apply(%s, %v): %w", g, qudits, ErrOutOfRange)
		}
		seen[q] = true
	}
	s.applyMatrix(g.Unitary(), qudits)
	return nil
}

// applyMatrix multiplies u into the legs named by qudits.
func (s *State) applyMatrix(u mat.CMatrix, qudits []int) {
	d := s.Dimension
	sub, _ := u.Dims()

	// offsets[j] is the basis offset of sub-index j spread over the legs.
	strides := make([]int, len(qudits))
	for i, q := range qudits {
		strides[i] = s.stride(q)
	}
	offsets := make([]int, sub)
	for j := range sub {
		rem := j
		for i := len(qudits) - 1; i >= 0; i-- {
			offsets[j] += (rem % d) * strides[i]
			rem /= d
		}
	}

	rows := make([][]complex128, sub)
	for r := range sub {
		rows[r] = make([]complex128, sub)
		for c := range sub {
			rows[r][c] = u.At(r, c)
		}
	}

	in := make([]complex128, sub)
	out := make([]complex128, len(s.Amplitudes))
	for base := range s.Amplitudes {
		if !s.legsZero(base, strides) {
			continue
		}
		for j := range sub {
			in[j] = s.Amplitudes[base+offsets[j]]
		}
		for r := range sub {
			var acc complex128
			for c, v := range in {
				if v != 0 {
					acc += rows[r][c] * v
				}
			}
			out[base+offsets[r]] = acc
		}
	}
	s.Amplitudes = out
}

func (s *State) legsZero(idx int, strides []int) bool {
	for _, st := range strides {
		if idx/st%s.Dimension != 0 {
			return false
		}
	}
	return true
}

// Probabilities returns |amplitude|² for every basis state.
func (s *State) Probabilities() []float64 {
	probs := make([]float64, len(s.Amplitudes))
	for i, a := range s.Amplitudes {
		probs[i] = real(a * cmplx.Conj(a))
	}
	return probs
}

// QuditProbabilities returns, for every qudit, the marginal distribution of
// its value.
func (s *State) QuditProbabilities() [][]float64 {
	out := make([][]float64, s.NumQudits)
	for q := range out {
		out[q] = make([]float64, s.Dimension)
	}
	for i, p := range s.Probabilities() {
		for q := range s.NumQudits {
			out[q][s.digit(i, q)] += p
		}
	}
	return out
}

// Norm returns the 2-norm of the amplitude vector.
func (s *State) Norm() float64 {
	var sum float64
	for _, p := range s.Probabilities() {
		sum += p
	}
	return math.Sqrt(sum)
}

// BasisState is one non-negligible basis component.
type BasisState struct {
	Index     int
	Label     string
	Amplitude complex128
	Prob      float64
	Phase     float64
	Weight    int // non-zero digits
}

// Basis returns the basis components with probability above cutoff, in
// index order.
func (s *State) Basis(cutoff float64) []BasisState {
	var out []BasisState
	for i, a := range s.Amplitudes {
		p := real(a * cmplx.Conj(a))
		if p <= cutoff {
			continue
		}
		out = append(out, BasisState{
			Index:     i,
			Label:     circuit.KeyLabel(i, s.NumQudits, s.Dimension),
			Amplitude: a,
			Prob:      p,
			Phase:     cmplx.Phase(a),
			Weight:    s.weight(i),
		})
	}
	return out
}

func (s *State) weight(idx int) int {
	w := 0
	for ; idx > 0; idx /= s.Dimension {
		if idx%s.Dimension != 0 {
			w++
		}
	}
	return w
}
