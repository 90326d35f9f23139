package statevector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"

	"qudeck/circuit"
	"qudeck/pauli"
)

// certain is the probability above which a measurement outcome is
// reported as deterministic.
const certain = 1 - 1e-9

var ErrShapeMismatch = errors.New("statevector: shape differs from state")

// ApplyOp applies one circuit op. Measurements collapse the state using rng
// and return their record; unitary ops return nil.
func (s *State) ApplyOp(op circuit.Op, rng *rand.Rand) (*circuit.MeasurementResult, error) {
	if op.IsMeasurement() {
		res, err := s.Measure(op.Target, rng)
		if err != nil {
			return nil, err
		}
		return &res, nil
	}
	g, err := op.Resolve(s.Dimension)
	if err != nil {
		return nil, err
	}
	return nil, s.Apply(g, op.Qudits()...)
}

// Evolve runs the unitary part of c on |0...0>, skipping measurements.
// Ops after upToStep are ignored; a negative upToStep runs everything.
func Evolve(c *circuit.Circuit, upToStep int) (*State, error) {
	s, err := New(c.NumQudits, c.Dimension)
	if err != nil {
		return nil, err
	}
	for _, op := range c.Ordered() {
		if upToStep >= 0 && op.Step > upToStep {
			break
		}
		if op.IsMeasurement() {
			continue
		}
		if _, err := s.ApplyOp(op, nil); err != nil {
			return nil, fmt.Errorf("Evolve: step %d: %w", op.Step, err)
		}
	}
	return s, nil
}

// Measure samples qudit q in the computational basis and collapses the state
// onto the outcome.
func (s *State) Measure(q int, rng *rand.Rand) (circuit.MeasurementResult, error) {
	if q < 0 || q >= s.NumQudits {
		return circuit.MeasurementResult{}, fmt.Errorf("Measure(%d): %w", q, ErrOutOfRange)
	}
	probs := make([]float64, s.Dimension)
	for i, a := range s.Amplitudes {
		probs[s.digit(i, q)] += real(a * cmplx.Conj(a))
	}

	value, best := 0, probs[0]
	for v, p := range probs {
		if p > best {
			value, best = v, p
		}
	}
	deterministic := best >= certain
	if !deterministic {
		value = sample(probs, rng.Float64())
	}

	norm := complex(math.Sqrt(probs[value]), 0)
	for i := range s.Amplitudes {
		if s.digit(i, q) != value {
			s.Amplitudes[i] = 0
		} else {
			s.Amplitudes[i] /= norm
		}
	}
	return circuit.MeasurementResult{Qudit: q, Deterministic: deterministic, Value: value}, nil
}

// sample returns the index the cumulative distribution reaches at r.
func sample(probs []float64, r float64) int {
	var total float64
	for _, p := range probs {
		total += p
	}
	r *= total
	last := 0
	for v, p := range probs {
		if p == 0 {
			continue
		}
		last = v
		if r < p {
			return v
		}
		r -= p
	}
	return last
}

// Expectation returns <psi|P|psi> for a Pauli string on the same qudits.
func (s *State) Expectation(p *pauli.String) (complex128, error) {
	if p.NumQudits() != s.NumQudits || p.Dimension() != s.Dimension {
		return 0, fmt.Errorf("Expectation(%s): %w", p, ErrShapeMismatch)
	}
	d := s.Dimension

	// X^x Z^z |j> = omega^(z.j) |j+x>
	var acc complex128
	for j, a := range s.Amplitudes {
		if a == 0 {
			continue
		}
		image, zdot := 0, 0
		for q := range s.NumQudits {
			v := s.digit(j, q)
			image = image*d + (v+p.X(q))%d
			zdot += p.Z(q) * v
		}
		root := cmplx.Exp(complex(0, 2*math.Pi*float64(zdot%d)/float64(d)))
		acc += cmplx.Conj(s.Amplitudes[image]) * root * a
	}
	return p.PhaseFactor() * acc, nil
}

// Engine samples circuits by full state-vector simulation.
type Engine struct{}

// Run executes c once from |0...0> and returns the measurement records in
// execution order.
func (Engine) Run(ctx context.Context, c *circuit.Circuit, rng *rand.Rand) ([]circuit.MeasurementResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := New(c.NumQudits, c.Dimension)
	if err != nil {
		return nil, err
	}
	var results []circuit.MeasurementResult
	for _, op := range c.Ordered() {
		res, err := s.ApplyOp(op, rng)
		if err != nil {
			return nil, fmt.Errorf("Run: step %d: %w", op.Step, err)
		}
		if res != nil {
			results = append(results, *res)
		}
	}
	return results, nil
}
