package statevector_test

import (
	"context"
	"math"
	"math/cmplx"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qudeck/circuit"
	"qudeck/gates"
	"qudeck/pauli"
	"qudeck/statevector"
)

const tol = 1e-9

func gate(t *testing.T, name string, d int) gates.Gate {
	t.Helper()
	g, err := gates.Lookup(name, d)
	require.NoError(t, err)
	return g
}

func TestNewState(t *testing.T) {
	s, err := statevector.New(2, 3)
	require.NoError(t, err)
	assert.Len(t, s.Amplitudes, 9)
	assert.Equal(t, complex(1, 0), s.Amplitudes[0])

	_, err = statevector.New(0, 3)
	require.ErrorIs(t, err, statevector.ErrInvalidShape)
	_, err = statevector.New(40, 3)
	require.ErrorIs(t, err, statevector.ErrTooLarge)
}

// TestShiftIsBigEndian checks qudit 0 is the most significant digit.
func TestShiftIsBigEndian(t *testing.T) {
	s, err := statevector.New(2, 3)
	require.NoError(t, err)
	require.NoError(t, s.Apply(gate(t, "X", 3), 0))
	assert.InDelta(t, 1, real(s.Amplitudes[3]), tol)

	require.NoError(t, s.Apply(gate(t, "X", 3), 1))
	require.NoError(t, s.Apply(gate(t, "X", 3), 1))
	assert.InDelta(t, 1, real(s.Amplitudes[5]), tol)

	require.NoError(t, s.Apply(gate(t, "X", 3), 1))
	assert.InDelta(t, 1, real(s.Amplitudes[3]), tol, "X^3 is the identity")
}

func TestHadamardUniform(t *testing.T) {
	for d := 2; d <= 6; d++ {
		s, err := statevector.New(1, d)
		require.NoError(t, err)
		require.NoError(t, s.Apply(gate(t, "H", d), 0))
		for i, p := range s.Probabilities() {
			assert.InDelta(t, 1/float64(d), p, tol, "d=%d |%d>", d, i)
		}
	}
}

func TestCNOTAddsControl(t *testing.T) {
	s, err := statevector.New(2, 3)
	require.NoError(t, err)
	require.NoError(t, s.Apply(gate(t, "X", 3), 0))
	require.NoError(t, s.Apply(gate(t, "X", 3), 0))
	require.NoError(t, s.Apply(gate(t, "X", 3), 1))
	// |2,1> -> |2,0>
	require.NoError(t, s.Apply(gate(t, "CNOT", 3), 0, 1))
	assert.InDelta(t, 1, real(s.Amplitudes[6]), tol)

	// control below target
	require.NoError(t, s.Apply(gate(t, "CNOT", 3), 1, 0))
	assert.InDelta(t, 1, real(s.Amplitudes[6]), tol)
}

func TestApplyErrors(t *testing.T) {
	s, err := statevector.New(2, 3)
	require.NoError(t, err)
	require.ErrorIs(t, s.Apply(gate(t, "H", 5), 0), statevector.ErrDimensionMismatch)
	require.ErrorIs(t, s.Apply(gate(t, "CNOT", 3), 0), statevector.ErrArity)
	require.ErrorIs(t, s.Apply(gate(t, "CNOT", 3), 1, 1), statevector.ErrOutOfRange)
	require.ErrorIs(t, s.Apply(gate(t, "H", 3), 2), statevector.ErrOutOfRange)
}

// TestEvolveKeepsNorm runs every gate kind in sequence.
func TestEvolveKeepsNorm(t *testing.T) {
	for d := 2; d <= 5; d++ {
		c, err := circuit.New(3, d)
		require.NoError(t, err)
		require.NoError(t, c.AddGate("H", 0))
		require.NoError(t, c.AddGate("P", 0))
		require.NoError(t, c.AddGate("CNOT", 0, 2))
		require.NoError(t, c.AddGate("H", 1))
		require.NoError(t, c.AddGate("Z", 1))
		require.NoError(t, c.AddMultiplier(d-1, 2))
		require.NoError(t, c.AddGate("CNOT", 2, 1))
		require.NoError(t, c.AddGate("MEASURE", 1))

		s, err := statevector.Evolve(c, -1)
		require.NoError(t, err)
		assert.InDelta(t, 1, s.Norm(), tol, "d=%d", d)
	}
}

func TestEvolveUpToStep(t *testing.T) {
	c, err := circuit.New(1, 3)
	require.NoError(t, err)
	require.NoError(t, c.AddGate("X", 0))
	require.NoError(t, c.AddGate("X", 0))

	s, err := statevector.Evolve(c, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1, real(s.Amplitudes[1]), tol)
}

func TestQuditProbabilities(t *testing.T) {
	s, err := statevector.New(2, 3)
	require.NoError(t, err)
	require.NoError(t, s.Apply(gate(t, "H", 3), 0))
	require.NoError(t, s.Apply(gate(t, "X", 3), 1))

	probs := s.QuditProbabilities()
	require.Len(t, probs, 2)
	for _, p := range probs[0] {
		assert.InDelta(t, 1.0/3, p, tol)
	}
	assert.InDeltaSlice(t, []float64{0, 1, 0}, probs[1], tol)

	basis := s.Basis(1e-12)
	require.Len(t, basis, 3)
	assert.Equal(t, "|01>", basis[0].Label)
	assert.Equal(t, "|21>", basis[2].Label)
	assert.Equal(t, 2, basis[2].Weight)
}

func TestMeasureDeterministic(t *testing.T) {
	s, err := statevector.New(2, 3)
	require.NoError(t, err)
	require.NoError(t, s.Apply(gate(t, "X", 3), 1))

	res, err := s.Measure(1, nil)
	require.NoError(t, err)
	assert.Equal(t, circuit.MeasurementResult{Qudit: 1, Deterministic: true, Value: 1}, res)

	_, err = s.Measure(2, nil)
	require.ErrorIs(t, err, statevector.ErrOutOfRange)
}

func TestMeasureCollapses(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	seen := map[int]bool{}
	for range 60 {
		s, err := statevector.New(2, 3)
		require.NoError(t, err)
		require.NoError(t, s.Apply(gate(t, "H", 3), 0))
		require.NoError(t, s.Apply(gate(t, "CNOT", 3), 0, 1))

		first, err := s.Measure(0, rng)
		require.NoError(t, err)
		assert.False(t, first.Deterministic)
		assert.InDelta(t, 1, s.Norm(), tol)
		seen[first.Value] = true

		// entangled partner is now fixed
		second, err := s.Measure(1, rng)
		require.NoError(t, err)
		assert.True(t, second.Deterministic)
		assert.Equal(t, first.Value, second.Value)
	}
	assert.Len(t, seen, 3, "every outcome appears")
}

func TestExpectation(t *testing.T) {
	s, err := statevector.New(1, 3)
	require.NoError(t, err)

	z, err := pauli.Parse("(Z)", 1, 3)
	require.NoError(t, err)
	x, err := pauli.Parse("(X)", 1, 3)
	require.NoError(t, err)

	got, err := s.Expectation(z)
	require.NoError(t, err)
	assert.InDelta(t, 0, cmplx.Abs(got-1), tol)

	got, err = s.Expectation(x)
	require.NoError(t, err)
	assert.InDelta(t, 0, cmplx.Abs(got), tol)

	// Fourier state is the +1 eigenstate of X
	require.NoError(t, s.Apply(gate(t, "H", 3), 0))
	got, err = s.Expectation(x)
	require.NoError(t, err)
	assert.InDelta(t, 0, cmplx.Abs(got-1), tol)

	// Z on |1> picks up omega
	s1, err := statevector.New(1, 3)
	require.NoError(t, err)
	require.NoError(t, s1.Apply(gate(t, "X", 3), 0))
	got, err = s1.Expectation(z)
	require.NoError(t, err)
	omega := cmplx.Exp(complex(0, 2*math.Pi/3))
	assert.InDelta(t, 0, cmplx.Abs(got-omega), tol)

	wide, err := pauli.New(2, 3)
	require.NoError(t, err)
	_, err = s.Expectation(wide)
	require.ErrorIs(t, err, statevector.ErrShapeMismatch)
}

func TestEngineRunGHZ(t *testing.T) {
	c, err := circuit.New(3, 3)
	require.NoError(t, err)
	require.NoError(t, c.AddGate("H", 0))
	require.NoError(t, c.AddGate("CNOT", 0, 1))
	require.NoError(t, c.AddGate("CNOT", 1, 2))
	for q := range 3 {
		require.NoError(t, c.AddGate("MEASURE", q))
	}

	rng := rand.New(rand.NewPCG(1, 2))
	var engine statevector.Engine
	for range 20 {
		results, err := engine.Run(context.Background(), c, rng)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, results[0].Value, results[1].Value)
		assert.Equal(t, results[0].Value, results[2].Value)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = engine.Run(ctx, c, rng)
	require.ErrorIs(t, err, context.Canceled)
}
