package validate_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qudeck/circuit"
	"qudeck/statevector"
	"qudeck/validate"
)

func newRunner(s validate.Sampler) *validate.Runner {
	return &validate.Runner{
		Sampler: s,
		Samples: 600,
		Workers: 4,
		Seed:    42,
		Log:     zerolog.Nop(),
	}
}

func TestScenariosDeterministic(t *testing.T) {
	for d := 2; d <= 5; d++ {
		scenarios, err := validate.Scenarios(d)
		require.NoError(t, err)
		require.NotEmpty(t, scenarios)

		rng := rand.New(rand.NewPCG(uint64(d), 3))
		for _, sc := range scenarios {
			t.Run(sc.Name, func(t *testing.T) {
				results, err := statevector.Engine{}.Run(context.Background(), sc.Circuit, rng)
				require.NoError(t, err)
				if sc.Expect == nil {
					return
				}
				assert.ElementsMatch(t, sc.Expect, results, "d=%d", d)
			})
		}
	}
}

func TestExactDistribution(t *testing.T) {
	sc, err := validate.Lookup("ghz", 3)
	require.NoError(t, err)

	exact, err := validate.ExactDistribution(sc.Circuit, validate.DefaultCutoff)
	require.NoError(t, err)
	require.Len(t, exact, 27)
	for _, k := range []int{0, 13, 26} {
		assert.InDelta(t, 1.0/3, exact[k], 1e-9)
	}
	assert.InDelta(t, 0, exact[1], 1e-12)
}

// TestExactDistributionMarginal checks unmeasured qudits are summed out.
func TestExactDistributionMarginal(t *testing.T) {
	c, err := circuit.New(2, 3)
	require.NoError(t, err)
	require.NoError(t, c.AddGate("H", 0))
	require.NoError(t, c.AddGate("X", 1))
	require.NoError(t, c.AddGate("M", 1))

	exact, err := validate.ExactDistribution(c, 0)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 1, 0}, exact, 1e-9)

	// no measurement: every qudit
	bare, err := circuit.New(2, 3)
	require.NoError(t, err)
	require.NoError(t, bare.AddGate("X", 0))
	exact, err = validate.ExactDistribution(bare, 0)
	require.NoError(t, err)
	require.Len(t, exact, 9)
	assert.InDelta(t, 1, exact[3], 1e-9)
}

func TestTotalVariationDistance(t *testing.T) {
	tvd, err := validate.TotalVariationDistance([]float64{0.5, 0.5, 0}, []float64{0, 0.5, 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, tvd, 1e-12)

	tvd, err = validate.TotalVariationDistance([]float64{0.2, 0.8}, []float64{0.2, 0.8})
	require.NoError(t, err)
	assert.Zero(t, tvd)

	_, err = validate.TotalVariationDistance([]float64{1}, []float64{0.5, 0.5})
	require.ErrorIs(t, err, validate.ErrLengthMismatch)
}

func TestRunnerPassesForEngine(t *testing.T) {
	for _, d := range []int{2, 3, 5} {
		sc, err := validate.Lookup("ghz", d)
		require.NoError(t, err)

		report, err := newRunner(statevector.Engine{}).Run(context.Background(), sc.Circuit)
		require.NoError(t, err)
		assert.True(t, report.Passed, "d=%d tvd=%f", d, report.TVD)
		assert.Less(t, report.TVD, 0.1)
		assert.Equal(t, []int{0, 1, 2}, report.Measured)
		assert.Equal(t, 600, report.Samples)
		assert.NotEmpty(t, report.RunID)

		top := report.Top(d)
		require.Len(t, top, d)
		for _, o := range top {
			assert.InDelta(t, 1/float64(d), o.Exact, 1e-9)
		}
	}
}

func TestRunnerIsReproducible(t *testing.T) {
	sc, err := validate.Lookup("ghz", 3)
	require.NoError(t, err)

	r := newRunner(statevector.Engine{})
	first, err := r.Run(context.Background(), sc.Circuit)
	require.NoError(t, err)

	r.Workers = 1
	second, err := r.Run(context.Background(), sc.Circuit)
	require.NoError(t, err)
	assert.Equal(t, first.Empirical, second.Empirical)
	assert.NotEqual(t, first.RunID, second.RunID)
}

// biased always reports zero regardless of the circuit.
type biased struct{}

func (biased) Run(_ context.Context, c *circuit.Circuit, _ *rand.Rand) ([]circuit.MeasurementResult, error) {
	var out []circuit.MeasurementResult
	for _, q := range c.Measured() {
		out = append(out, circuit.MeasurementResult{Qudit: q})
	}
	return out, nil
}

func TestRunnerFailsForBiasedSampler(t *testing.T) {
	sc, err := validate.Lookup("ghz", 3)
	require.NoError(t, err)

	report, err := newRunner(biased{}).Run(context.Background(), sc.Circuit)
	require.NoError(t, err)
	assert.False(t, report.Passed)
	assert.InDelta(t, 2.0/3, report.TVD, 1e-9)
}

type failing struct{}

var errBoom = errors.New("boom")

func (failing) Run(context.Context, *circuit.Circuit, *rand.Rand) ([]circuit.MeasurementResult, error) {
	return nil, errBoom
}

// short drops every measurement record.
type short struct{}

func (short) Run(context.Context, *circuit.Circuit, *rand.Rand) ([]circuit.MeasurementResult, error) {
	return nil, nil
}

func TestRunnerErrors(t *testing.T) {
	sc, err := validate.Lookup("ghz", 3)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = newRunner(failing{}).Run(ctx, sc.Circuit)
	require.ErrorIs(t, err, errBoom)

	_, err = newRunner(short{}).Run(ctx, sc.Circuit)
	require.ErrorIs(t, err, validate.ErrSampleShape)

	_, err = newRunner(nil).Run(ctx, sc.Circuit)
	require.ErrorIs(t, err, validate.ErrNoSampler)

	mid, err := circuit.New(2, 3)
	require.NoError(t, err)
	require.NoError(t, mid.AddGate("H", 0))
	require.NoError(t, mid.AddGate("M", 0))
	require.NoError(t, mid.AddGate("CNOT", 0, 1))
	_, err = newRunner(statevector.Engine{}).Run(ctx, mid)
	require.ErrorIs(t, err, validate.ErrMidCircuitMeasurement)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = newRunner(statevector.Engine{}).Run(cancelled, sc.Circuit)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunnerMeasuresAllWhenUnmeasured(t *testing.T) {
	c, err := circuit.New(2, 2)
	require.NoError(t, err)
	require.NoError(t, c.AddGate("X", 1))

	report, err := newRunner(statevector.Engine{}).Run(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, report.Measured)
	assert.InDelta(t, 1, report.Empirical[1], 1e-12)
	assert.Zero(t, report.TVD)
	assert.Empty(t, c.Measured(), "input circuit is untouched")
}

func TestLookupUnknown(t *testing.T) {
	_, err := validate.Lookup("teleport", 3)
	require.ErrorIs(t, err, validate.ErrUnknownScenario)
}
