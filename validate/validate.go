// Package validate checks a circuit sampler against the exact state-vector
// distribution. A Runner draws repeated samples concurrently, folds the
// measurement records into an empirical distribution over the measured
// qudits and reports its total variation distance from the exact one.
package validate

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"qudeck/circuit"
	"qudeck/statevector"
)

// Defaults used when Runner fields are left zero.
const (
	DefaultSamples   = 1000
	DefaultThreshold = 0.20
	DefaultCutoff    = 1e-13
)

var (
	ErrMidCircuitMeasurement = errors.New("validate: measurement before a later gate on the same qudit")
	ErrLengthMismatch        = errors.New("validate: distributions differ in length")
	ErrSampleShape           = errors.New("validate: sample does not match measured qudits")
	ErrNoSampler             = errors.New("validate: no sampler")
	ErrUnknownScenario       = errors.New("validate: unknown scenario")
)

// Sampler runs a circuit once from |0...0> and returns its measurement
// records.
type Sampler interface {
	Run(ctx context.Context, c *circuit.Circuit, rng *rand.Rand) ([]circuit.MeasurementResult, error)
}

// measuredOrAll returns c with a terminal measurement on every qudit when
// c measures nothing, together with the measured qudits.
func measuredOrAll(c *circuit.Circuit) (*circuit.Circuit, []int) {
	if m := c.Measured(); len(m) > 0 {
		return c, m
	}
	full := c.Clone()
	for q := range full.NumQudits {
		// AddGate cannot fail for an in-range measurement
		_ = full.AddGate(circuit.Measure, q)
	}
	return full, full.Measured()
}

// ExactDistribution returns the outcome distribution over the measured
// qudits of c (every qudit when none are measured), indexed by
// circuit.Key. Basis probabilities below cutoff are dropped first.
func ExactDistribution(c *circuit.Circuit, cutoff float64) ([]float64, error) {
	_, measured := measuredOrAll(c)
	s, err := statevector.Evolve(c, -1)
	if err != nil {
		return nil, err
	}
	d := c.Dimension
	size := 1
	for range measured {
		size *= d
	}
	dist := make([]float64, size)
	for i, p := range s.Probabilities() {
		if p < cutoff {
			continue
		}
		digits := circuit.DigitsOf(i, c.NumQudits, d)
		key := 0
		for _, q := range measured {
			key = key*d + digits[q]
		}
		dist[key] += p
	}
	return dist, nil
}

// TotalVariationDistance returns ½·Σ|p−q|.
func TotalVariationDistance(p, q []float64) (float64, error) {
	if len(p) != len(q) {
		return 0, fmt.Errorf("TotalVariationDistance(%d,%d): %w", len(p), len(q), ErrLengthMismatch)
	}
	return floats.Distance(p, q, 1) / 2, nil
}

// Runner samples a circuit repeatedly and compares the result against the
// exact distribution.
type Runner struct {
	Sampler   Sampler
	Samples   int
	Workers   int
	Seed      uint64
	Threshold float64
	Cutoff    float64
	Log       zerolog.Logger
}

// Run validates c. Sample i draws from a PCG seeded with (Seed, i), so the
// report does not depend on Workers.
func (r *Runner) Run(ctx context.Context, c *circuit.Circuit) (*Report, error) {
	if r.Sampler == nil {
		return nil, ErrNoSampler
	}
	if c.HasMidCircuitMeasurement() {
		return nil, ErrMidCircuitMeasurement
	}
	samples := cmp.Or(r.Samples, DefaultSamples)
	workers := max(1, min(r.Workers, samples))
	threshold := cmp.Or(r.Threshold, DefaultThreshold)
	cutoff := cmp.Or(r.Cutoff, DefaultCutoff)

	start := time.Now()
	runID := uuid.New().String()
	log := r.Log.With().Str("run_id", runID).Logger()

	c, measured := measuredOrAll(c)
	exact, err := ExactDistribution(c, cutoff)
	if err != nil {
		return nil, err
	}
	log.Info().
		Int("qudits", c.NumQudits).
		Int("dimension", c.Dimension).
		Ints("measured", measured).
		Int("samples", samples).
		Int("workers", workers).
		Msg("validation started")

	counts, err := r.sample(ctx, c, len(exact), samples, workers, log)
	if err != nil {
		log.Error().Err(err).Msg("sampling failed")
		return nil, err
	}
	empirical := make([]float64, len(counts))
	copy(empirical, counts)
	floats.Scale(1/float64(samples), empirical)

	tvd, err := TotalVariationDistance(exact, empirical)
	if err != nil {
		return nil, err
	}
	report := &Report{
		RunID:     runID,
		Dimension: c.Dimension,
		Measured:  measured,
		Samples:   samples,
		Exact:     exact,
		Empirical: empirical,
		TVD:       tvd,
		Threshold: threshold,
		Passed:    tvd < threshold,
		Elapsed:   time.Since(start),
	}
	log.Info().
		Float64("tvd", tvd).
		Float64("threshold", threshold).
		Bool("passed", report.Passed).
		Dur("elapsed", report.Elapsed).
		Msg("validation finished")
	return report, nil
}

// sample runs the sampler samples times across workers and returns outcome
// counts indexed by key.
func (r *Runner) sample(ctx context.Context, c *circuit.Circuit, size, samples, workers int, log zerolog.Logger) ([]float64, error) {
	counts := make([]float64, size)
	width := len(c.Measured())
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for w := range workers {
		g.Go(func() error {
			local := make([]float64, size)
			n := 0
			for i := w; i < samples; i += workers {
				rng := rand.New(rand.NewPCG(r.Seed, uint64(i)))
				results, err := r.Sampler.Run(ctx, c, rng)
				if err != nil {
					return fmt.Errorf("sample %d: %w", i, err)
				}
				if len(results) != width {
					return fmt.Errorf("sample %d: %d records: %w", i, len(results), ErrSampleShape)
				}
				key := circuit.Key(results, c.Dimension)
				if key < 0 || key >= size {
					return fmt.Errorf("sample %d: key %d: %w", i, key, ErrSampleShape)
				}
				local[key]++
				n++
			}
			mu.Lock()
			floats.Add(counts, local)
			mu.Unlock()
			log.Debug().Int("worker", w).Int("samples", n).Msg("worker done")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}

// Report is the outcome of one validation run.
type Report struct {
	RunID     string
	Dimension int
	Measured  []int
	Samples   int
	Exact     []float64
	Empirical []float64
	TVD       float64
	Threshold float64
	Passed    bool
	Elapsed   time.Duration
}

// Outcome is one measured outcome with both probabilities.
type Outcome struct {
	Key       int
	Label     string
	Exact     float64
	Empirical float64
}

// Top returns the n outcomes with the highest exact probability, ties broken
// by empirical probability then key. Outcomes never seen and impossible are
// left out.
func (r *Report) Top(n int) []Outcome {
	var out []Outcome
	for k := range r.Exact {
		if r.Exact[k] == 0 && r.Empirical[k] == 0 {
			continue
		}
		out = append(out, Outcome{
			Key:       k,
			Label:     circuit.KeyLabel(k, len(r.Measured), r.Dimension),
			Exact:     r.Exact[k],
			Empirical: r.Empirical[k],
		})
	}
	slices.SortStableFunc(out, func(a, b Outcome) int {
		if c := cmp.Compare(b.Exact, a.Exact); c != 0 {
			return c
		}
		return cmp.Compare(b.Empirical, a.Empirical)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
