package gates_test

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"qudeck/gates"
)

const tol = 1e-9

// TestSingleQuditUnitarity covers every generator for 2 <= d <= 7.
func TestSingleQuditUnitarity(t *testing.T) {
	builders := map[string]func(int) (*mat.CDense, error){
		"I": gates.IdentityMatrix,
		"X": gates.XMatrix,
		"Z": gates.ZMatrix,
		"H": gates.HMatrix,
		"P": gates.PMatrix,
	}
	for d := 2; d <= 7; d++ {
		for name, build := range builders {
			u, err := build(d)
			require.NoError(t, err)
			r, c := u.Dims()
			require.Equal(t, d, r)
			require.Equal(t, d, c)
			assert.True(t, gates.IsUnitary(u, tol), "%s_%d", name, d)
		}
		for a := 1; a < d; a++ {
			u, err := gates.MMatrix(d, a)
			if gcd(a, d) != 1 {
				require.ErrorIs(t, err, gates.ErrNotCoprime)
				continue
			}
			require.NoError(t, err)
			assert.True(t, gates.IsUnitary(u, tol), "M_%d(%d)", d, a)
			assert.True(t, gates.IsPermutation(u), "M_%d(%d)", d, a)
		}
	}
}

// TestCNOTIsPermutation checks unitarity and the permutation structure.
func TestCNOTIsPermutation(t *testing.T) {
	for d := 2; d <= 7; d++ {
		u, err := gates.CNOTMatrix(d)
		require.NoError(t, err)
		r, c := u.Dims()
		require.Equal(t, d*d, r)
		require.Equal(t, d*d, c)
		assert.True(t, gates.IsUnitary(u, tol))
		assert.True(t, gates.IsPermutation(u))

		// |i, j> goes to |i, i+j mod d>.
		for i := range d {
			for j := range d {
				assert.Equal(t, complex(1, 0), u.At(d*i+(i+j)%d, d*i+j))
			}
		}
	}
}

func TestXShiftsBasis(t *testing.T) {
	u, err := gates.XMatrix(3)
	require.NoError(t, err)
	// Row i, column i-1: |0> -> |1>, |2> -> |0>.
	assert.Equal(t, complex(1, 0), u.At(1, 0))
	assert.Equal(t, complex(1, 0), u.At(0, 2))
	assert.Equal(t, complex(0, 0), u.At(0, 0))
}

func TestZRootsOfUnity(t *testing.T) {
	d := 5
	u, err := gates.ZMatrix(d)
	require.NoError(t, err)
	for j := range d {
		want := cmplx.Exp(complex(0, 2*math.Pi*float64(j)/float64(d)))
		assert.InDelta(t, 0, cmplx.Abs(u.At(j, j)-want), 1e-12)
	}
}

// TestHadamardIsFourierKernel compares with the direct τ formula.
func TestHadamardIsFourierKernel(t *testing.T) {
	for d := 2; d <= 7; d++ {
		u, err := gates.HMatrix(d)
		require.NoError(t, err)
		tau := gates.Tau(d)
		for m := range d {
			for n := range d {
				want := cmplx.Pow(tau, complex(float64(2*m*n), 0)) / complex(math.Sqrt(float64(d)), 0)
				assert.InDelta(t, 0, cmplx.Abs(u.At(m, n)-want), 1e-9, "d=%d (%d,%d)", d, m, n)
			}
		}
	}
}

func TestPhaseDiagonal(t *testing.T) {
	for d := 2; d <= 7; d++ {
		u, err := gates.PMatrix(d)
		require.NoError(t, err)
		tau := gates.Tau(d)
		for j := range d {
			want := cmplx.Pow(tau, complex(float64(j*j), 0))
			assert.InDelta(t, 0, cmplx.Abs(u.At(j, j)-want), 1e-9)
		}
	}
}

// TestCoprimality is the d=4 scenario.
func TestCoprimality(t *testing.T) {
	_, err := gates.MMatrix(4, 2)
	require.ErrorIs(t, err, gates.ErrNotCoprime)

	u, err := gates.MMatrix(4, 3)
	require.NoError(t, err)
	// 1 -> 3, 2 -> 2, 3 -> 1
	assert.Equal(t, complex(1, 0), u.At(3, 1))
	assert.Equal(t, complex(1, 0), u.At(2, 2))
	assert.Equal(t, complex(1, 0), u.At(1, 3))

	_, err = gates.NewM(4, 0)
	require.ErrorIs(t, err, gates.ErrNotCoprime)

	g, err := gates.NewM(5, -1)
	require.NoError(t, err)
	assert.Equal(t, 4, g.Multiplier())
}

func TestInvalidDimension(t *testing.T) {
	for _, build := range []func(int) (*mat.CDense, error){
		gates.IdentityMatrix, gates.XMatrix, gates.ZMatrix, gates.HMatrix, gates.PMatrix, gates.CNOTMatrix,
	} {
		_, err := build(1)
		require.ErrorIs(t, err, gates.ErrInvalidDimension)
	}
	_, err := gates.New(gates.H, 0)
	require.ErrorIs(t, err, gates.ErrInvalidDimension)
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name      string
		mult      []int
		wantKind  gates.Kind
		wantLabel string
		wantWires []string
		wantErr   error
	}{
		{name: "h", wantKind: gates.H, wantLabel: "H_3", wantWires: []string{"H_3"}},
		{name: "P", wantKind: gates.P, wantLabel: "P_3", wantWires: []string{"P_3"}},
		{name: "x", wantKind: gates.X, wantLabel: "X_3", wantWires: []string{"X_3"}},
		{name: "Z", wantKind: gates.Z, wantLabel: "Z_3", wantWires: []string{"Z_3"}},
		{name: "id", wantKind: gates.Identity, wantLabel: "I_3", wantWires: []string{"I_3"}},
		{name: "cx", wantKind: gates.CNOT, wantLabel: "CNOT_3", wantWires: []string{"CNOT_3_control", "CNOT_3_target"}},
		{name: "mul", mult: []int{2}, wantKind: gates.M, wantLabel: "M_3(2)", wantWires: []string{"M_3(2)"}},
		{name: "M", wantErr: gates.ErrMultiplierRequired},
		{name: "swap", wantErr: gates.ErrUnknownGate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := gates.Lookup(tt.name, 3, tt.mult...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, g.Kind())
			assert.Equal(t, tt.wantLabel, g.Label())
			assert.Equal(t, tt.wantWires, g.WireLabels())
			assert.Len(t, g.QidShape(), g.Arity())
		})
	}
}

// TestUnitaryIsReproducible checks copies are bit-identical and independent.
func TestUnitaryIsReproducible(t *testing.T) {
	g, err := gates.New(gates.H, 5)
	require.NoError(t, err)
	a := g.Unitary()
	b := g.Unitary()
	for i := range 5 {
		for j := range 5 {
			require.Equal(t, a.At(i, j), b.At(i, j))
		}
	}

	a.Set(0, 0, 42)
	assert.NotEqual(t, complex(42, 0), g.Unitary().At(0, 0))
}

func TestIsPermutationRejects(t *testing.T) {
	h, err := gates.HMatrix(2)
	require.NoError(t, err)
	assert.False(t, gates.IsPermutation(h))

	twoOnes := mat.NewCDense(2, 2, []complex128{1, 1, 0, 0})
	assert.False(t, gates.IsPermutation(twoOnes))
	assert.False(t, gates.IsUnitary(twoOnes, tol))
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
