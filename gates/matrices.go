package gates

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// Tau returns τ = exp(iπ(d²+1)/d).
func Tau(d int) complex128 {
	return tauPow(d, 1)
}

// tauPow returns τ^k. The exponent of exp(iπ/d) is reduced mod 2d first.
func tauPow(d, k int) complex128 {
	e := (k % (2 * d)) * ((d*d + 1) % (2 * d)) % (2 * d)
	if e < 0 {
		e += 2 * d
	}
	return cmplx.Exp(complex(0, math.Pi*float64(e)/float64(d)))
}

// omegaPow returns exp(2πi·k/d) with k reduced mod d.
func omegaPow(d, k int) complex128 {
	e := ((k % d) + d) % d
	return cmplx.Exp(complex(0, 2*math.Pi*float64(e)/float64(d)))
}

func checkDim(d int) error {
	if d < 2 {
		return ErrInvalidDimension
	}
	return nil
}

// IdentityMatrix returns the d×d identity.
func IdentityMatrix(d int) (*mat.CDense, error) {
	if err := checkDim(d); err != nil {
		return nil, err
	}
	return identity(d), nil
}

func identity(d int) *mat.CDense {
	m := mat.NewCDense(d, d, nil)
	for i := range d {
		m.Set(i, i, 1)
	}
	return m
}

// XMatrix returns the shift with row i, column (i-1) mod d set to 1.
func XMatrix(d int) (*mat.CDense, error) {
	if err := checkDim(d); err != nil {
		return nil, err
	}
	return shift(d), nil
}

func shift(d int) *mat.CDense {
	m := mat.NewCDense(d, d, nil)
	for i := range d {
		m.Set(i, (i-1+d)%d, 1)
	}
	return m
}

// ZMatrix returns diag(exp(2πi·j/d)).
func ZMatrix(d int) (*mat.CDense, error) {
	if err := checkDim(d); err != nil {
		return nil, err
	}
	return clock(d), nil
}

func clock(d int) *mat.CDense {
	m := mat.NewCDense(d, d, nil)
	for j := range d {
		m.Set(j, j, omegaPow(d, j))
	}
	return m
}

// HMatrix returns the generalized Hadamard d^(-1/2) τ^(2mn).
func HMatrix(d int) (*mat.CDense, error) {
	if err := checkDim(d); err != nil {
		return nil, err
	}
	return hadamard(d), nil
}

func hadamard(d int) *mat.CDense {
	norm := complex(1/math.Sqrt(float64(d)), 0)
	m := mat.NewCDense(d, d, nil)
	for r := range d {
		for c := range d {
			m.Set(r, c, norm*tauPow(d, 2*r*c))
		}
	}
	return m
}

// PMatrix returns the generalized phase gate diag(τ^(j²)).
func PMatrix(d int) (*mat.CDense, error) {
	if err := checkDim(d); err != nil {
		return nil, err
	}
	return phase(d), nil
}

func phase(d int) *mat.CDense {
	m := mat.NewCDense(d, d, nil)
	for j := range d {
		m.Set(j, j, tauPow(d, j*j))
	}
	return m
}

// MMatrix returns the permutation sending |q> to |a·q mod d>.
func MMatrix(d, a int) (*mat.CDense, error) {
	if err := checkDim(d); err != nil {
		return nil, err
	}
	a, err := normalizeMultiplier(d, a)
	if err != nil {
		return nil, err
	}
	return multiply(d, a), nil
}

func multiply(d, a int) *mat.CDense {
	m := mat.NewCDense(d, d, nil)
	for q := range d {
		m.Set(a*q%d, q, 1)
	}
	return m
}

// normalizeMultiplier reduces a into [0, d) and checks it is a unit mod d.
func normalizeMultiplier(d, a int) (int, error) {
	a = ((a % d) + d) % d
	if gcd(a, d) != 1 {
		return 0, ErrNotCoprime
	}
	return a, nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// CNOTMatrix returns the d²×d² controlled shift on (control, target). The
// row construction C[d·i+j][d·i+(i+j) mod d] = 1 is transposed so that
// columns are inputs and rows are outputs.
func CNOTMatrix(d int) (*mat.CDense, error) {
	if err := checkDim(d); err != nil {
		return nil, err
	}
	return cnot(d), nil
}

func cnot(d int) *mat.CDense {
	n := d * d
	m := mat.NewCDense(n, n, nil)
	for i := range d {
		for j := range d {
			// transpose of row d*i+j, column d*i+(i+j)%d
			m.Set(d*i+(i+j)%d, d*i+j, 1)
		}
	}
	return m
}

// IsUnitary reports whether m†m equals the identity within tol per entry.
func IsUnitary(m mat.CMatrix, tol float64) bool {
	r, c := m.Dims()
	if r != c {
		return false
	}
	for i := range c {
		for j := range c {
			var sum complex128
			for k := range r {
				sum += cmplx.Conj(m.At(k, i)) * m.At(k, j)
			}
			want := complex(0, 0)
			if i == j {
				want = 1
			}
			if cmplx.Abs(sum-want) > tol {
				return false
			}
		}
	}
	return true
}

// IsPermutation reports whether every entry of m is exactly 0 or 1 with a
// single 1 in each row and each column.
func IsPermutation(m mat.CMatrix) bool {
	r, c := m.Dims()
	if r != c {
		return false
	}
	colOnes := make([]int, c)
	for i := range r {
		rowOnes := 0
		for j := range c {
			switch m.At(i, j) {
			case 0:
			case 1:
				rowOnes++
				colOnes[j]++
			default:
				return false
			}
		}
		if rowOnes != 1 {
			return false
		}
	}
	for _, n := range colOnes {
		if n != 1 {
			return false
		}
	}
	return true
}
