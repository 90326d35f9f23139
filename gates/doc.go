// Package gates generates the exact unitaries of the generalized Clifford gate
// set on qudits of dimension d.
//
// What:
//
//	I_d      identity
//	X_d      cyclic shift |j> -> |j+1 mod d>
//	Z_d      diag(ω^j), ω = exp(2πi/d)
//	H_d      H[m][n] = d^(-1/2) τ^(2mn)
//	P_d      diag(τ^(j²))
//	M_d(a)   |q> -> |a·q mod d>, requires gcd(a, d) = 1
//	CNOT_d   |i, j> -> |i, i+j mod d> on d²×d², control first
//
// with τ = exp(iπ(d²+1)/d).
//
// Gates are a closed set dispatched on Kind. A Gate value is immutable and
// Unitary returns a fresh matrix on every call; the same (Kind, d, a) always
// yields bit-identical entries. Phase powers of τ are reduced in integer
// arithmetic before exponentiation so large exponents do not drift.
//
// Errors:
//   - ErrInvalidDimension for d < 2
//   - ErrNotCoprime when the M multiplier shares a factor with d
//   - ErrUnknownGate for a name outside the set
//   - ErrMultiplierRequired when M is built without a multiplier
package gates
