// Package pauli implements generalized Pauli strings over qudits of dimension d.
//
// A String holds, for every qudit i, a pair of powers (x_i, z_i) in [0, d) and a
// single global phase exponent. Qudit i carries the operator X^x_i Z^z_i; the
// whole string is the tensor product of those operators times the phase.
//
// Text form
//
//	w2(X)(I)(XZ)    phase prefix w<k>, then one parenthesized term per qudit
//	(X!)            '!' is the power d-1
//	(X2Z!)          X part always precedes the Z part
//
// The phase digit k denotes ω^k with ω = exp(2πi/d). For odd d the stored
// exponent is k mod d. For even d the stored exponent counts half steps of
// exp(iπ/d), so w<k> is stored as (2k) mod d; only even exponents below d are
// expressible in that case and SetPhase rejects the rest.
//
// Mutation is last-write-wins per qudit: Set replaces both powers of the
// targeted qudit, it never multiplies into the existing operator.
//
// Strings are not safe for concurrent mutation; clone before sharing.
package pauli
